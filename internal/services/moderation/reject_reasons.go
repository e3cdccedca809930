package moderation

import (
	"sort"
	"strings"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
)

// ReasonPreset is a canned reason a moderator can pick with one button
// instead of typing it.
type ReasonPreset struct {
	Code  string
	Label string
	Text  string
}

type reasonTemplate struct {
	Label string
	Text  string
}

var rejectReasonTemplates = map[string]reasonTemplate{
	"photo": {
		Label: "Фото: неподходящее",
		Text:  "Фото не подходит для анкеты. Загрузи своё фото, где хорошо видно лицо.",
	},
	"incomplete": {
		Label: "Анкета не заполнена",
		Text:  "Анкета заполнена не полностью или формально. Расскажи о себе подробнее.",
	},
	"fake": {
		Label: "Чужие данные",
		Text:  "Анкета содержит чужие имя, класс или фото.",
	},
	"spam": {
		Label: "Спам/реклама/ссылки",
		Text:  "В анкете есть реклама, спам или внешние ссылки.",
	},
	"rude": {
		Label: "Грубость",
		Text:  "Анкета содержит грубые или оскорбительные выражения.",
	},
}

var banReasonTemplates = map[string]reasonTemplate{
	"abuse": {
		Label: "Оскорбления",
		Text:  "Оскорбления других пользователей.",
	},
	"spam": {
		Label: "Спам",
		Text:  "Рассылка спама и рекламы.",
	},
	"fake": {
		Label: "Фейковая анкета",
		Text:  "Анкета выдаёт себя за другого человека.",
	},
	"reports": {
		Label: "Многочисленные жалобы",
		Text:  "Многочисленные обоснованные жалобы.",
	},
}

// ReasonPresets lists the canned reasons for a reject or ban, ordered by code.
func ReasonPresets(decision enums.ModerationDecision) []ReasonPreset {
	templates := presetTemplates(decision)
	codes := make([]string, 0, len(templates))
	for code := range templates {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	items := make([]ReasonPreset, 0, len(codes))
	for _, code := range codes {
		template := templates[code]
		items = append(items, ReasonPreset{
			Code:  code,
			Label: strings.TrimSpace(template.Label),
			Text:  strings.TrimSpace(template.Text),
		})
	}
	return items
}

// PresetReason resolves a preset code to the reason text sent to the user.
func PresetReason(decision enums.ModerationDecision, code string) (string, bool) {
	template, ok := presetTemplates(decision)[strings.TrimSpace(code)]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(template.Text), true
}

func presetTemplates(decision enums.ModerationDecision) map[string]reasonTemplate {
	switch decision {
	case enums.ModerationDecisionReject:
		return rejectReasonTemplates
	case enums.ModerationDecisionBan:
		return banReasonTemplates
	default:
		return nil
	}
}
