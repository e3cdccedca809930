package botapp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
	"github.com/Evzheva/chatbot-for-dating/internal/pkg/callback"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
)

const (
	welcomeText = "Привет! 👋\nЭто чат-бот знакомств для нашей школы.\n\n" +
		"⚠️ Правила использования:\n" +
		"• Уважай других участников\n" +
		"• Не размещай личную информацию\n" +
		"• Запрещены оскорбления и неприемлемый контент\n" +
		"• Сообщи администраторам о нарушениях\n\n" +
		"Все анкеты проходят модерацию перед публикацией!\n\n" +
		"Для начала создай свою анкету!"
	pendingText     = "⏳ Твоя анкета находится на модерации.\nМы проверим ее в ближайшее время и уведомим тебя!"
	bannedText      = "🚫 Ваша анкета заблокирована.\nДля разблокировки обратитесь к администраторам."
	idleText        = "Используй команду /start для начала работы."
	genericError    = "😔 Произошла ошибка. Попробуй еще раз позже."
	noProfileText   = "У тебя еще нет анкеты! Создай ее:"
	noCandidateText = "😔 Пока нет подходящих анкет для тебя.\nПопробуй позже или измени критерии поиска в настройках анкеты."
	photoPrompt     = "🖼️ Отправь одно фото для своей анкеты."
	photoInvalid    = "Пожалуйста, отправь именно фото."
	deleteConfirm   = "⚠️ Ты уверен, что хочешь удалить свою анкету?\nЭто действие нельзя отменить."
	deletedText     = "🗑️ Твоя анкета удалена."
	createdText     = "🎉 Твоя анкета создана!\n\n" +
		"⏳ Она отправлена на модерацию. Мы проверим ее в ближайшее время и уведомим тебя!\n" +
		"Обычно это занимает не более 24 часов."
	reportIDPrompt = "Введите ID пользователя, на которого хотите пожаловаться:\n\n" +
		"ID можно узнать, если пользователь отправил вам сообщение или в случае взаимного лайка."
	reportIDInvalid    = "❌ Некорректный ID. Введите числовой ID другого пользователя."
	reportReasonPrompt = "Укажите причину жалобы на этого пользователя:\n\n" +
		"Примеры причин:\n• Неприемлемый контент\n• Оскорбления\n• Подозрительное поведение\n• Нарушение правил"
	reportSubmitted      = "✅ Жалоба отправлена. Модераторы рассмотрят ее в ближайшее время."
	reportAlreadyPending = "ℹ️ Твоя жалоба на этого пользователя уже на рассмотрении."
	queueEmptyText       = "✅ Все анкеты проверены! Нет анкет на модерации."
	reportsEmptyText     = "✅ Все жалобы обработаны!"
	reasonPrompt         = "Выберите причину или напишите свою:"
	reasonTypePrompt     = "Напишите причину одним сообщением:"
)

const unknownCommandText = "Неизвестная команда. Используй /start"

var fieldPrompts = map[enums.ProfileField]string{
	enums.FieldFirstName:       "📝 Давай создадим твою анкету!\n\nВведи свое имя:",
	enums.FieldLastName:        "Отлично! Теперь введи свою фамилию:",
	enums.FieldClass:           "Введи свой класс (например: 10А, 11Б, 9В):",
	enums.FieldGender:          "Отлично! Теперь выбери свой пол:",
	enums.FieldSearchGender:    "Теперь выбери, с кем ты хочешь знакомиться:",
	enums.FieldInterests:       "🎯 Отлично! Теперь напиши свои интересы:\n(Например: музыка, спорт, программирование, книги, игры и т.д.)",
	enums.FieldFavoriteSubject: "📚 Отлично! Теперь напиши свой любимый школьный предмет:",
	enums.FieldHobby:           "🎨 Расскажи о своем хобби (чем любишь заниматься в свободное время):",
	enums.FieldDream:           "💫 Какая у тебя мечта? Кем хочешь стать в будущем?",
	enums.FieldAboutMe:         "🎯 Теперь расскажи немного о себе:\n(Твой характер, что тебе важно в людях, какие качества ценишь и т.д.)",
}

var fieldLabels = map[enums.ProfileField]string{
	enums.FieldFirstName:       "имя",
	enums.FieldLastName:        "фамилию",
	enums.FieldClass:           "класс",
	enums.FieldInterests:       "интересы",
	enums.FieldFavoriteSubject: "любимый предмет",
	enums.FieldHobby:           "хобби",
	enums.FieldDream:           "мечту",
	enums.FieldAboutMe:         "раздел 'О себе'",
}

func btn(text, data string) tginfra.InlineButton {
	return tginfra.InlineButton{Text: text, Data: data}
}

var (
	backToMenu = btn("🔙 В главное меню", callback.Build(callback.Menu))
	backToMod  = btn("🔙 Назад", callback.Build(callback.AdminPanel))
)

func mainMenu(isAdmin bool) [][]tginfra.InlineButton {
	rows := make([][]tginfra.InlineButton, 0, 9)
	if isAdmin {
		rows = append(rows, []tginfra.InlineButton{btn("🛠️ Панель модерации", callback.Build(callback.AdminPanel))})
	}
	return append(rows, tginfra.Column(
		btn("👀 Найти собеседника", callback.Build(callback.FindMatch)),
		btn("📋 Моя анкета", callback.Build(callback.MyProfile)),
		btn("📝 Редактировать анкету", callback.Build(callback.EditProfile)),
		btn("🖼️ Добавить/изменить фото", callback.Build(callback.AddPhoto)),
		btn("💝 Мои лайки", callback.Build(callback.MyLikes)),
		btn("👥 Мои совпадения", callback.Build(callback.MyMatches)),
		btn("🚨 Пожаловаться", callback.Build(callback.ReportUser)),
		btn("🚫 Удалить анкету", callback.Build(callback.DeleteProfile)),
	)...)
}

func createProfileMenu() [][]tginfra.InlineButton {
	return tginfra.Column(btn("📝 Создать анкету", callback.Build(callback.CreateProfile)))
}

// startScreen renders the reply to /start for the given lifecycle branch.
func startScreen(view model.StartView, firstName string) (string, [][]tginfra.InlineButton) {
	switch view.State {
	case enums.StartStateAdmin:
		text := fmt.Sprintf("Добро пожаловать, администратор %s! 👑\nВы можете использовать панель модерации для управления анкетами.", firstName)
		if view.Profile == nil {
			return text, append(mainMenu(true)[:1], createProfileMenu()...)
		}
		return text, mainMenu(true)
	case enums.StartStateApproved:
		return fmt.Sprintf("С возвращением, %s! 😊\nЧто хочешь сделать?", firstName), mainMenu(false)
	case enums.StartStatePendingReview:
		return pendingText, tginfra.Column(btn("📋 Моя анкета", callback.Build(callback.MyProfile)))
	case enums.StartStateBanned:
		return bannedText, nil
	default:
		return welcomeText, createProfileMenu()
	}
}

func genderLabel(g enums.Gender) string {
	switch g {
	case enums.GenderMale:
		return "мужской"
	case enums.GenderFemale:
		return "женский"
	default:
		return "не указан"
	}
}

func searchLabel(g enums.SearchGender) string {
	switch g {
	case enums.SearchGenderMale:
		return "парни"
	case enums.SearchGenderFemale:
		return "девушки"
	case enums.SearchGenderAny:
		return "все"
	default:
		return "не указано"
	}
}

func statusLabel(s enums.ProfileStatus) string {
	switch s {
	case enums.ProfileStatusApproved:
		return "✅ одобрена"
	case enums.ProfileStatusPendingReview:
		return "⏳ на модерации"
	case enums.ProfileStatusRejected:
		return "❌ отклонена"
	case enums.ProfileStatusBanned:
		return "🚫 заблокирована"
	default:
		return string(s)
	}
}

func orUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Не указано"
	}
	return v
}

// profileBody lists the descriptive fields shared by every card.
func profileBody(p model.Profile) string {
	return fmt.Sprintf("🏫 Класс: %s\n⚧ Пол: %s\n🎯 Интересы: %s\n📚 Любимый предмет: %s\n🎨 Хобби: %s\n💫 Мечта: %s\n📝 О себе: %s",
		p.Class, genderLabel(p.Gender), orUnset(p.Interests), orUnset(p.FavoriteSubject),
		orUnset(p.Hobby), orUnset(p.Dream), orUnset(p.AboutMe))
}

func ownProfileCard(p model.Profile) string {
	return fmt.Sprintf("👤 Твоя анкета:\n\n📱 Имя: %s\n%s\n🔍 Ищу: %s\n\nСтатус: %s",
		p.FullName(), profileBody(p), searchLabel(p.SearchGender), statusLabel(p.Status))
}

func candidateCard(p model.Profile) string {
	return fmt.Sprintf("Вот анкета для знакомства:\n\n👤 %s\n%s", p.FullName(), profileBody(p))
}

// anonymousCard shows a liker without anything that identifies them.
func anonymousCard(p model.Profile) string {
	return "💌 Анонимная анкета:\n\n" + profileBody(p)
}

func matchCard(p model.Profile) string {
	return fmt.Sprintf("👥 Ваше совпадение:\n\n👤 %s\n📱 %s\n🆔 ID: %d\n%s",
		p.FullName(), usernameLabel(p.Username), p.UserID, profileBody(p))
}

func usernameLabel(username string) string {
	if strings.TrimSpace(username) == "" {
		return "без username"
	}
	return "@" + username
}

func candidateButtons(candidateID int64) [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{btn("💖 Лайк", callback.BuildID(callback.Like, candidateID)), btn("➡️ Дальше", callback.Build(callback.Skip))},
		{btn("🚨 Пожаловаться", callback.BuildID(callback.Report, candidateID)), backToMenu},
	}
}

func ownProfileButtons() [][]tginfra.InlineButton {
	return tginfra.Column(
		btn("✏️ Редактировать анкету", callback.Build(callback.EditProfile)),
		btn("🖼️ Добавить/изменить фото", callback.Build(callback.AddPhoto)),
		backToMenu,
	)
}

func editMenu() [][]tginfra.InlineButton {
	rows := make([][]tginfra.InlineButton, 0, len(enums.CreationSteps)+2)
	for _, field := range enums.CreationSteps {
		switch field {
		case enums.FieldGender:
			rows = append(rows, []tginfra.InlineButton{btn("⚧ Изменить пол", callback.Build(callback.SetGender))})
		case enums.FieldSearchGender:
			rows = append(rows, []tginfra.InlineButton{btn("🔍 Изменить поиск", callback.Build(callback.SetSearch))})
		default:
			rows = append(rows, []tginfra.InlineButton{
				btn("✏️ Изменить "+fieldLabels[field], callback.BuildValue(callback.EditField, string(field))),
			})
		}
	}
	return append(rows,
		[]tginfra.InlineButton{btn("📋 Посмотреть анкету", callback.Build(callback.MyProfile))},
		[]tginfra.InlineButton{backToMenu},
	)
}

// genderButtons serves both the creation step and the edit screen.
func genderButtons(action callback.Action) [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{{
		btn("👦 Мужской", callback.BuildValue(action, string(enums.GenderMale))),
		btn("👩 Женский", callback.BuildValue(action, string(enums.GenderFemale))),
	}}
}

func searchButtons(action callback.Action) [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{
			btn("👦 Парни", callback.BuildValue(action, string(enums.SearchGenderMale))),
			btn("👩 Девушки", callback.BuildValue(action, string(enums.SearchGenderFemale))),
		},
		{btn("👥 Все", callback.BuildValue(action, string(enums.SearchGenderAny)))},
	}
}

func summaryList(title, empty string, items []model.ProfileSummary, anonymous bool) string {
	if len(items) == 0 {
		return empty
	}
	lines := []string{title, ""}
	for i, item := range items {
		if anonymous {
			lines = append(lines, fmt.Sprintf("%d. Анонимный пользователь, класс %s", i+1, item.Class))
			continue
		}
		name := strings.TrimSpace(item.FirstName + " " + item.LastName)
		lines = append(lines, fmt.Sprintf("%d. %s (%s), класс %s", i+1, name, usernameLabel(item.Username), item.Class))
	}
	return strings.Join(lines, "\n")
}

func summaryButtons(items []model.ProfileSummary, action callback.Action, anonymous bool) [][]tginfra.InlineButton {
	rows := make([][]tginfra.InlineButton, 0, len(items)+1)
	for i, item := range items {
		label := fmt.Sprintf("👀 Анкета %d", i+1)
		if !anonymous && item.FirstName != "" {
			label = "👀 " + item.FirstName
		}
		rows = append(rows, []tginfra.InlineButton{btn(label, callback.BuildID(action, item.UserID))})
	}
	return append(rows, []tginfra.InlineButton{backToMenu})
}

func panelText(stats model.ModerationStats) string {
	return fmt.Sprintf("🛠️ Панель модерации\n\n📊 Статистика:\n"+
		"• Анкеты на модерации: %d\n• Жалобы на рассмотрении: %d\n"+
		"• Одобренных пользователей: %d\n• Заблокированных пользователей: %d\n\n"+
		"Всего анкет: %d\nЛайков: %d\nСовпадений: %d\nЖалоб: %d\nДействий модераторов: %d",
		stats.PendingProfiles, stats.PendingReports, stats.Approved, stats.Banned,
		stats.TotalProfiles, stats.TotalLikes, stats.TotalMatches, stats.TotalReports, stats.TotalActions)
}

func panelButtons() [][]tginfra.InlineButton {
	return tginfra.Column(
		btn("📋 Анкеты на модерации", callback.Build(callback.ModNext)),
		btn("🚨 Жалобы", callback.Build(callback.ReportsNext)),
		backToMenu,
	)
}

func moderationCard(item modsvc.QueueItem) string {
	p := item.Profile
	text := fmt.Sprintf("📋 Анкета на модерации (в очереди: %d):\n\n👤 Пользователь: %s\n📱 %s\n%s\n🔍 Ищет: %s\n📅 Дата регистрации: %s\n🆔 ID: %d",
		item.QueueSize, p.FullName(), usernameLabel(p.Username), profileBody(p), searchLabel(p.SearchGender),
		p.RegisteredAt.Format("2006-01-02 15:04"), p.UserID)
	if item.PhotoURL != "" {
		text += "\n🖼️ Архив фото: " + item.PhotoURL
	}
	return text
}

func moderationButtons(targetID int64) [][]tginfra.InlineButton {
	return [][]tginfra.InlineButton{
		{btn("✅ Одобрить", callback.BuildID(callback.ModApprove, targetID)), btn("❌ Отклонить", callback.BuildID(callback.ModReject, targetID))},
		{btn("🚫 Заблокировать", callback.BuildID(callback.ModBan, targetID)), btn("➡️ Пропустить", callback.BuildID(callback.ModSkip, targetID))},
		{backToMod},
	}
}

// reasonButtons offers the canned reasons for a reject or ban plus a free-text option.
func reasonButtons(decision enums.ModerationDecision, targetID int64) [][]tginfra.InlineButton {
	presets := modsvc.ReasonPresets(decision)
	rows := make([][]tginfra.InlineButton, 0, len(presets)+2)
	for _, preset := range presets {
		rows = append(rows, []tginfra.InlineButton{
			btn(preset.Label, callback.BuildReason(callback.ModPreset, string(decision), targetID, preset.Code)),
		})
	}
	return append(rows,
		[]tginfra.InlineButton{btn("✍️ Своя причина", callback.BuildReason(callback.ModCustom, string(decision), targetID, ""))},
		[]tginfra.InlineButton{btn("🔙 Отмена", callback.Build(callback.ModNext))},
	)
}

func decisionText(result model.DecisionResult) string {
	switch result.Decision {
	case enums.ModerationDecisionApprove:
		return fmt.Sprintf("✅ Анкета %d одобрена.", result.TargetID)
	case enums.ModerationDecisionReject:
		return fmt.Sprintf("❌ Анкета %d отклонена.\nПричина: %s", result.TargetID, result.Reason)
	case enums.ModerationDecisionBan:
		return fmt.Sprintf("🚫 Пользователь %d заблокирован.\nПричина: %s", result.TargetID, result.Reason)
	default:
		return fmt.Sprintf("➡️ Анкета %d пропущена.", result.TargetID)
	}
}

func reportCard(view model.ReportView) string {
	return fmt.Sprintf("🚨 Жалоба #%d\n\n👤 Жалоба от: %s (ID: %d)\n👤 На пользователя: %s (ID: %d)\n📅 Дата: %s\n📝 Причина: %s",
		view.Report.ID,
		snapshotName(view.Reporter), view.Report.ReporterID,
		snapshotName(view.Reported), view.Report.ReportedUserID,
		view.Report.ReportedAt.Format("2006-01-02 15:04"), view.Report.Reason)
}

func snapshotName(p *model.Profile) string {
	if p == nil || strings.TrimSpace(p.FullName()) == "" {
		return "Пользователь"
	}
	return p.FullName()
}

func reportButtons(view model.ReportView) [][]tginfra.InlineButton {
	rows := [][]tginfra.InlineButton{{
		btn("✅ Принять жалобу", callback.BuildID(callback.ReportAccept, view.Report.ID)),
		btn("❌ Отклонить жалобу", callback.BuildID(callback.ReportDismiss, view.Report.ID)),
	}}
	if view.Reported != nil && view.Reported.Status != enums.ProfileStatusBanned {
		rows = append(rows, []tginfra.InlineButton{
			btn("🚫 Заблокировать пользователя", callback.BuildID(callback.ReportBanUser, view.Report.ReportedUserID)),
		})
	}
	return append(rows, []tginfra.InlineButton{backToMod})
}

// errorText maps a service error to what the user sees. ok is false for
// unexpected errors, which the caller logs.
func errorText(err error) (string, bool) {
	switch {
	case errors.Is(err, apperr.ErrRateLimited):
		return fmt.Sprintf("⏳ Слишком много действий. Попробуй снова через %d сек.", apperr.RetryAfter(err)), true
	case errors.Is(err, apperr.ErrForbidden):
		return bannedText, true
	case errors.Is(err, apperr.ErrNotApproved):
		return "⏳ Твоя анкета еще не одобрена модераторами.", true
	case errors.Is(err, apperr.ErrNotFound):
		return "🤷 Не найдено. Возможно, анкета уже удалена или обработана.", true
	case errors.Is(err, apperr.ErrDuplicate):
		return "ℹ️ Это действие уже выполнено.", true
	case errors.Is(err, apperr.ErrValidation):
		return "❌ Некорректные данные. Попробуй еще раз.", true
	default:
		return genericError, false
	}
}
