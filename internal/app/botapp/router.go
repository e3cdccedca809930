package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/apperr"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
	tginfra "github.com/Evzheva/chatbot-for-dating/internal/infra/telegram"
	"github.com/Evzheva/chatbot-for-dating/internal/pkg/callback"
	"github.com/Evzheva/chatbot-for-dating/internal/services/conversation"
	modsvc "github.com/Evzheva/chatbot-for-dating/internal/services/moderation"
)

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "start", "menu":
		return a.sendStart(ctx, update.ChatID, update.UserID, update.Username)
	case "cancel":
		if err := a.machine.Cancel(ctx, update.UserID); err != nil {
			return a.replyError(ctx, update.ChatID, "cancel", err)
		}
		return a.send(ctx, update.ChatID, "Действие отменено.", tginfra.Column(backToMenu))
	case "admin":
		if a.admins.IsAdmin(update.UserID) {
			return a.sendPanel(ctx, update.ChatID, update.UserID)
		}
	}
	return a.send(ctx, update.ChatID, unknownCommandText, nil)
}

func (a *App) handleText(ctx context.Context, update tginfra.TextUpdate) error {
	reply, err := a.machine.SubmitText(ctx, update.UserID, update.Text)
	if err != nil {
		return a.replyError(ctx, update.ChatID, "submit conversation text", err)
	}
	return a.sendReply(ctx, update.ChatID, reply)
}

func (a *App) handlePhoto(ctx context.Context, update tginfra.PhotoUpdate) error {
	state, err := a.machine.Current(ctx, update.UserID)
	if err != nil {
		return a.replyError(ctx, update.ChatID, "load conversation", err)
	}
	if state.Mode != enums.ModeAwaitingPhoto {
		return a.send(ctx, update.ChatID, "Чтобы изменить фото, нажми «Добавить/изменить фото» в меню.", tginfra.Column(backToMenu))
	}

	photo := model.Photo{FileID: update.FileID}
	if a.media.Enabled() {
		data, name, contentType, err := a.bot.DownloadPhoto(ctx, update.FileID)
		if err != nil {
			// the file id alone is enough to show the photo later
			a.logger.Warn("download photo for archive", zap.Int64("user_id", update.UserID), zap.Error(err))
		} else {
			photo.Data, photo.FileName, photo.ContentType = data, name, contentType
		}
	}

	reply, err := a.machine.SubmitPhoto(ctx, update.UserID, photo)
	if err != nil {
		return a.replyError(ctx, update.ChatID, "submit photo", err)
	}
	return a.sendReply(ctx, update.ChatID, reply)
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	ack := ""
	defer func() {
		if err := a.bot.AnswerCallback(ctx, update.CallbackID, ack); err != nil {
			a.logger.Debug("answer callback", zap.Error(err))
		}
	}()

	action, arg := callback.Parse(update.Data)
	_, id, hasID := callback.ParseID(update.Data)
	chatID, userID := update.ChatID, update.UserID
	if action.Moderation() && !a.admins.IsAdmin(userID) {
		return nil
	}

	switch action {
	case callback.Menu:
		return a.sendStart(ctx, chatID, userID, update.Username)
	case callback.CreateProfile:
		return a.begin(ctx, chatID, "begin profile creation", func() (conversation.Reply, error) {
			return a.machine.BeginProfileCreation(ctx, userID, update.Username)
		})
	case callback.MyProfile:
		return a.sendOwnProfile(ctx, chatID, userID)
	case callback.EditProfile:
		return a.send(ctx, chatID, "✏️ Что хочешь изменить?", editMenu())
	case callback.EditField:
		return a.begin(ctx, chatID, "begin edit", func() (conversation.Reply, error) {
			return a.machine.BeginEdit(ctx, userID, enums.ProfileField(arg))
		})
	case callback.SetGender:
		if arg == "" {
			return a.send(ctx, chatID, "Выбери свой пол:", genderButtons(callback.SetGender))
		}
		return a.updateChoice(ctx, chatID, userID, enums.FieldGender, arg)
	case callback.SetSearch:
		if arg == "" {
			return a.send(ctx, chatID, "С кем ты хочешь знакомиться?", searchButtons(callback.SetSearch))
		}
		return a.updateChoice(ctx, chatID, userID, enums.FieldSearchGender, arg)
	case callback.AddPhoto:
		return a.begin(ctx, chatID, "begin photo", func() (conversation.Reply, error) {
			return a.machine.BeginPhoto(ctx, userID)
		})
	case callback.DeleteProfile:
		return a.send(ctx, chatID, deleteConfirm, [][]tginfra.InlineButton{{
			btn("✅ Да, удалить", callback.Build(callback.ConfirmDelete)),
			btn("❌ Нет, отмена", callback.Build(callback.Menu)),
		}})
	case callback.ConfirmDelete:
		return a.deleteProfile(ctx, chatID, userID)
	case callback.ChooseGender:
		return a.submitChoice(ctx, chatID, userID, enums.FieldGender, arg)
	case callback.ChooseSearch:
		return a.submitChoice(ctx, chatID, userID, enums.FieldSearchGender, arg)

	case callback.FindMatch, callback.Skip:
		return a.sendCandidate(ctx, chatID, userID)
	case callback.Like:
		if !hasID {
			break
		}
		return a.like(ctx, chatID, userID, id)
	case callback.MyLikes:
		return a.sendLikesReceived(ctx, chatID, userID)
	case callback.LikesGiven:
		return a.sendLikesGiven(ctx, chatID, userID)
	case callback.MyMatches:
		return a.sendMatches(ctx, chatID, userID)
	case callback.ViewLiker:
		if !hasID {
			break
		}
		return a.sendLiker(ctx, chatID, userID, id)
	case callback.ViewMatch:
		if !hasID {
			break
		}
		return a.sendMatch(ctx, chatID, userID, id)
	case callback.Report:
		if !hasID {
			break
		}
		return a.begin(ctx, chatID, "begin report", func() (conversation.Reply, error) {
			return a.machine.BeginReport(ctx, userID, id)
		})
	case callback.ReportUser:
		return a.begin(ctx, chatID, "begin report", func() (conversation.Reply, error) {
			return a.machine.BeginReport(ctx, userID, 0)
		})
	case callback.Cancel:
		if err := a.machine.Cancel(ctx, userID); err != nil {
			return a.replyError(ctx, chatID, "cancel", err)
		}
		return a.send(ctx, chatID, "Действие отменено.", tginfra.Column(backToMenu))

	case callback.AdminPanel:
		return a.sendPanel(ctx, chatID, userID)
	case callback.ModNext:
		return a.sendNextProfile(ctx, chatID, userID)
	case callback.ModApprove, callback.ModSkip:
		if !hasID {
			break
		}
		decision := enums.ModerationDecisionApprove
		if action == callback.ModSkip {
			decision = enums.ModerationDecisionSkip
		}
		return a.decide(ctx, chatID, userID, id, decision, "")
	case callback.ModReject:
		if !hasID {
			break
		}
		return a.send(ctx, chatID, reasonPrompt, reasonButtons(enums.ModerationDecisionReject, id))
	case callback.ModBan, callback.ReportBanUser:
		if !hasID {
			break
		}
		return a.send(ctx, chatID, reasonPrompt, reasonButtons(enums.ModerationDecisionBan, id))
	case callback.ModPreset:
		decision, targetID, code, ok := callback.ParseReason(arg)
		if !ok {
			break
		}
		reason, ok := modsvc.PresetReason(enums.ModerationDecision(decision), code)
		if !ok {
			break
		}
		return a.decide(ctx, chatID, userID, targetID, enums.ModerationDecision(decision), reason)
	case callback.ModCustom:
		decision, targetID, _, ok := callback.ParseReason(arg)
		if !ok {
			break
		}
		return a.begin(ctx, chatID, "begin moderation reason", func() (conversation.Reply, error) {
			return a.machine.BeginModerationReason(ctx, userID, targetID, enums.ModerationDecision(decision))
		})
	case callback.ReportsNext:
		return a.sendNextReport(ctx, chatID, userID)
	case callback.ReportAccept, callback.ReportDismiss:
		if !hasID {
			break
		}
		decision := enums.ReportDecisionAccept
		if action == callback.ReportDismiss {
			decision = enums.ReportDecisionDismiss
		}
		return a.decideReport(ctx, chatID, userID, id, decision)
	}

	ack = "Неизвестное действие"
	return nil
}

func (a *App) sendStart(ctx context.Context, chatID, userID int64, username string) error {
	view, err := a.profiles.Start(ctx, userID, username)
	if err != nil {
		return a.replyError(ctx, chatID, "start", err)
	}
	text, rows := startScreen(view, greetName(view, username))
	return a.send(ctx, chatID, text, rows)
}

func greetName(view model.StartView, username string) string {
	if view.Profile != nil && strings.TrimSpace(view.Profile.FirstName) != "" {
		return view.Profile.FirstName
	}
	if strings.TrimSpace(username) != "" {
		return username
	}
	return "друг"
}

// begin starts a dialogue and renders its first prompt.
func (a *App) begin(ctx context.Context, chatID int64, op string, start func() (conversation.Reply, error)) error {
	reply, err := start()
	if err != nil {
		return a.replyError(ctx, chatID, op, err)
	}
	return a.sendReply(ctx, chatID, reply)
}

func (a *App) submitChoice(ctx context.Context, chatID, userID int64, field enums.ProfileField, value string) error {
	reply, err := a.machine.SubmitChoice(ctx, userID, field, value)
	if err != nil {
		return a.replyError(ctx, chatID, "submit choice", err)
	}
	return a.sendReply(ctx, chatID, reply)
}

func (a *App) updateChoice(ctx context.Context, chatID, userID int64, field enums.ProfileField, value string) error {
	if err := a.profiles.UpdateField(ctx, userID, field, value); err != nil {
		return a.replyError(ctx, chatID, "update choice", err)
	}
	text := "✅ Пол обновлен!"
	if field == enums.FieldSearchGender {
		text = "✅ Настройки поиска обновлены!"
	}
	return a.send(ctx, chatID, text, afterEditButtons())
}

func afterEditButtons() [][]tginfra.InlineButton {
	return tginfra.Column(
		btn("📝 Посмотреть анкету", callback.Build(callback.MyProfile)),
		btn("✏️ Продолжить редактирование", callback.Build(callback.EditProfile)),
		backToMenu,
	)
}

// sendReply renders what the conversation machine answered.
func (a *App) sendReply(ctx context.Context, chatID int64, reply conversation.Reply) error {
	cancel := tginfra.Column(btn("🔙 Отмена", callback.Build(callback.Cancel)))

	switch reply.Kind {
	case conversation.ReplyIdle:
		return a.send(ctx, chatID, idleText, nil)
	case conversation.ReplyChoice:
		text := fieldPrompts[reply.Field]
		if reply.Field == enums.FieldGender {
			return a.send(ctx, chatID, text, genderButtons(callback.ChooseGender))
		}
		return a.send(ctx, chatID, text, searchButtons(callback.ChooseSearch))
	case conversation.ReplyPrompt:
		switch reply.Mode {
		case enums.ModeProfileCreation:
			return a.send(ctx, chatID, fieldPrompts[reply.Field], nil)
		case enums.ModeEditingProfile:
			return a.send(ctx, chatID, "Введи новое значение: "+fieldLabels[reply.Field], tginfra.Column(
				btn("🔙 Назад", callback.Build(callback.EditProfile)),
			))
		case enums.ModeAwaitingReportID:
			return a.send(ctx, chatID, reportIDPrompt, cancel)
		case enums.ModeAwaitingReportReason:
			return a.send(ctx, chatID, reportReasonPrompt, cancel)
		case enums.ModeAwaitingRejectReason, enums.ModeAwaitingBanReason:
			return a.send(ctx, chatID, reasonTypePrompt, cancel)
		case enums.ModeAwaitingPhoto:
			return a.send(ctx, chatID, photoPrompt, cancel)
		}
	case conversation.ReplyInvalid:
		return a.sendInvalid(ctx, chatID, reply, cancel)
	case conversation.ReplyDone:
		return a.sendDone(ctx, chatID, reply)
	}

	a.logger.Warn("unhandled conversation reply", zap.String("kind", string(reply.Kind)), zap.String("mode", string(reply.Mode)))
	return a.send(ctx, chatID, idleText, nil)
}

func (a *App) sendInvalid(ctx context.Context, chatID int64, reply conversation.Reply, cancel [][]tginfra.InlineButton) error {
	switch reply.Mode {
	case enums.ModeProfileCreation:
		if reply.Field.IsChoice() {
			return a.sendReply(ctx, chatID, conversation.Reply{Kind: conversation.ReplyChoice, Mode: reply.Mode, Field: reply.Field})
		}
		return a.send(ctx, chatID, "❌ Это поле не может быть пустым.\n\n"+fieldPrompts[reply.Field], nil)
	case enums.ModeEditingProfile:
		return a.send(ctx, chatID, "❌ Значение не может быть пустым. Введи новое значение: "+fieldLabels[reply.Field], nil)
	case enums.ModeAwaitingReportID:
		return a.send(ctx, chatID, reportIDInvalid, cancel)
	case enums.ModeAwaitingPhoto:
		return a.send(ctx, chatID, photoInvalid, cancel)
	default:
		return a.send(ctx, chatID, "❌ Причина не может быть пустой. Напиши ее одним сообщением.", cancel)
	}
}

func (a *App) sendDone(ctx context.Context, chatID int64, reply conversation.Reply) error {
	switch reply.Mode {
	case enums.ModeProfileCreation:
		return a.send(ctx, chatID, createdText, tginfra.Column(
			btn("📝 Посмотреть мою анкету", callback.Build(callback.MyProfile)),
			btn("🖼️ Добавить фото", callback.Build(callback.AddPhoto)),
		))
	case enums.ModeEditingProfile:
		return a.send(ctx, chatID, "✅ Анкета обновлена: "+fieldLabels[reply.Field], afterEditButtons())
	case enums.ModeAwaitingReportReason:
		text := reportSubmitted
		if reply.Report != nil && reply.Report.Status == enums.ReportOutcomeAlreadyPending {
			text = reportAlreadyPending
		}
		return a.send(ctx, chatID, text, tginfra.Column(backToMenu))
	case enums.ModeAwaitingRejectReason, enums.ModeAwaitingBanReason:
		text := "Готово."
		if reply.Decision != nil {
			text = decisionText(*reply.Decision)
		}
		return a.send(ctx, chatID, text, tginfra.Column(btn("📋 Следующая анкета", callback.Build(callback.ModNext)), backToMod))
	case enums.ModeAwaitingPhoto:
		return a.send(ctx, chatID, "✅ Фото обновлено!", tginfra.Column(
			btn("📝 Посмотреть анкету", callback.Build(callback.MyProfile)),
			backToMenu,
		))
	}
	return a.send(ctx, chatID, "Готово.", tginfra.Column(backToMenu))
}

func (a *App) sendOwnProfile(ctx context.Context, chatID, userID int64) error {
	profile, err := a.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return a.send(ctx, chatID, noProfileText, createProfileMenu())
		}
		return a.replyError(ctx, chatID, "get profile", err)
	}
	return a.bot.SendPhoto(ctx, chatID, profile.PhotoFileID, ownProfileCard(profile), ownProfileButtons())
}

func (a *App) deleteProfile(ctx context.Context, chatID, userID int64) error {
	if err := a.profiles.Delete(ctx, userID); err != nil {
		return a.replyError(ctx, chatID, "delete profile", err)
	}
	if err := a.machine.Cancel(ctx, userID); err != nil {
		a.logger.Warn("clear conversation after delete", zap.Int64("user_id", userID), zap.Error(err))
	}
	return a.send(ctx, chatID, deletedText, tginfra.Column(
		btn("📝 Создать новую анкету", callback.Build(callback.CreateProfile)),
	))
}

func (a *App) sendCandidate(ctx context.Context, chatID, userID int64) error {
	candidate, ok, err := a.matching.FindCandidate(ctx, userID)
	if err != nil {
		return a.replyError(ctx, chatID, "find candidate", err)
	}
	if !ok {
		return a.send(ctx, chatID, noCandidateText, tginfra.Column(
			btn("🔄 Попробовать снова", callback.Build(callback.FindMatch)),
			backToMenu,
		))
	}
	return a.bot.SendPhoto(ctx, chatID, candidate.PhotoFileID, candidateCard(candidate), candidateButtons(candidate.UserID))
}

func (a *App) like(ctx context.Context, chatID, userID, targetID int64) error {
	outcome, err := a.matching.SubmitLike(ctx, userID, targetID)
	if err != nil {
		return a.replyError(ctx, chatID, "submit like", err)
	}

	next := tginfra.Column(btn("➡️ Смотреть дальше", callback.Build(callback.Skip)), backToMenu)
	switch outcome {
	case enums.LikeOutcomeAlreadyLiked:
		return a.send(ctx, chatID, "Ты уже лайкнул(а) эту анкету.", next)
	case enums.LikeOutcomeMatchCreated:
		return a.send(ctx, chatID, "🎉 Это взаимная симпатия! Контакты уже в разделе «Мои совпадения».", append(
			tginfra.Column(btn("👥 Мои совпадения", callback.Build(callback.MyMatches))), next...))
	default:
		return a.send(ctx, chatID, "💖 Лайк отправлен! Если симпатия взаимна, вы оба узнаете об этом.", next)
	}
}

func (a *App) sendLikesReceived(ctx context.Context, chatID, userID int64) error {
	items, err := a.matching.ListLikesReceived(ctx, userID)
	if err != nil {
		return a.replyError(ctx, chatID, "list likes received", err)
	}
	text := summaryList("💝 Тебя лайкнули:", "💝 Пока никто не поставил тебе лайк.", items, true)
	rows := summaryButtons(items, callback.ViewLiker, true)
	rows = append([][]tginfra.InlineButton{{btn("📤 Мои лайки", callback.Build(callback.LikesGiven))}}, rows...)
	return a.send(ctx, chatID, text, rows)
}

func (a *App) sendLikesGiven(ctx context.Context, chatID, userID int64) error {
	items, err := a.matching.ListLikesGiven(ctx, userID)
	if err != nil {
		return a.replyError(ctx, chatID, "list likes given", err)
	}
	text := summaryList("📤 Ты лайкнул(а):", "📤 Ты еще никого не лайкнул(а).", items, false)
	return a.send(ctx, chatID, text, tginfra.Column(btn("🔙 Назад", callback.Build(callback.MyLikes)), backToMenu))
}

func (a *App) sendMatches(ctx context.Context, chatID, userID int64) error {
	items, err := a.matching.ListMatches(ctx, userID)
	if err != nil {
		return a.replyError(ctx, chatID, "list matches", err)
	}
	text := summaryList("👥 Твои совпадения:", "👥 У тебя пока нет совпадений.", items, false)
	return a.send(ctx, chatID, text, summaryButtons(items, callback.ViewMatch, false))
}

func (a *App) sendLiker(ctx context.Context, chatID, userID, likerID int64) error {
	profile, err := a.matching.ViewLiker(ctx, userID, likerID)
	if err != nil {
		return a.replyError(ctx, chatID, "view liker", err)
	}
	return a.bot.SendPhoto(ctx, chatID, profile.PhotoFileID, anonymousCard(profile), tginfra.Column(
		btn("💖 Лайкнуть эту анкету", callback.BuildID(callback.Like, likerID)),
		btn("🔙 Назад", callback.Build(callback.MyLikes)),
	))
}

func (a *App) sendMatch(ctx context.Context, chatID, userID, partnerID int64) error {
	profile, err := a.matching.ViewMatch(ctx, userID, partnerID)
	if err != nil {
		return a.replyError(ctx, chatID, "view match", err)
	}
	return a.bot.SendPhoto(ctx, chatID, profile.PhotoFileID, matchCard(profile), tginfra.Column(
		btn("🚨 Пожаловаться", callback.BuildID(callback.Report, partnerID)),
		btn("🔙 Назад", callback.Build(callback.MyMatches)),
	))
}

func (a *App) sendPanel(ctx context.Context, chatID, adminID int64) error {
	stats, err := a.moderation.Panel(ctx, adminID)
	if err != nil {
		return a.moderationError(ctx, chatID, "moderation panel", err)
	}
	return a.send(ctx, chatID, panelText(stats), panelButtons())
}

func (a *App) sendNextProfile(ctx context.Context, chatID, adminID int64) error {
	item, ok, err := a.moderation.NextProfile(ctx, adminID)
	if err != nil {
		return a.moderationError(ctx, chatID, "next profile", err)
	}
	if !ok {
		return a.send(ctx, chatID, queueEmptyText, tginfra.Column(backToMod))
	}
	return a.bot.SendPhoto(ctx, chatID, item.Profile.PhotoFileID, moderationCard(item), moderationButtons(item.Profile.UserID))
}

func (a *App) decide(ctx context.Context, chatID, adminID, targetID int64, decision enums.ModerationDecision, reason string) error {
	result, err := a.moderation.DecideProfile(ctx, adminID, targetID, decision, reason)
	if err != nil {
		return a.moderationError(ctx, chatID, "moderation decision", err)
	}
	if decision == enums.ModerationDecisionSkip {
		return a.sendNextProfile(ctx, chatID, adminID)
	}
	return a.send(ctx, chatID, decisionText(result), tginfra.Column(
		btn("📋 Следующая анкета", callback.Build(callback.ModNext)),
		backToMod,
	))
}

func (a *App) sendNextReport(ctx context.Context, chatID, adminID int64) error {
	view, ok, err := a.moderation.NextReport(ctx, adminID)
	if err != nil {
		return a.moderationError(ctx, chatID, "next report", err)
	}
	if !ok {
		return a.send(ctx, chatID, reportsEmptyText, tginfra.Column(backToMod))
	}
	return a.send(ctx, chatID, reportCard(view), reportButtons(view))
}

func (a *App) decideReport(ctx context.Context, chatID, adminID, reportID int64, decision enums.ReportDecision) error {
	report, err := a.moderation.DecideReport(ctx, adminID, reportID, decision)
	if err != nil {
		return a.moderationError(ctx, chatID, "report decision", err)
	}
	text := fmt.Sprintf("✅ Жалоба #%d принята.", report.ID)
	if decision == enums.ReportDecisionDismiss {
		text = fmt.Sprintf("❌ Жалоба #%d отклонена.", report.ID)
	}
	return a.send(ctx, chatID, text, tginfra.Column(
		btn("🚨 Следующая жалоба", callback.Build(callback.ReportsNext)),
		backToMod,
	))
}

func (a *App) send(ctx context.Context, chatID int64, text string, rows [][]tginfra.InlineButton) error {
	return a.bot.SendMessage(ctx, chatID, text, rows)
}

// moderationError is replyError for the moderator panel. Refusals stay
// silent so the panel is not disclosed to other users.
func (a *App) moderationError(ctx context.Context, chatID int64, op string, err error) error {
	if errors.Is(err, apperr.ErrForbidden) {
		return nil
	}
	return a.replyError(ctx, chatID, op, err)
}

// replyError tells the user what went wrong. Unexpected errors are logged
// here and not returned, so they are not logged twice.
func (a *App) replyError(ctx context.Context, chatID int64, op string, err error) error {
	text, known := errorText(err)
	if !known {
		a.logger.Error(op, zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return a.send(ctx, chatID, text, tginfra.Column(backToMenu))
}
