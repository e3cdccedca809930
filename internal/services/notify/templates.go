package notify

import (
	"fmt"
	"strings"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

const (
	likeReceivedText = "💌 У тебя новый лайк!\n\n" +
		"Кто-то поставил лайк твоей анкете. " +
		"Если поставишь взаимный лайк - узнаешь кто это! 😊"

	approvedText = "🎉 Твоя анкета одобрена модераторами!\n\n" +
		"Теперь ты можешь пользоваться ботом полностью!\n" +
		"Используй команду /start для начала работы."
)

func matchText(partner model.Profile) string {
	username := "без username"
	if strings.TrimSpace(partner.Username) != "" {
		username = "@" + partner.Username
	}
	return fmt.Sprintf("🎉 У вас взаимная симпатия с %s (%s)!\n\nТеперь вы можете написать друг другу!",
		partner.FullName(), username)
}

func rejectedText(reason string) string {
	return fmt.Sprintf("❌ Твоя анкета отклонена модераторами.\n\nПричина: %s\n\n"+
		"Ты можешь создать новую анкету, соблюдая правила.", reason)
}

func bannedText(reason string) string {
	return fmt.Sprintf("🚫 Твоя анкета заблокирована.\n\nПричина: %s\n\n"+
		"Для разблокировки обратись к администраторам.", reason)
}

func newProfileText(profile model.Profile) string {
	return fmt.Sprintf("📋 Новая анкета на модерации!\n\nПользователь: %s\nКласс: %s\nID: %d\n\n"+
		"Используйте панель модерации для проверки.", profile.FullName(), profile.Class, profile.UserID)
}

func newReportText(reported model.Profile, reason string) string {
	name := strings.TrimSpace(reported.FullName())
	if name == "" {
		name = "неизвестно"
	}
	class := reported.Class
	if strings.TrimSpace(class) == "" {
		class = "неизвестно"
	}
	return fmt.Sprintf("🚨 Новая жалоба!\n\n👤 На пользователя: %s\n🏫 Класс: %s\n🆔 ID: %d\n📝 Причина: %s\n\n"+
		"Используйте панель модерации для проверки.", name, class, reported.UserID, reason)
}
