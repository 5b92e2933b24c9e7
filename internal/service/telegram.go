package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"regimeforge-go/internal/config"
	"regimeforge-go/internal/model"
)

// TelegramService pushes trade and signal notifications to a configured chat
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramService creates the notifier. Returns nil when the bot token is
// not configured; callers treat a nil notifier as "notifications off".
func NewTelegramService() *TelegramService {
	token := config.AppConfig.TelegramBotToken
	if token == "" {
		log.Println("ℹ️  [Telegram] No bot token configured, notifications disabled")
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("⚠️  [Telegram] Bot init failed, notifications disabled: %v", err)
		return nil
	}

	chatID, err := strconv.ParseInt(config.AppConfig.TelegramChatID, 10, 64)
	if err != nil {
		log.Printf("⚠️  [Telegram] Invalid chat id %q, notifications disabled", config.AppConfig.TelegramChatID)
		return nil
	}

	log.Printf("✅ [Telegram] Bot connected as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, chatID: chatID}
}

// Send delivers a plain-text message. Best effort.
func (s *TelegramService) Send(text string) {
	if s == nil {
		return
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("⚠️  [Telegram] Send failed: %v", err)
	}
}

// SendSignal formats and delivers an analysis result
func (s *TelegramService) SendSignal(coin string, signal *model.Signal) {
	if s == nil || signal == nil {
		return
	}

	var sb strings.Builder
	emoji := "⚪"
	switch signal.Signal {
	case model.VerdictLong:
		emoji = "🟢"
	case model.VerdictShort:
		emoji = "🔴"
	}

	sb.WriteString(fmt.Sprintf("%s %s: %s (%.0f%% confidence)\n", emoji, coin, signal.Signal, signal.Confidence*100))
	sb.WriteString(fmt.Sprintf("Regime: %s\n", signal.Regime))
	for i, reason := range signal.Reasoning {
		if i >= 4 {
			break
		}
		sb.WriteString("• " + reason + "\n")
	}

	s.Send(sb.String())
}
