package handlers

import (
	"context"

	"github.com/Healme-snip/rockits-telegram-bot/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
)

// TelegramSender is the slice of the bot API the handler needs.
type TelegramSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
}

var _ TelegramSender = (*bot.Bot)(nil)

var startGreeting = services.SafeConcat(
	services.EscapeUserContent("Привет! Я записываю строки в таблицу.\n"),
	services.EscapeUserContent("Отправьте сообщение вида "),
	services.FormatCode("имя, предмет, количество"),
)

type BotHandler struct {
	bot      TelegramSender
	recorder *services.Recorder
	log      *logrus.Entry
}

func NewBotHandler(b TelegramSender, recorder *services.Recorder, log *logrus.Logger) *BotHandler {
	return &BotHandler{
		bot:      b,
		recorder: recorder,
		log:      log.WithField("component", "handler"),
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(update)

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	}
}

func (h *BotHandler) recoverPanic(update *tgmodels.Update) {
	if r := recover(); r != nil {
		h.log.WithFields(logrus.Fields{
			"panic":     r,
			"update_id": update.ID,
		}).Error("Recovered from panic in update handler")
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgmodels.Message) {
	if msg.From == nil {
		return
	}

	if msg.Text == "/start" {
		h.handleStart(ctx, msg)
		return
	}

	if msg.MediaGroupID != "" {
		return
	}

	if msg.Text != "" {
		h.handleLine(ctx, msg)
	}
}

func (h *BotHandler) handleStart(ctx context.Context, msg *tgmodels.Message) {
	h.log.WithField("chat_id", msg.Chat.ID).Info("Start command received")
	h.sendMarkdown(ctx, msg.Chat.ID, startGreeting)
}

func (h *BotHandler) handleLine(ctx context.Context, msg *tgmodels.Message) {
	reply, err := h.recorder.Record(ctx, msg.Text)
	if err != nil {
		h.log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Failed to record line")
	}
	h.reply(ctx, msg.Chat.ID, reply)
}

// reply escapes plain text and sends it as MarkdownV2.
func (h *BotHandler) reply(ctx context.Context, chatID int64, text string) {
	h.sendMarkdown(ctx, chatID, services.EscapeUserContent(text))
}

func (h *BotHandler) sendMarkdown(ctx context.Context, chatID int64, text string) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeMarkdown,
	})
	if err != nil {
		h.log.WithError(err).WithField("chat_id", chatID).Warn("Failed to send message")
	}
}
