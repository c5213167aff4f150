package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Healme-snip/rockits-telegram-bot/internal/config"
	"github.com/Healme-snip/rockits-telegram-bot/internal/gsheet"
	"github.com/Healme-snip/rockits-telegram-bot/internal/handlers"
	"github.com/Healme-snip/rockits-telegram-bot/internal/logger"
	"github.com/Healme-snip/rockits-telegram-bot/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT"))
	log := logger.Get()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sheetClient := gsheet.NewClient(gsheet.Config{
		SecretFile:       cfg.GSheet.SecretFile,
		SpreadsheetTitle: cfg.GSheet.SpreadsheetTitle,
		WorksheetTitle:   cfg.GSheet.WorksheetTitle,
		WriterEmails:     cfg.GSheet.WriterEmails,
	}, log)

	if err := sheetClient.Connect(ctx); err != nil {
		log.Fatalf("Failed to open spreadsheet: %v", err)
	}
	log.WithFields(logrus.Fields{
		"spreadsheet": cfg.GSheet.SpreadsheetTitle,
		"worksheet":   cfg.GSheet.WorksheetTitle,
	}).Info("Spreadsheet ready")

	queue := gsheet.NewAppendQueue(sheetClient, log)
	defer queue.Close()

	recorder := services.NewRecorder(queue, log)

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(cfg.TG.Token, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	var botInfo *tgmodels.User
	for i := 0; i < 3; i++ {
		log.Infof("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		botInfo, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Info("Successfully connected to Telegram API")
			break
		}
		log.Warnf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Info("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	handler := handlers.NewBotHandler(b, recorder, log)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	log.WithField("username", botInfo.Username).Info("Bot started")

	b.Start(ctx)
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			logger.Get().WithFields(logrus.Fields{
				"from": formatUser(*update.Message.From),
				"text": update.Message.Text,
			}).Debug("Message received")
		}
		next(ctx, b, update)
	}
}
