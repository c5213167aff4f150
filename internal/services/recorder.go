package services

import (
	"context"
	"time"

	"github.com/Healme-snip/rockits-telegram-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// User-facing reply texts.
const (
	ReplyRowAdded     = "Строка добавлена успешно"
	ReplyBadFormat    = "Неверный формат строки"
	ReplyAppendFailed = "Не удалось добавить строку, попробуйте позже"
)

// RowAppender is satisfied by the gsheet append queue.
type RowAppender interface {
	AppendRow(ctx context.Context, row []string) error
}

// Recorder turns message lines into worksheet rows.
type Recorder struct {
	appender RowAppender
	log      *logrus.Entry
}

func NewRecorder(appender RowAppender, log *logrus.Logger) *Recorder {
	return &Recorder{
		appender: appender,
		log:      log.WithField("component", "recorder"),
	}
}

// Record parses one message line and appends it to the worksheet,
// stamped with the current UTC time. It always returns a reply for
// the sender; a malformed line is a normal outcome, err is non-nil
// only when the append itself failed.
func (r *Recorder) Record(ctx context.Context, line string) (string, error) {
	entry, err := models.ParseEntry(line)
	if err != nil {
		return ReplyBadFormat, nil
	}

	if err := r.appender.AppendRow(ctx, entry.Row(time.Now())); err != nil {
		r.log.WithError(err).Error("Failed to append row")
		return ReplyAppendFailed, err
	}

	return ReplyRowAdded, nil
}
