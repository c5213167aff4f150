package gsheet

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
)

// RowAppender is the sheet mutation the queue serializes.
type RowAppender interface {
	AppendRow(ctx context.Context, row []string) error
}

type appendTask struct {
	ctx  context.Context
	row  []string
	resp chan error
}

// AppendQueue funnels appends through a single worker goroutine so
// concurrent update handlers cannot interleave the read-count/append
// sequence. Transient API failures are retried with exponential
// backoff before the error is reported to the caller.
type AppendQueue struct {
	tasks         chan appendTask
	client        RowAppender
	log           *logrus.Entry
	retryInterval time.Duration
	maxElapsed    time.Duration
}

func NewAppendQueue(client RowAppender, log *logrus.Logger) *AppendQueue {
	q := &AppendQueue{
		tasks:         make(chan appendTask, 100),
		client:        client,
		log:           log.WithField("component", "gsheet-queue"),
		retryInterval: 500 * time.Millisecond,
		maxElapsed:    30 * time.Second,
	}
	go q.worker()
	return q
}

func NewAppendQueueForTest(client RowAppender, log *logrus.Logger) *AppendQueue {
	q := &AppendQueue{
		tasks:         make(chan appendTask, 100),
		client:        client,
		log:           log.WithField("component", "gsheet-queue"),
		retryInterval: time.Millisecond,
		maxElapsed:    50 * time.Millisecond,
	}
	go q.worker()
	return q
}

// AppendRow submits a row and blocks until the worker has appended it
// or given up.
func (q *AppendQueue) AppendRow(ctx context.Context, row []string) error {
	resp := make(chan error, 1)
	q.tasks <- appendTask{ctx: ctx, row: row, resp: resp}
	return <-resp
}

func (q *AppendQueue) worker() {
	for task := range q.tasks {
		task.resp <- q.executeWithRetry(task)
	}
}

func (q *AppendQueue) executeWithRetry(task appendTask) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = q.retryInterval
	b.MaxElapsedTime = q.maxElapsed

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := q.client.AppendRow(task.ctx, task.row)
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		q.log.WithError(err).WithField("attempt", attempt).Warn("Transient append failure, retrying")
		return err
	}, backoff.WithContext(b, task.ctx))
}

// Close stops the worker once queued tasks drain.
func (q *AppendQueue) Close() {
	close(q.tasks)
}

// isTransient reports whether an append failure is worth retrying:
// rate limits, server-side errors, and network-level failures.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return true
}
