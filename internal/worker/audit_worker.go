// Package worker consumes login audit messages and stores them.
package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledgerdash/internal/amqp"
	"ledgerdash/internal/log"
	"ledgerdash/internal/storage"
)

// LoginStore persists login attempts.
type LoginStore interface {
	SaveLogin(ctx context.Context, rec storage.LoginRecord) error
}

// AuditWorker turns login audit messages into stored records.
type AuditWorker struct {
	store  LoginStore
	logger *log.Logger
	now    func() time.Time
}

func NewAuditWorker(store LoginStore, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentAudit),
		now:    time.Now,
	}
}

// HandleLoginMessage stores a single login attempt. Messages without an
// email are rejected for good; a missing timestamp is replaced by the
// receive time.
func (w *AuditWorker) HandleLoginMessage(ctx context.Context, msg *amqp.LoginMessage) error {
	email := strings.TrimSpace(msg.Email)
	if email == "" {
		return fmt.Errorf("login message without email: %w", amqp.ErrRejected)
	}
	at := msg.At
	if at.IsZero() {
		at = w.now()
	}

	rec := storage.LoginRecord{
		Email:       email,
		Success:     msg.Success,
		ClientIP:    msg.ClientIP,
		AttemptedAt: at,
	}
	if err := w.store.SaveLogin(ctx, rec); err != nil {
		return fmt.Errorf("save login attempt: %w", err)
	}

	level := w.logger.InfoContext
	if !msg.Success {
		level = w.logger.WarnContext
	}
	level(ctx, "Login attempt recorded",
		log.FieldEmail, email,
		log.FieldSuccess, msg.Success,
		log.FieldClientIP, msg.ClientIP)
	return nil
}

// Run consumes queue until ctx is done.
func (w *AuditWorker) Run(ctx context.Context, client *amqp.Client, queue string) error {
	return client.ConsumeLogins(ctx, queue, func(msg *amqp.LoginMessage) error {
		return w.HandleLoginMessage(ctx, msg)
	})
}
