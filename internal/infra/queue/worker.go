package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/mail"
)

// Mailer delivers the "lead assigned" email to the new owner.
type Mailer interface {
	SendLeadAssigned(to string, data mail.LeadAssignedEmailData) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  Mailer
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, mailer Mailer, logger *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
		Logger:  logger,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info("worker waiting for messages", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if w.handle(d.Body) {
				d.Ack(false)
			} else {
				// dead-lettered, never requeued
				d.Nack(false, false)
			}
		}
	}
}

// handle reports whether the message should be acknowledged.
func (w *Worker) handle(body []byte) bool {
	var payload LeadAssignedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.Logger.Warn("malformed lead_assigned message", zap.Error(err))
		return false
	}

	log := w.Logger.With(
		zap.String("lead_id", payload.LeadID),
		zap.String("user_id", payload.UserID),
		zap.String("mode", payload.Mode),
	)

	if payload.UserEmail == "" {
		log.Warn("assignment without seller email, skipping")
		return true
	}

	err := w.Mailer.SendLeadAssigned(payload.UserEmail, mail.LeadAssignedEmailData{
		SellerName: payload.UserName,
		LeadName:   payload.LeadName,
		LeadEmail:  payload.LeadEmail,
		AssignedAt: payload.AssignedAt,
	})
	if err != nil {
		log.Error("failed to send assignment email", zap.Error(err))
		return false
	}

	log.Info("assignment email sent")
	return true
}
