package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/emberforge-labs/asset-ledger/internal/config"
	"github.com/emberforge-labs/asset-ledger/internal/types"
)

// QueueClient publishes committed ledger records for downstream consumers.
type QueueClient interface {
	PublishRecord(ctx context.Context, rec *types.Record) error
	Shutdown()
}

// QueueManager publishes records to a durable RabbitMQ topic exchange.
// Publishes run in confirm mode so a nil error means the broker accepted
// the message, not just that it left the client.
type QueueManager struct {
	cfg     *config.QueueConfig
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s/", cfg.User, cfg.Password, cfg.Url)

	var conn *amqp.Connection
	err := retry.Do(
		func() error {
			var err error
			conn, err = amqp.Dial(url)
			return err
		},
		retry.Attempts(cfg.ConnectRetries),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq at %s: %w", cfg.Url, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to put channel into confirm mode: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
	}, nil
}

func (qm *QueueManager) PublishRecord(ctx context.Context, rec *types.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %d: %w", rec.Seq, err)
	}

	ctx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	confirmation, err := qm.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		qm.cfg.Exchange,
		routingKey(rec.Kind),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    rec.ID,
			Timestamp:    time.Unix(rec.Timestamp, 0).UTC(),
			Type:         rec.Kind.String(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish record %d: %w", rec.Seq, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for broker confirm of record %d: %w", rec.Seq, err)
	}
	if !acked {
		return fmt.Errorf("broker rejected record %d", rec.Seq)
	}
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.channel.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close rabbitmq channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close rabbitmq connection")
	}
}

// routingKey lets consumers bind to a single kind ("record.mint"),
// a family ("record.listing_*") or everything ("record.#").
func routingKey(kind types.RecordKind) string {
	return "record." + strings.ToLower(kind.String())
}
