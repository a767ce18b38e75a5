package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rehaber/rehaber-backend/internal/config"
	"github.com/rehaber/rehaber-backend/internal/logger"
)

// Publisher forwards stored notifications to a broker for push delivery
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
	Close() error
}

// NopPublisher drops every notification
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Notification) error { return nil }
func (NopPublisher) Close() error                                  { return nil }

// messageSender is the subset of pulsar.Producer the publisher needs
type messageSender interface {
	Send(ctx context.Context, msg *pulsar.ProducerMessage) (pulsar.MessageID, error)
	Close()
}

// PulsarPublisher sends notifications to a Pulsar topic keyed by recipient
type PulsarPublisher struct {
	producer messageSender
	topic    string
	logger   logger.Logger
}

// NewPulsarPublisher creates a producer on topic
func NewPulsarPublisher(client pulsar.Client, topic string, sendTimeout time.Duration, log logger.Logger) (*PulsarPublisher, error) {
	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic:                   topic,
		SendTimeout:             sendTimeout,
		MaxPendingMessages:      100,
		BatchingMaxPublishDelay: 10 * time.Millisecond,
		BatchingMaxMessages:     1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return newPulsarPublisher(producer, topic, log), nil
}

func newPulsarPublisher(producer messageSender, topic string, log logger.Logger) *PulsarPublisher {
	return &PulsarPublisher{producer: producer, topic: topic, logger: log}
}

// Publish serializes n to JSON and sends it. Messages are keyed by user id so a
// recipient's notifications stay ordered within a partition.
func (p *PulsarPublisher) Publish(ctx context.Context, n *Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	msg := &pulsar.ProducerMessage{
		Payload: payload,
		Key:     n.UserID.String(),
		Properties: map[string]string{
			"notificationId": n.ID.String(),
			"type":           string(n.Type),
		},
		EventTime: n.CreatedAt,
	}

	msgID, err := p.producer.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.LogDebug("Published notification", map[string]interface{}{
		"topic":          p.topic,
		"notificationId": n.ID.String(),
		"messageId":      fmt.Sprint(msgID),
	})
	return nil
}

// Close closes the producer
func (p *PulsarPublisher) Close() error {
	p.producer.Close()
	return nil
}

// NewPulsarClient builds a client from connection settings
func NewPulsarClient(cfg config.PulsarConfig) (pulsar.Client, error) {
	opts := pulsar.ClientOptions{
		URL:               cfg.URL,
		OperationTimeout:  cfg.OperationTimeout,
		ConnectionTimeout: cfg.ConnectionTimeout,
	}
	if cfg.TLSEnabled && cfg.TLSCertPath != "" {
		opts.TLSTrustCertsFilePath = cfg.TLSCertPath
		opts.TLSAllowInsecureConnection = false
	}
	if cfg.AuthToken != "" {
		opts.Authentication = pulsar.NewAuthenticationToken(cfg.AuthToken)
	}

	client, err := pulsar.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pulsar client: %w", err)
	}
	return client, nil
}
