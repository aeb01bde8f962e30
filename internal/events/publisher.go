package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type BetEventType string

const (
	BetCreated   BetEventType = "bet_created"
	BetAccepted  BetEventType = "bet_accepted"
	BetCancelled BetEventType = "bet_cancelled"
	BetResolved  BetEventType = "bet_resolved"
	BetDeleted   BetEventType = "bet_deleted"
)

// BetEvent is published after a lifecycle transition commits.
type BetEvent struct {
	Type     BetEventType `json:"type"`
	Bet      string       `json:"bet"`
	Actor    string       `json:"actor"`
	Creator  string       `json:"creator"`
	Acceptor string       `json:"acceptor,omitempty"`
	Winner   string       `json:"winner,omitempty"`
	Amount   uint64       `json:"amount"`
	TsUnixMs int64        `json:"ts_unix_ms"`
}

type Publisher interface {
	Publish(ctx context.Context, e BetEvent) error
}

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// Publish writes the event keyed by bet address so a bet's events stay ordered
// within one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, e BetEvent) error {
	msg, err := message(e)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, msg)
}

func message(e BetEvent) (kafka.Message, error) {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = time.Now().UnixMilli()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	return kafka.Message{
		Key:   []byte(e.Bet),
		Value: b,
		Time:  time.UnixMilli(e.TsUnixMs),
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e BetEvent) error {
	return nil
}
