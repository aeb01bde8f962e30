package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestMessageKeyedByBet(t *testing.T) {
	e := BetEvent{
		Type:     BetResolved,
		Bet:      "BetAddr111",
		Actor:    "Referee111",
		Creator:  "Creator111",
		Winner:   "Creator111",
		Amount:   4000,
		TsUnixMs: 1_700_000_000_000,
	}
	msg, err := message(e)
	if err != nil {
		t.Fatalf("message failed: %v", err)
	}
	if string(msg.Key) != e.Bet {
		t.Errorf("key = %q, want %q", msg.Key, e.Bet)
	}
	if msg.Time.UnixMilli() != e.TsUnixMs {
		t.Errorf("time = %v", msg.Time)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["type"] != "bet_resolved" || decoded["winner"] != "Creator111" {
		t.Errorf("payload = %v", decoded)
	}
	if _, ok := decoded["acceptor"]; ok {
		t.Error("empty acceptor should be omitted")
	}
}

func TestMessageStampsMissingTime(t *testing.T) {
	msg, err := message(BetEvent{Type: BetCreated, Bet: "b"})
	if err != nil {
		t.Fatalf("message failed: %v", err)
	}
	if msg.Time.IsZero() {
		t.Error("message time not stamped")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), BetEvent{Type: BetCreated}); err != nil {
		t.Errorf("NopPublisher returned %v", err)
	}
}

func TestNewKafkaWriterFlushesPromptly(t *testing.T) {
	w := NewKafkaWriter([]string{"k1:9092"}, "wager.bets")
	defer w.Close()

	if w.Topic != "wager.bets" {
		t.Errorf("topic = %q", w.Topic)
	}
	if w.BatchTimeout <= 0 || w.BatchTimeout > 50*time.Millisecond {
		t.Errorf("BatchTimeout = %v, want a short flush interval", w.BatchTimeout)
	}
	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Errorf("balancer = %T, want key hashing", w.Balancer)
	}
}
