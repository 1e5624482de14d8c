package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestExtractEventMeta(t *testing.T) {
	msg := kafka.Message{
		Topic: "interview.scheduled.v1",
		Key:   []byte("fallback-key"),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte("evt-1")},
			{Key: "event_type", Value: []byte("interview.scheduled.v1")},
		},
	}
	meta := ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != "interview.scheduled.v1" {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	meta = ExtractEventMeta(kafka.Message{Topic: "some.topic", Key: []byte("k-1")})
	if meta.EventID != "k-1" || meta.EventType != "some.topic" {
		t.Fatalf("expected fallback to key/topic, got %+v", meta)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, kafka-2:9092 ,,kafka-3:9092")
	if len(got) != 3 || got[0] != "kafka-1:9092" || got[2] != "kafka-3:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("empty input must yield no brokers")
	}
}
