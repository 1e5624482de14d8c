package storage

import "testing"

func TestIdempotencyRecordReplayable(t *testing.T) {
	fresh := IdempotencyRecord{RecruiterID: "r1", IdempotencyKey: "k1"}
	if fresh.Replayable() {
		t.Fatal("a freshly claimed key has no outcome to replay")
	}

	// A duplicate that blocked on the key insert and resumed after the first
	// writer committed reads back the recorded outcome. It must replay it,
	// never re-decide, whether the first attempt succeeded or was rejected.
	success := IdempotencyRecord{
		RecruiterID:     "r1",
		IdempotencyKey:  "k1",
		InterviewID:     "iv-1",
		StatusCode:      201,
		ResponsePayload: []byte(`{"id":"iv-1"}`),
	}
	if !success.Replayable() {
		t.Fatal("recorded 201 outcome must be replayed")
	}

	rejection := IdempotencyRecord{
		RecruiterID:    "r1",
		IdempotencyKey: "k1",
		StatusCode:     409,
	}
	if !rejection.Replayable() {
		t.Fatal("recorded rejection must be replayed")
	}
}
