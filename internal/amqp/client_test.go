package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5672: connect: connection refused"), true},
		{"connection closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"unexpected EOF", errors.New("read tcp: unexpected EOF"), true},
		{"broken pipe", errors.New("write tcp: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"validation error", errors.New("invalid routing key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	for i := 0; i < maxFailures; i++ {
		if client.isCircuitOpen() {
			t.Fatalf("circuit open after %d failures, want %d", i, maxFailures)
		}
		client.recordFailure()
	}

	if !client.isCircuitOpen() {
		t.Fatal("circuit should be open after max failures")
	}
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now().Add(-openTimeout - time.Second)

	if client.isCircuitOpen() {
		t.Fatal("circuit should transition to half-open after timeout")
	}
	if got := atomic.LoadInt32(&client.state); got != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", got)
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	client.recordSuccess()

	if client.isCircuitOpen() {
		t.Fatal("circuit should be closed after success")
	}
	if got := atomic.LoadInt64(&client.failureCount); got != 0 {
		t.Fatalf("failureCount = %d, want 0", got)
	}
}

func TestPublishFailsWhenCircuitOpen(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}
	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()

	msg := NewRecordEventMessage("u1", "expenses", "r1", ActionCreated)
	err := client.PublishRecordEvent(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error when circuit is open")
	}
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("error = %v, want circuit breaker error", err)
	}
}

func TestRecordEventMessageRoundTrip(t *testing.T) {
	msg := NewRecordEventMessage("u1", "incomes", "r42", ActionUpdated)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := RecordEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.OwnerID != "u1" || got.Kind != "incomes" || got.RecordID != "r42" || got.Action != ActionUpdated {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}
}

func TestRecordEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := RecordEventMessageFromJSON([]byte(`{bad`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
