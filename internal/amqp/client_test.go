package amqp

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{12, 30 * time.Second},
		{-1, 1 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{errors.New("connection refused"), true},
		{errors.New("connection closed"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("Exception (504) Reason: channel/connection is not open"), true},
		{errors.New("access refused"), false},
	}
	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.expected {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
		}
	}
}

func TestLedgerChangeMessageJSON(t *testing.T) {
	msg := NewLedgerChangeMessage("ada", 42, OpDelete)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := LedgerChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Owner != "ada" || got.ID != 42 || got.Op != OpDelete {
		t.Fatalf("lost fields: %+v", got)
	}
	if _, err := LedgerChangeMessageFromJSON([]byte("{broken")); err == nil {
		t.Fatalf("expected error for broken payload")
	}
}
