package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusQueued, StatusInProgress, true},
		{StatusInProgress, StatusReady, true},
		{StatusQueued, StatusReady, false},
		{StatusReady, StatusInProgress, false},
		{StatusInProgress, StatusQueued, false},
		{StatusReady, StatusReady, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Errorf("CanTransition(%s, %s) = %v", c.from, c.to, got)
		}
	}
}

func TestTotal(t *testing.T) {
	lines := []OrderLine{
		{ItemID: "pizza", Quantity: 2, UnitPrice: 3.10},
		{ItemID: "tea", Quantity: 3, UnitPrice: 0.70},
	}
	if got := Total(lines); got != 8.30 {
		t.Fatalf("Total = %v", got)
	}
}

func TestStatusEventWireFormat(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := NewStatusEvent("o-1", StatusQueued, StatusInProgress, 7, at)
	if ev.EventID == "" {
		t.Fatal("event id not set")
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"event", "event_id", "occurred_at", "order_id", "from_status", "to_status", "eta_minutes"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s in %s", k, b)
		}
	}
	if m["event"] != EventStatusChanged || m["to_status"] != "IN_PROGRESS" {
		t.Errorf("payload = %s", b)
	}
}
