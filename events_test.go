package carcount

import (
	"testing"
	"time"
)

func TestEventLedgerSeen(t *testing.T) {

	l := &eventLedger{}
	now := time.Unix(1000, 0)
	window := time.Second
	distance := 50

	l.add(crossingEvent{when: now, x: 100, line: 0, counter: "down"})

	tests := []struct {
		name string
		line int
		x    int
		at   time.Time
		want bool
	}{
		{"same spot", 0, 100, now.Add(100 * time.Millisecond), true},
		{"within distance", 0, 150, now.Add(100 * time.Millisecond), true},
		{"beyond distance", 0, 151, now.Add(100 * time.Millisecond), false},
		{"other line", 1, 100, now.Add(100 * time.Millisecond), false},
		{"window expired", 0, 100, now.Add(window + time.Millisecond), false},
		{"window boundary", 0, 100, now.Add(window), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.seen(tt.line, tt.x, tt.at, window, distance); got != tt.want {
				t.Errorf("seen(%d, %d) = %v, want %v", tt.line, tt.x, got, tt.want)
			}
		})
	}
}

func TestEventLedgerPrune(t *testing.T) {

	l := &eventLedger{}
	now := time.Unix(1000, 0)
	window := time.Second

	l.add(crossingEvent{when: now, x: 100, line: 0, counter: "down"})
	l.add(crossingEvent{when: now.Add(500 * time.Millisecond), x: 300, line: 0, counter: "down"})
	l.add(crossingEvent{when: now.Add(900 * time.Millisecond), x: 500, line: 1, counter: "up"})

	l.prune(now.Add(1200*time.Millisecond), window)

	if len(l.events) != 2 {
		t.Fatalf("expected 2 events after prune, got %d", len(l.events))
	}

	for _, ev := range l.events {
		if ev.x == 100 {
			t.Error("expected oldest event pruned")
		}
	}

	l.clear()
	if len(l.events) != 0 {
		t.Errorf("expected empty ledger after clear, got %d", len(l.events))
	}
}
