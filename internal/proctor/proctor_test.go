package proctor

import (
	"testing"
	"time"
)

func newTestMonitor() (*Monitor, *[]Anomaly, *time.Time) {
	var reported []Anomaly
	clock := time.Now()
	m := NewMonitor(nil, func(a Anomaly) { reported = append(reported, a) })
	m.now = func() time.Time { return clock }
	return m, &reported, &clock
}

func TestMonitor_ConfidenceThreshold(t *testing.T) {
	m, reported, _ := newTestMonitor()

	m.Observe(Anomaly{Type: TypeNoFace, Confidence: 0.3})
	if len(*reported) != 0 {
		t.Fatalf("low-confidence anomaly reported")
	}

	m.Observe(Anomaly{Type: TypeNoFace, Confidence: 0.9, Message: "no face for 4s"})
	if len(*reported) != 1 {
		t.Fatalf("reported = %d, want 1", len(*reported))
	}
	if (*reported)[0].Message != "no face for 4s" {
		t.Errorf("message = %q", (*reported)[0].Message)
	}
}

func TestMonitor_CooldownPerType(t *testing.T) {
	m, reported, clock := newTestMonitor()

	m.Observe(Anomaly{Type: TypeLookingAway, Confidence: 0.9})
	m.Observe(Anomaly{Type: TypeLookingAway, Confidence: 0.9})
	if len(*reported) != 1 {
		t.Fatalf("repeat in cooldown reported, got %d", len(*reported))
	}

	// A different type is not throttled by the first.
	m.Observe(Anomaly{Type: TypeMultipleFaces, Confidence: 0.9})
	if len(*reported) != 2 {
		t.Fatalf("distinct type suppressed, got %d", len(*reported))
	}

	// After the cooldown the same type reports again.
	*clock = clock.Add(DefaultCooldown + time.Second)
	m.Observe(Anomaly{Type: TypeLookingAway, Confidence: 0.9})
	if len(*reported) != 3 {
		t.Errorf("post-cooldown repeat suppressed, got %d", len(*reported))
	}
}
