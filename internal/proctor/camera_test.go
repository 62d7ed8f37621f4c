package proctor

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeCamera struct {
	mu        sync.Mutex
	available bool
	on        bool
}

func (f *fakeCamera) CameraAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeCamera) CameraOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

func (f *fakeCamera) set(available, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available, f.on = available, on
}

func TestCameraSource_SampleStates(t *testing.T) {
	cam := &fakeCamera{}
	src := NewCameraSource(cam)

	cam.set(false, false)
	a, ok := src.sample()
	if !ok || a.Type != TypeNoFace || a.Message != "camera capture unavailable" {
		t.Errorf("unavailable camera: got %+v, ok=%v", a, ok)
	}

	cam.set(true, false)
	a, ok = src.sample()
	if !ok || a.Message != "camera disabled" {
		t.Errorf("disabled camera: got %+v, ok=%v", a, ok)
	}

	cam.set(true, true)
	if _, ok := src.sample(); ok {
		t.Error("healthy camera flagged")
	}
}

func TestCameraSource_EmitsUntilCancelled(t *testing.T) {
	cam := &fakeCamera{}
	cam.set(true, false)

	src := NewCameraSource(cam)
	src.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go src.Run(ctx)

	select {
	case a := <-src.Anomalies():
		if a.Type != TypeNoFace {
			t.Errorf("anomaly type = %q", a.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no anomaly emitted for a dark camera")
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-src.Anomalies():
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
