package media

import (
	"errors"
	"testing"

	"github.com/pion/webrtc/v4"
)

// fakeCapture fails whichever acquisitions it is told to.
type fakeCapture struct {
	cameraErr error
	micErr    error
	screenErr error
}

func (f fakeCapture) Camera() (webrtc.TrackLocal, error) {
	if f.cameraErr != nil {
		return nil, f.cameraErr
	}
	return SampleCapture{}.Camera()
}

func (f fakeCapture) Microphone() (webrtc.TrackLocal, error) {
	if f.micErr != nil {
		return nil, f.micErr
	}
	return SampleCapture{}.Microphone()
}

func (f fakeCapture) Screen() (webrtc.TrackLocal, error) {
	if f.screenErr != nil {
		return nil, f.screenErr
	}
	return SampleCapture{}.Screen()
}

func TestTrackSet_CameraAcquisitionFailure(t *testing.T) {
	ts := NewTrackSet(fakeCapture{cameraErr: errors.New("device busy")})

	if ts.CameraAvailable() {
		t.Error("CameraAvailable() = true, want false")
	}
	if ts.CameraOn() {
		t.Error("CameraOn() = true for unacquired camera")
	}
	if !ts.MicAvailable() {
		t.Error("MicAvailable() = false, want true")
	}

	// Toggling the missing capability is rejected in both directions.
	if _, err := ts.SetCamera(true); !errors.Is(err, ErrUnavailable) {
		t.Errorf("SetCamera(true) error = %v, want ErrUnavailable", err)
	}
	if _, err := ts.SetCamera(false); !errors.Is(err, ErrUnavailable) {
		t.Errorf("SetCamera(false) error = %v, want ErrUnavailable", err)
	}

	// The session continues with the acquired media only.
	got := ts.Outbound()
	if len(got) != 1 {
		t.Fatalf("Outbound() = %d tracks, want 1 (mic only)", len(got))
	}
	if got[0].ID() != "microphone" {
		t.Errorf("Outbound()[0].ID() = %q, want microphone", got[0].ID())
	}
}

func TestTrackSet_MicAcquisitionFailure(t *testing.T) {
	ts := NewTrackSet(fakeCapture{micErr: errors.New("no input device")})

	if ts.MicAvailable() {
		t.Error("MicAvailable() = true, want false")
	}
	if _, err := ts.SetMic(true); !errors.Is(err, ErrUnavailable) {
		t.Errorf("SetMic(true) error = %v, want ErrUnavailable", err)
	}
	if got := ts.Outbound(); len(got) != 1 || got[0].ID() != "camera" {
		t.Errorf("Outbound() = %d tracks, want camera only", len(got))
	}
}

func TestTrackSet_ScreenCaptureFailure(t *testing.T) {
	captureErr := errors.New("display capture denied")
	ts := NewTrackSet(fakeCapture{screenErr: captureErr})

	if err := ts.StartScreen(); !errors.Is(err, captureErr) {
		t.Fatalf("StartScreen() error = %v, want %v", err, captureErr)
	}

	// The failed start leaves the rest of the set untouched.
	if got := ts.Outbound(); len(got) != 2 {
		t.Errorf("Outbound() = %d tracks after failed screen start, want 2", len(got))
	}
}

func TestTrackSet_Toggles(t *testing.T) {
	ts := NewTrackSet(fakeCapture{})

	// Both acquired tracks start enabled.
	if got := ts.Outbound(); len(got) != 2 {
		t.Fatalf("Outbound() = %d tracks, want 2", len(got))
	}

	on, err := ts.SetCamera(false)
	if err != nil || on {
		t.Fatalf("SetCamera(false) = %v, %v", on, err)
	}
	if ts.CameraOn() {
		t.Error("CameraOn() = true after disable")
	}
	if got := ts.Outbound(); len(got) != 1 {
		t.Errorf("Outbound() = %d tracks with camera off, want 1", len(got))
	}

	if err := ts.StartScreen(); err != nil {
		t.Fatalf("StartScreen() error = %v", err)
	}
	if got := ts.Outbound(); len(got) != 2 {
		t.Errorf("Outbound() = %d tracks with screen on, want 2", len(got))
	}
	ts.StopScreen()

	ts.StopAll()
	if got := ts.Outbound(); len(got) != 0 {
		t.Errorf("Outbound() = %d tracks after StopAll, want 0", len(got))
	}
}
