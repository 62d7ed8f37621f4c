// Package media owns the client's current outbound track set. Toggles mutate
// it atomically and the peer layer reads a snapshot when swapping senders, so
// "what am I sending right now" never lives in ambient shared state.
package media

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
)

// ErrUnavailable marks a capability whose capture device could not be
// acquired. Toggles for it are rejected; the session continues without it.
var ErrUnavailable = errors.New("capture unavailable")

// Capture acquires local capture tracks. The production implementation wraps
// whatever capture pipeline feeds the tracks; tests substitute a fake.
type Capture interface {
	Camera() (webrtc.TrackLocal, error)
	Microphone() (webrtc.TrackLocal, error)
	Screen() (webrtc.TrackLocal, error)
}

// TrackSet is the explicit per-connection outbound track set: which capture
// tracks exist, and which are currently enabled. Safe for concurrent use.
type TrackSet struct {
	mu sync.Mutex

	capture Capture

	camera webrtc.TrackLocal
	mic    webrtc.TrackLocal
	screen webrtc.TrackLocal

	cameraOn bool
	micOn    bool
	screenOn bool

	cameraErr error
	micErr    error
}

// NewTrackSet acquires camera and microphone up front. Acquisition failures
// do not fail the constructor: the capability is marked unavailable and the
// session proceeds with whatever media exists (audio-only, or view-only).
func NewTrackSet(capture Capture) *TrackSet {
	ts := &TrackSet{capture: capture}

	ts.camera, ts.cameraErr = capture.Camera()
	ts.cameraOn = ts.cameraErr == nil

	ts.mic, ts.micErr = capture.Microphone()
	ts.micOn = ts.micErr == nil

	return ts
}

// CameraAvailable reports whether camera capture was acquired.
func (ts *TrackSet) CameraAvailable() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.cameraErr == nil
}

// CameraOn reports whether the camera track is currently enabled.
func (ts *TrackSet) CameraOn() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.cameraOn
}

// MicAvailable reports whether microphone capture was acquired.
func (ts *TrackSet) MicAvailable() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.micErr == nil
}

// SetCamera toggles the camera. Returns the applied state; ErrUnavailable if
// capture was never acquired.
func (ts *TrackSet) SetCamera(on bool) (bool, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.cameraErr != nil {
		return false, ErrUnavailable
	}
	ts.cameraOn = on
	return on, nil
}

// SetMic toggles the microphone.
func (ts *TrackSet) SetMic(on bool) (bool, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.micErr != nil {
		return false, ErrUnavailable
	}
	ts.micOn = on
	return on, nil
}

// StartScreen acquires a display capture track and enables it.
func (ts *TrackSet) StartScreen() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.screenOn {
		return nil
	}
	track, err := ts.capture.Screen()
	if err != nil {
		return err
	}
	ts.screen = track
	ts.screenOn = true
	return nil
}

// StopScreen disables screen sharing and drops the capture track.
func (ts *TrackSet) StopScreen() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.screen = nil
	ts.screenOn = false
}

// Outbound returns the tracks that should be attached to every peer
// connection right now.
func (ts *TrackSet) Outbound() []webrtc.TrackLocal {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	var tracks []webrtc.TrackLocal
	if ts.cameraOn && ts.camera != nil {
		tracks = append(tracks, ts.camera)
	}
	if ts.micOn && ts.mic != nil {
		tracks = append(tracks, ts.mic)
	}
	if ts.screenOn && ts.screen != nil {
		tracks = append(tracks, ts.screen)
	}
	return tracks
}

// StopAll drops every track reference. Called on room exit so no capture
// handle outlives the session.
func (ts *TrackSet) StopAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.camera, ts.mic, ts.screen = nil, nil, nil
	ts.cameraOn, ts.micOn, ts.screenOn = false, false, false
}
