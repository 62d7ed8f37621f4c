package proctor

import (
	"context"
	"time"
)

// Camera is the slice of the track set the camera watcher needs.
type Camera interface {
	CameraAvailable() bool
	CameraOn() bool
}

// DefaultPollInterval is how often the camera watcher samples state.
const DefaultPollInterval = 2 * time.Second

// CameraSource flags a dark camera during an interview. A candidate whose
// camera is off or was never acquired cannot be observed, which is itself
// the anomaly; the Monitor's cooldown keeps it to one flag per episode.
type CameraSource struct {
	cam      Camera
	interval time.Duration
	out      chan Anomaly
}

// NewCameraSource creates a watcher over cam with the default interval.
func NewCameraSource(cam Camera) *CameraSource {
	return &CameraSource{
		cam:      cam,
		interval: DefaultPollInterval,
		out:      make(chan Anomaly, 4),
	}
}

// Anomalies implements Source.
func (s *CameraSource) Anomalies() <-chan Anomaly {
	return s.out
}

// Run samples camera state until ctx is done, then closes the channel.
func (s *CameraSource) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a, ok := s.sample(); ok {
				select {
				case s.out <- a:
				default:
				}
			}
		}
	}
}

func (s *CameraSource) sample() (Anomaly, bool) {
	if !s.cam.CameraAvailable() {
		return Anomaly{Type: TypeNoFace, Confidence: 1, Message: "camera capture unavailable"}, true
	}
	if !s.cam.CameraOn() {
		return Anomaly{Type: TypeNoFace, Confidence: 1, Message: "camera disabled"}, true
	}
	return Anomaly{}, false
}
