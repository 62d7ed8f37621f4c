package media

import (
	"github.com/pion/webrtc/v4"
)

// SampleCapture produces static sample tracks that an external frame source
// writes into. It stands in for platform capture: negotiation and track
// plumbing are identical whether the bytes come from a webcam or a generator.
type SampleCapture struct{}

func (SampleCapture) Camera() (webrtc.TrackLocal, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"camera", "hiresafe-camera",
	)
}

func (SampleCapture) Microphone() (webrtc.TrackLocal, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"microphone", "hiresafe-mic",
	)
}

func (SampleCapture) Screen() (webrtc.TrackLocal, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"screen", "hiresafe-screen",
	)
}
