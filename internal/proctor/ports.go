package proctor

import (
	"context"

	"github.com/edupro/proctor-backend/internal/model"
)

// Stream is an opaque handle to an acquired camera feed, owned by the
// CameraPort implementation.
type Stream interface{}

// Constraints requests a capture resolution from the camera device.
type Constraints struct {
	Width  int
	Height int
}

// Frame is one sampled camera image: 8-bit RGBA pixels, row-major,
// 4 bytes per pixel.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// CameraPort abstracts the platform camera capability. The monitor
// guarantees Release is called on every exit path once Acquire succeeds.
type CameraPort interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
	SampleFrame(ctx context.Context, s Stream) (Frame, error)
	Release(s Stream)
}

// PlatformPort abstracts viewport capabilities: fullscreen control,
// visibility signals and input-suppression toggles. Event channels carry
// the new state (true = fullscreen / visible) and may be nil when the
// platform cannot produce that signal.
type PlatformPort interface {
	RequestFullscreen(ctx context.Context) error
	ExitFullscreen(ctx context.Context) error
	FullscreenEvents() <-chan bool
	VisibilityEvents() <-chan bool
	// SetInputSuppression toggles context-menu and clipboard-copy
	// suppression. Best-effort deterrent, not a security boundary.
	SetInputSuppression(enabled bool)
}

// Reporter consumes violation reports from the detectors. The session
// engine satisfies this; the escalation policy lives on its side.
type Reporter interface {
	ReportViolation(vtype model.ViolationType, confidence float64)
}
