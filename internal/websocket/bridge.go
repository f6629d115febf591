package websocket

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/edupro/proctor-backend/internal/proctor"
)

// Bridge errors.
var (
	ErrBridgeClosed  = errors.New("stream closed")
	ErrCameraDenied  = errors.New("camera denied by client")
	ErrNoFrame       = errors.New("no frame received")
	ErrInvalidPixels = errors.New("invalid frame pixel data")
)

// Bridge adapts one student connection into the proctor ports: client
// messages (frames, fullscreen and visibility changes, camera errors)
// become port signals, and port calls become control pushes to the
// client. The monitor never touches the connection directly.
type Bridge struct {
	conn *Conn

	// Latest-frame mailbox; a newer frame replaces an unconsumed one.
	frames     chan proctor.Frame
	fullscreen chan bool
	visibility chan bool
	cameraErr  chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// NewBridge creates a bridge over an upgraded connection.
func NewBridge(conn *Conn) *Bridge {
	return &Bridge{
		conn:       conn,
		frames:     make(chan proctor.Frame, 1),
		fullscreen: make(chan bool, 8),
		visibility: make(chan bool, 8),
		cameraErr:  make(chan error, 1),
		closed:     make(chan struct{}),
	}
}

// Deliver feeds one client message into the port channels. Called by
// the reader loop for proctoring actions; other actions never reach the
// bridge. Unconsumed stale signals are dropped rather than blocking the
// reader.
func (b *Bridge) Deliver(msg *RequestPayload) error {
	switch msg.Action {
	case ActionFrame:
		pixels, err := base64.StdEncoding.DecodeString(msg.Pixels)
		if err != nil {
			return ErrInvalidPixels
		}
		frame := proctor.Frame{Width: msg.Width, Height: msg.Height, Pixels: pixels}
		select {
		case b.frames <- frame:
		default:
			// Replace the stale frame.
			select {
			case <-b.frames:
			default:
			}
			select {
			case b.frames <- frame:
			default:
			}
		}

	case ActionFullscreen:
		if msg.Active == nil {
			return errors.New("fullscreen requires active")
		}
		select {
		case b.fullscreen <- *msg.Active:
		default:
		}

	case ActionVisibility:
		if msg.Active == nil {
			return errors.New("visibility requires active")
		}
		select {
		case b.visibility <- *msg.Active:
		default:
		}

	case ActionCameraError:
		select {
		case b.cameraErr <- ErrCameraDenied:
		default:
		}
	}
	return nil
}

// Close releases every port waiter. Idempotent; called when the
// connection goes away.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

// ─── proctor.CameraPort ─────────────────────────────────────────────

// Acquire asks the client to start capture and waits for the first
// frame. A camera_error message or a dead connection fails acquisition.
func (b *Bridge) Acquire(ctx context.Context, c proctor.Constraints) (proctor.Stream, error) {
	err := b.conn.WriteTyped(CameraRequestEvent{
		Event:  EventCameraRequest,
		Width:  c.Width,
		Height: c.Height,
	})
	if err != nil {
		return nil, err
	}

	select {
	case frame := <-b.frames:
		// Put the first frame back for the sampler.
		select {
		case b.frames <- frame:
		default:
		}
		return b, nil
	case err := <-b.cameraErr:
		return nil, err
	case <-b.closed:
		return nil, ErrBridgeClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SampleFrame returns the most recent frame the client streamed.
func (b *Bridge) SampleFrame(ctx context.Context, _ proctor.Stream) (proctor.Frame, error) {
	select {
	case frame := <-b.frames:
		return frame, nil
	case <-b.closed:
		return proctor.Frame{}, ErrBridgeClosed
	case <-ctx.Done():
		return proctor.Frame{}, ctx.Err()
	}
}

// Release tells the client to stop capturing. Best-effort.
func (b *Bridge) Release(_ proctor.Stream) {
	_ = b.conn.WriteTyped(ControlEvent{Event: EventCameraRelease})
}

// ─── proctor.PlatformPort ───────────────────────────────────────────

// RequestFullscreen pushes the fullscreen request to the client.
func (b *Bridge) RequestFullscreen(_ context.Context) error {
	return b.conn.WriteTyped(ControlEvent{Event: EventFullscreenRequest})
}

// ExitFullscreen pushes the fullscreen exit to the client.
func (b *Bridge) ExitFullscreen(_ context.Context) error {
	return b.conn.WriteTyped(ControlEvent{Event: EventFullscreenExit})
}

// FullscreenEvents returns the client's fullscreen change signals.
func (b *Bridge) FullscreenEvents() <-chan bool {
	return b.fullscreen
}

// VisibilityEvents returns the client's visibility change signals.
func (b *Bridge) VisibilityEvents() <-chan bool {
	return b.visibility
}

// SetInputSuppression toggles client-side context-menu/clipboard
// suppression. Best-effort.
func (b *Bridge) SetInputSuppression(enabled bool) {
	_ = b.conn.WriteTyped(SuppressionEvent{Event: EventSuppression, Enabled: enabled})
}
