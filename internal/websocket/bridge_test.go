package websocket

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func boolPtr(b bool) *bool { return &b }

func frameMsg(width, height int, pixels []byte) *RequestPayload {
	return &RequestPayload{
		Action: ActionFrame,
		Width:  width,
		Height: height,
		Pixels: base64.StdEncoding.EncodeToString(pixels),
	}
}

func TestBridgeDeliverFrame(t *testing.T) {
	b := NewBridge(nil)

	pixels := []byte{1, 2, 3, 4}
	if err := b.Deliver(frameMsg(1, 1, pixels)); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	frame, err := b.SampleFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if frame.Width != 1 || frame.Height != 1 || len(frame.Pixels) != 4 {
		t.Errorf("frame = %dx%d/%d bytes, want 1x1/4", frame.Width, frame.Height, len(frame.Pixels))
	}
}

func TestBridgeLatestFrameWins(t *testing.T) {
	b := NewBridge(nil)

	if err := b.Deliver(frameMsg(1, 1, []byte{1, 1, 1, 1})); err != nil {
		t.Fatalf("deliver first: %v", err)
	}
	if err := b.Deliver(frameMsg(2, 1, []byte{2, 2, 2, 2, 2, 2, 2, 2})); err != nil {
		t.Fatalf("deliver second: %v", err)
	}

	frame, err := b.SampleFrame(context.Background(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if frame.Width != 2 {
		t.Errorf("got stale frame, width = %d, want 2", frame.Width)
	}
}

func TestBridgeDeliverInvalidPixels(t *testing.T) {
	b := NewBridge(nil)

	err := b.Deliver(&RequestPayload{Action: ActionFrame, Width: 1, Height: 1, Pixels: "%%%not-base64%%%"})
	if !errors.Is(err, ErrInvalidPixels) {
		t.Errorf("err = %v, want ErrInvalidPixels", err)
	}
}

func TestBridgeDeliverSignals(t *testing.T) {
	b := NewBridge(nil)

	if err := b.Deliver(&RequestPayload{Action: ActionFullscreen, Active: boolPtr(false)}); err != nil {
		t.Fatalf("deliver fullscreen: %v", err)
	}
	select {
	case got := <-b.FullscreenEvents():
		if got {
			t.Error("fullscreen event = true, want false")
		}
	default:
		t.Fatal("no fullscreen event delivered")
	}

	if err := b.Deliver(&RequestPayload{Action: ActionVisibility, Active: boolPtr(true)}); err != nil {
		t.Fatalf("deliver visibility: %v", err)
	}
	select {
	case got := <-b.VisibilityEvents():
		if !got {
			t.Error("visibility event = false, want true")
		}
	default:
		t.Fatal("no visibility event delivered")
	}
}

func TestBridgeDeliverSignalsRequireActive(t *testing.T) {
	b := NewBridge(nil)

	if err := b.Deliver(&RequestPayload{Action: ActionFullscreen}); err == nil {
		t.Error("fullscreen without active accepted")
	}
	if err := b.Deliver(&RequestPayload{Action: ActionVisibility}); err == nil {
		t.Error("visibility without active accepted")
	}
}

func TestBridgeSampleFrameAfterClose(t *testing.T) {
	b := NewBridge(nil)
	b.Close()
	b.Close() // idempotent

	_, err := b.SampleFrame(context.Background(), nil)
	if !errors.Is(err, ErrBridgeClosed) {
		t.Errorf("err = %v, want ErrBridgeClosed", err)
	}
}

func TestBridgeSampleFrameContextCancel(t *testing.T) {
	b := NewBridge(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := b.SampleFrame(ctx, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
