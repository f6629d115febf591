package proctor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

type fakeCamera struct {
	mu         sync.Mutex
	acquireErr error
	frame      Frame
	frameErr   error
	released   bool

	// A silent client: calls park until the caller's context expires.
	blockAcquire bool
	blockFrames  bool
}

func (c *fakeCamera) Acquire(ctx context.Context, _ Constraints) (Stream, error) {
	if c.blockAcquire {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.acquireErr != nil {
		return nil, c.acquireErr
	}
	return struct{}{}, nil
}

func (c *fakeCamera) SampleFrame(ctx context.Context, _ Stream) (Frame, error) {
	if c.blockFrames {
		<-ctx.Done()
		return Frame{}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame, c.frameErr
}

func (c *fakeCamera) Release(_ Stream) {
	c.mu.Lock()
	c.released = true
	c.mu.Unlock()
}

func (c *fakeCamera) wasReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

type fakePlatform struct {
	mu            sync.Mutex
	fullscreenErr error
	fullscreen    chan bool
	visibility    chan bool
	suppression   []bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		fullscreen: make(chan bool, 8),
		visibility: make(chan bool, 8),
	}
}

func (p *fakePlatform) RequestFullscreen(ctx context.Context) error { return p.fullscreenErr }
func (p *fakePlatform) ExitFullscreen(ctx context.Context) error    { return nil }
func (p *fakePlatform) FullscreenEvents() <-chan bool               { return p.fullscreen }
func (p *fakePlatform) VisibilityEvents() <-chan bool               { return p.visibility }

func (p *fakePlatform) SetInputSuppression(enabled bool) {
	p.mu.Lock()
	p.suppression = append(p.suppression, enabled)
	p.mu.Unlock()
}

func (p *fakePlatform) suppressionCalls() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.suppression...)
}

type fakeReporter struct {
	mu      sync.Mutex
	reports []model.ViolationType
}

func (r *fakeReporter) ReportViolation(vtype model.ViolationType, confidence float64) {
	r.mu.Lock()
	r.reports = append(r.reports, vtype)
	r.mu.Unlock()
}

func (r *fakeReporter) reported() []model.ViolationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ViolationType(nil), r.reports...)
}

func (r *fakeReporter) waitFor(t *testing.T, vtype model.ViolationType) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		for _, got := range r.reported() {
			if got == vtype {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s, reported: %v", vtype, r.reported())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func newTestMonitor(camera CameraPort, platform PlatformPort, reporter Reporter, strict bool) *Monitor {
	return NewMonitor(MonitorConfig{
		Camera:             camera,
		Platform:           platform,
		Reporter:           reporter,
		StrictMode:         strict,
		SampleInterval:     20 * time.Millisecond,
		LuminanceThreshold: 10,
		AcquireTimeout:     50 * time.Millisecond,
		Log:                zerolog.Nop(),
	})
}

func TestMonitorFullscreenExitReported(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	platform.fullscreen <- false
	reporter.waitFor(t, model.ViolationFullscreenExit)
}

func TestMonitorFullscreenReentryNotReported(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, false)

	m.Start(context.Background())
	platform.fullscreen <- true
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	for _, v := range reporter.reported() {
		if v == model.ViolationFullscreenExit {
			t.Fatal("fullscreen re-entry reported as a violation")
		}
	}
}

func TestMonitorDeniedFullscreenRequestReported(t *testing.T) {
	platform := newFakePlatform()
	platform.fullscreenErr = errors.New("denied by host")
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	reporter.waitFor(t, model.ViolationFullscreenExit)
}

func TestMonitorVisibilityLossSuspendsAndReports(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	platform.visibility <- false
	reporter.waitFor(t, model.ViolationTabSwitch)
	if !m.Suspended() {
		t.Error("monitor not suspended after visibility loss")
	}

	platform.visibility <- true
	deadline := time.After(2 * time.Second)
	for m.Suspended() {
		select {
		case <-deadline:
			t.Fatal("monitor still suspended after visibility regained")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMonitorCameraAcquireFailureDegrades(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	camera := &fakeCamera{acquireErr: errors.New("no device")}
	m := newTestMonitor(camera, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	reporter.waitFor(t, model.ViolationCameraOff)

	// The other detectors keep running after camera degradation.
	platform.visibility <- false
	reporter.waitFor(t, model.ViolationTabSwitch)
}

func TestMonitorSilentClientReportsCameraOff(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	camera := &fakeCamera{blockAcquire: true}
	m := newTestMonitor(camera, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	// No first frame ever arrives; acquisition must time out and report.
	reporter.waitFor(t, model.ViolationCameraOff)
}

func TestMonitorFrameDroughtReportsCameraOff(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	camera := &fakeCamera{blockFrames: true}
	m := newTestMonitor(camera, platform, reporter, false)

	m.Start(context.Background())
	reporter.waitFor(t, model.ViolationCameraOff)
	m.Stop()

	if !camera.wasReleased() {
		t.Error("camera not released after feed loss")
	}
}

func TestMonitorDarkFrameReportsCameraBlocked(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	camera := &fakeCamera{frame: solidFrame(2, 2, 2, 2, 2)}
	m := newTestMonitor(camera, platform, reporter, false)

	m.Start(context.Background())
	defer m.Stop()

	reporter.waitFor(t, model.ViolationCameraBlocked)
}

func TestMonitorStopReleasesCamera(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	camera := &fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}
	m := newTestMonitor(camera, platform, reporter, false)

	m.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	if !camera.wasReleased() {
		t.Error("camera not released on stop")
	}

	// Stop is idempotent.
	m.Stop()
}

func TestMonitorStrictModeTogglesSuppression(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, true)

	m.Start(context.Background())
	m.Stop()

	calls := platform.suppressionCalls()
	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("suppression calls = %v, want [true false]", calls)
	}
}

func TestMonitorNonStrictNeverSuppresses(t *testing.T) {
	platform := newFakePlatform()
	reporter := &fakeReporter{}
	m := newTestMonitor(&fakeCamera{frame: solidFrame(2, 2, 200, 200, 200)}, platform, reporter, false)

	m.Start(context.Background())
	m.Stop()

	if calls := platform.suppressionCalls(); len(calls) != 0 {
		t.Errorf("suppression calls = %v, want none", calls)
	}
}
