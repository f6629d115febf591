package proctor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// DefaultSampleInterval is how often the camera occlusion check runs.
const DefaultSampleInterval = 2 * time.Second

// DefaultLuminanceThreshold is the 0-255 brightness cutoff for the
// covered-camera heuristic.
const DefaultLuminanceThreshold = 10

// DefaultAcquireTimeout bounds the wait for the first camera frame. A
// client that never starts streaming is treated as a failed acquisition.
const DefaultAcquireTimeout = 10 * time.Second

// frameFailureLimit is the number of consecutive failed samples before
// the feed is considered dead.
const frameFailureLimit = 3

// DefaultConstraints is the capture resolution requested from the camera.
var DefaultConstraints = Constraints{Width: 320, Height: 240}

// MonitorConfig wires one integrity monitor.
type MonitorConfig struct {
	Camera   CameraPort
	Platform PlatformPort
	Reporter Reporter

	// StrictMode additionally suppresses context-menu and clipboard-copy
	// platform events for the monitor's lifetime.
	StrictMode bool

	// SampleInterval, LuminanceThreshold and AcquireTimeout default
	// when zero.
	SampleInterval     time.Duration
	LuminanceThreshold float64
	AcquireTimeout     time.Duration

	Log zerolog.Logger
}

// Monitor runs the independent environment detectors of one attempt:
// fullscreen enforcement, page visibility, and the camera occlusion
// sampler. Each detector is its own goroutine reporting through the
// shared Reporter; none of them makes termination decisions.
type Monitor struct {
	cfg MonitorConfig
	log zerolog.Logger

	suspended atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once
}

// NewMonitor creates a monitor; call Start to attach it.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}
	if cfg.LuminanceThreshold <= 0 {
		cfg.LuminanceThreshold = DefaultLuminanceThreshold
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = DefaultAcquireTimeout
	}
	return &Monitor{
		cfg: cfg,
		log: cfg.Log.With().Str("component", "integrity_monitor").Logger(),
	}
}

// Start launches the detectors. Fullscreen entry is best-effort: a
// host-denied request is reported as a violation but never blocks the
// attempt. Returns immediately.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	if m.cfg.StrictMode {
		m.cfg.Platform.SetInputSuppression(true)
	}

	if err := m.cfg.Platform.RequestFullscreen(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Fullscreen request denied")
		m.cfg.Reporter.ReportViolation(model.ViolationFullscreenExit, 1)
	}

	m.wg.Add(3)
	go m.watchFullscreen(ctx)
	go m.watchVisibility(ctx)
	go m.sampleCamera(ctx)
}

// Stop tears down all detectors and restores suppressed platform events.
// Idempotent; the camera handle is released by the sampler goroutine on
// every exit path.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
		if m.cfg.StrictMode {
			m.cfg.Platform.SetInputSuppression(false)
		}
	})
}

// Suspended reports whether the viewport lost visibility. Consumed by
// the presentation layer to block input; the countdown keeps running.
func (m *Monitor) Suspended() bool {
	return m.suspended.Load()
}

func (m *Monitor) watchFullscreen(ctx context.Context) {
	defer m.wg.Done()
	events := m.cfg.Platform.FullscreenEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case fullscreen, ok := <-events:
			if !ok {
				return
			}
			if !fullscreen {
				m.cfg.Reporter.ReportViolation(model.ViolationFullscreenExit, 1)
			}
		}
	}
}

func (m *Monitor) watchVisibility(ctx context.Context) {
	defer m.wg.Done()
	events := m.cfg.Platform.VisibilityEvents()
	for {
		select {
		case <-ctx.Done():
			return
		case visible, ok := <-events:
			if !ok {
				return
			}
			if visible {
				m.suspended.Store(false)
				continue
			}
			m.suspended.Store(true)
			m.cfg.Reporter.ReportViolation(model.ViolationTabSwitch, 1)
		}
	}
}

// sampleCamera acquires the camera and runs the periodic occlusion
// check. Acquisition failure, including a client that never delivers a
// first frame within the acquire timeout, degrades monitoring to the
// other detectors after a single CAMERA_OFF report. The same report
// fires when an established feed goes silent mid-exam.
func (m *Monitor) sampleCamera(ctx context.Context) {
	defer m.wg.Done()

	acquireCtx, cancel := context.WithTimeout(ctx, m.cfg.AcquireTimeout)
	stream, err := m.cfg.Camera.Acquire(acquireCtx, DefaultConstraints)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.log.Warn().Err(err).Msg("Camera acquisition failed, degraded monitoring")
		m.cfg.Reporter.ReportViolation(model.ViolationCameraOff, 1)
		return
	}
	defer m.cfg.Camera.Release(stream)

	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sampleCtx, cancel := context.WithTimeout(ctx, m.cfg.SampleInterval)
			frame, err := m.cfg.Camera.SampleFrame(sampleCtx, stream)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				if failures >= frameFailureLimit {
					m.log.Warn().Err(err).Msg("Camera feed lost, degraded monitoring")
					m.cfg.Reporter.ReportViolation(model.ViolationCameraOff, 1)
					return
				}
				// Transient sampling failure; the next tick retries.
				m.log.Debug().Err(err).Msg("Frame sample failed")
				continue
			}
			failures = 0
			if MeanLuminance(frame) < m.cfg.LuminanceThreshold {
				m.cfg.Reporter.ReportViolation(model.ViolationCameraBlocked, 1)
			}
		}
	}
}
