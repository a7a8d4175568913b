package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Reloader interface {
	Reload(ctx context.Context) error
}

// RefreshScheduler turns refresh requests into reloads of every registered
// service. Requests inside the debounce window collapse into one reload
// round, and a ticker adds a request each interval while the view is visible.
type RefreshScheduler struct {
	interval  time.Duration
	debounce  time.Duration
	reloaders []Reloader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	visible  bool
	disposed bool
	timer    *time.Timer
	gen      uint64
	stopChan chan struct{}
}

func NewRefreshScheduler(interval, debounce time.Duration, reloaders ...Reloader) *RefreshScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &RefreshScheduler{
		interval:  interval,
		debounce:  debounce,
		reloaders: reloaders,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetVisible starts polling plus one refresh when visible, and stops
// polling otherwise.
func (s *RefreshScheduler) SetVisible(visible bool) {
	if visible {
		s.Start()
		return
	}
	s.Stop()
}

func (s *RefreshScheduler) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Start arms the interval ticker if it is not running and requests a refresh.
func (s *RefreshScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.visible = true
	if s.stopChan == nil {
		s.startPollingLocked()
	}
	s.refreshLocked()
}

// Stop disarms the ticker. Pending or running reloads are not affected.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.visible = false
	s.stopPollingLocked()
}

// Polling reports whether the interval ticker is armed.
func (s *RefreshScheduler) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopChan != nil
}

// Refresh requests a reload of every service after the debounce delay.
// Each call restarts the delay.
func (s *RefreshScheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.refreshLocked()
}

func (s *RefreshScheduler) refreshLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(gen)
	})
}

func (s *RefreshScheduler) fire(gen uint64) {
	s.mu.Lock()
	// a timer stopped too late still runs; only the latest one may fire
	if s.disposed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	var wg sync.WaitGroup
	for _, r := range s.reloaders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Reload(s.ctx); err != nil {
				if errors.Is(err, ErrReloadInProgress) {
					return
				}
				slog.Error("Error reloading quotes", "error", err)
			}
		}()
	}
	wg.Wait()
}

func (s *RefreshScheduler) startPollingLocked() {
	stop := make(chan struct{})
	s.stopChan = stop
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Refresh()
			case <-stop:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()

	slog.Info("Refresh polling started", "interval", s.interval)
}

func (s *RefreshScheduler) stopPollingLocked() {
	if s.stopChan == nil {
		return
	}
	close(s.stopChan)
	s.stopChan = nil
	slog.Info("Refresh polling stopped")
}

// Dispose cancels the pending refresh, stops polling, cancels running
// reloads and waits for them. Later inputs are ignored.
func (s *RefreshScheduler) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.visible = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.stopPollingLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	slog.Info("Refresh scheduler disposed")
}
