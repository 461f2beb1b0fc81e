package app

import (
	"os"
	"syscall"
	"time"
)

// HotReloader watches the running binary and reports when a newer build
// appears on disk, so a development session can offer to restart itself.
type HotReloader struct {
	execPath string
	baseline time.Time
	interval time.Duration
	stopCh   chan struct{}

	onNewBinary func()
}

// NewHotReloader creates a reloader watching the current executable.
// Returns nil if the executable cannot be located.
func NewHotReloader(interval time.Duration) *HotReloader {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	info, err := os.Stat(execPath)
	if err != nil {
		return nil
	}
	return &HotReloader{
		execPath: execPath,
		baseline: info.ModTime(),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// ExecPath returns the watched binary path.
func (h *HotReloader) ExecPath() string { return h.execPath }

// OnNewBinary sets the callback invoked (from a background goroutine) when
// a newer binary is detected. UI callers must marshal back to their own
// thread.
func (h *HotReloader) OnNewBinary(callback func()) {
	h.onNewBinary = callback
}

// Start begins polling for a newer binary.
func (h *HotReloader) Start() {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-h.stopCh:
				return
			case <-ticker.C:
				info, err := os.Stat(h.execPath)
				if err != nil {
					continue
				}
				if info.ModTime().After(h.baseline) {
					if h.onNewBinary != nil {
						h.onNewBinary()
					}
					return
				}
			}
		}
	}()
}

// Stop halts polling.
func (h *HotReloader) Stop() {
	close(h.stopCh)
}

// Restart replaces the current process with the new binary.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.execPath, os.Args, os.Environ())
}
