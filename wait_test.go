package html2png

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestPollerUntil - bounded polling
// ---------------------------------------------------------------------------

func TestPollerUntil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		trueOn     int // 1-based check that first returns true, 0 for never
		wantOK     bool
		wantChecks int
		wantSleeps int
	}{
		{name: "true on first check", trueOn: 1, wantOK: true, wantChecks: 1, wantSleeps: 0},
		{name: "true on third check", trueOn: 3, wantOK: true, wantChecks: 3, wantSleeps: 2},
		{name: "never true", trueOn: 0, wantOK: false, wantChecks: 10, wantSleeps: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sleeper := &recordingSleeper{}
			p := DefaultPoller()
			p.Sleep = sleeper.Sleep

			checks := 0
			ok, err := p.Until(context.Background(), func() bool {
				checks++
				return tt.trueOn != 0 && checks >= tt.trueOn
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if checks != tt.wantChecks {
				t.Errorf("checks = %d, want %d", checks, tt.wantChecks)
			}
			sleeps := sleeper.Calls()
			if len(sleeps) != tt.wantSleeps {
				t.Fatalf("sleeps = %d, want %d", len(sleeps), tt.wantSleeps)
			}
			for _, d := range sleeps {
				if d != DefaultWaitInterval {
					t.Errorf("sleep = %v, want %v", d, DefaultWaitInterval)
				}
			}
		})
	}
}

func TestPollerUntil_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Poller{Attempts: 5, Interval: time.Hour, Sleep: noSleep}
	ok, err := p.Until(ctx, func() bool { return false })
	if ok {
		t.Error("ok = true, want false")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestPollerUntil_ZeroAttemptsChecksOnce(t *testing.T) {
	t.Parallel()

	checks := 0
	p := Poller{Sleep: noSleep}
	_, _ = p.Until(context.Background(), func() bool {
		checks++
		return false
	})
	if checks != 1 {
		t.Errorf("checks = %d, want 1", checks)
	}
}

// ---------------------------------------------------------------------------
// TestSleep - context-aware pause
// ---------------------------------------------------------------------------

func TestSleep(t *testing.T) {
	t.Parallel()

	t.Run("elapses", func(t *testing.T) {
		t.Parallel()
		if err := Sleep(context.Background(), time.Millisecond); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWaitForFile - PDF handoff
// ---------------------------------------------------------------------------

func TestWaitForFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "a.pdf")
	writeFile(t, present, "%PDF")
	missing := filepath.Join(dir, "missing.pdf")

	p := DefaultPoller()
	p.Sleep = noSleep

	if err := WaitForFile(context.Background(), p, present); err != nil {
		t.Errorf("present file: unexpected error: %v", err)
	}

	err := WaitForFile(context.Background(), p, missing)
	if !errors.Is(err, ErrPDFNotFound) {
		t.Fatalf("missing file: error = %v, want ErrPDFNotFound", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q should carry the path", err)
	}
}
