package html2png

import (
	"context"
	"fmt"
	"time"

	"github.com/alnah/go-html2png/internal/fileutil"
)

// Polling defaults for waiting on files written by external tools.
const (
	DefaultWaitAttempts = 10
	DefaultWaitInterval = 200 * time.Millisecond
	DefaultSettleDelay  = time.Second
)

// Sleeper pauses for d or until ctx is done.
// Tests substitute a fake to keep polling deterministic.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller checks a condition a bounded number of times with a fixed pause
// between checks.
type Poller struct {
	Attempts int
	Interval time.Duration
	Sleep    Sleeper
}

// DefaultPoller returns the poller used for the PDF handoff.
func DefaultPoller() Poller {
	return Poller{
		Attempts: DefaultWaitAttempts,
		Interval: DefaultWaitInterval,
		Sleep:    Sleep,
	}
}

// Until reports whether cond became true within the attempt budget.
// No pause follows the last failed check.
func (p Poller) Until(ctx context.Context, cond func() bool) (bool, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for i := 0; i < attempts; i++ {
		if cond() {
			return true, nil
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, p.Interval); err != nil {
			return false, err
		}
	}
	return false, nil
}

// WaitForFile blocks until path exists or the poller gives up.
func WaitForFile(ctx context.Context, p Poller, path string) error {
	ok, err := p.Until(ctx, func() bool { return fileutil.FileExists(path) })
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPDFNotFound, path)
	}
	return nil
}
