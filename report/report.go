// Package report fires best-effort play reports that must never hold up playback.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/melody-cli/melody/log"
)

// ErrSideEffect wraps every failed report.
var ErrSideEffect = errors.New("side effect failed")

// Kind names one of the reports fired per play.
type Kind string

const (
	KindIncrement Kind = "increment play"
	KindStream    Kind = "record stream"
	KindLocal     Kind = "save local history"
)

// Failure is the error handed to OnError hooks. It matches ErrSideEffect and the cause.
type Failure struct {
	Kind    Kind
	TrackID string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", f.Kind, f.TrackID, ErrSideEffect, f.Err)
}

func (f *Failure) Unwrap() []error {
	return []error{ErrSideEffect, f.Err}
}

// errSkipped ends a report that does not apply, without counting as a failure.
var errSkipped = errors.New("skipped")

// Remote is the backend surface used for reporting.
type Remote interface {
	IncrementPlay(ctx context.Context, trackID string) error
	RecordStream(ctx context.Context, trackID string) error
}

// Config wires a Dispatcher. Every field is optional.
type Config struct {
	// Remote receives view increments and, for signed-in users, history records.
	Remote Remote
	// SignedIn reports whether a user session exists right now.
	SignedIn func() bool
	// Local mirrors the play somewhere on this machine.
	Local func(trackID string) error
}

// Dispatcher runs each report in its own goroutine. Failures are logged and
// handed to OnError hooks; nothing is retried.
type Dispatcher struct {
	cfg Config
	wg  sync.WaitGroup

	mu         sync.RWMutex
	onError    []func(error)
	onRecorded []func(trackID string)
}

func New(cfg Config) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// OnError registers a hook for failed reports. Hooks run on the reporting goroutine.
func (d *Dispatcher) OnError(fn func(error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = append(d.onError, fn)
}

// OnRecorded registers a hook that runs after a history record was stored remotely.
func (d *Dispatcher) OnRecorded(fn func(trackID string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRecorded = append(d.onRecorded, fn)
}

// ReportPlay returns immediately. The view increment, the remote history record
// and the local mirror run independently of each other.
func (d *Dispatcher) ReportPlay(trackID string) {
	if remote := d.cfg.Remote; remote != nil {
		d.spawn(KindIncrement, trackID, func(ctx context.Context) error {
			return remote.IncrementPlay(ctx, trackID)
		}, nil)

		if signedIn := d.cfg.SignedIn; signedIn != nil {
			d.spawn(KindStream, trackID, func(ctx context.Context) error {
				// the session lookup may hit the OS keyring
				if !signedIn() {
					return errSkipped
				}
				return remote.RecordStream(ctx, trackID)
			}, d.recorded)
		}
	}

	if local := d.cfg.Local; local != nil {
		d.spawn(KindLocal, trackID, func(context.Context) error {
			return local(trackID)
		}, nil)
	}
}

// Wait blocks until every report issued so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) spawn(kind Kind, trackID string, call func(context.Context) error, onSuccess func(string)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		err := call(context.Background())
		if errors.Is(err, errSkipped) {
			return
		}
		if err != nil {
			d.failed(&Failure{Kind: kind, TrackID: trackID, Err: err})
			return
		}

		log.With(log.Fields{"track": trackID}).Debugf("%s done", kind)
		if onSuccess != nil {
			onSuccess(trackID)
		}
	}()
}

func (d *Dispatcher) failed(err error) {
	log.Warn(err)

	d.mu.RLock()
	hooks := d.onError
	d.mu.RUnlock()

	for _, hook := range hooks {
		hook(err)
	}
}

func (d *Dispatcher) recorded(trackID string) {
	d.mu.RLock()
	hooks := d.onRecorded
	d.mu.RUnlock()

	for _, hook := range hooks {
		hook(trackID)
	}
}
