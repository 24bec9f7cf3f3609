package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeRemote struct {
	mu          sync.Mutex
	increments  []string
	records     []string
	incrementFn func() error
	recordFn    func() error
	gate        chan struct{}
}

func (f *fakeRemote) IncrementPlay(_ context.Context, id string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	f.increments = append(f.increments, id)
	f.mu.Unlock()
	if f.incrementFn != nil {
		return f.incrementFn()
	}
	return nil
}

func (f *fakeRemote) RecordStream(_ context.Context, id string) error {
	f.mu.Lock()
	f.records = append(f.records, id)
	f.mu.Unlock()
	if f.recordFn != nil {
		return f.recordFn()
	}
	return nil
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher for an anonymous listener", t, func() {
		remote := &fakeRemote{}
		d := New(Config{Remote: remote, SignedIn: func() bool { return false }})

		Convey("Only the view increment is sent", func() {
			d.ReportPlay("1")
			d.Wait()
			So(remote.increments, ShouldResemble, []string{"1"})
			So(remote.records, ShouldBeEmpty)
		})
	})

	Convey("Given a dispatcher for a signed-in listener", t, func() {
		remote := &fakeRemote{}
		var local []string
		var mu sync.Mutex
		d := New(Config{
			Remote:   remote,
			SignedIn: func() bool { return true },
			Local: func(id string) error {
				mu.Lock()
				defer mu.Unlock()
				local = append(local, id)
				return nil
			},
		})

		var recorded []string
		d.OnRecorded(func(id string) {
			mu.Lock()
			defer mu.Unlock()
			recorded = append(recorded, id)
		})

		Convey("All three reports go out", func() {
			d.ReportPlay("7")
			d.Wait()
			So(remote.increments, ShouldResemble, []string{"7"})
			So(remote.records, ShouldResemble, []string{"7"})
			So(local, ShouldResemble, []string{"7"})
			So(recorded, ShouldResemble, []string{"7"})
		})

		Convey("A failing increment does not stop the history record", func() {
			remote.incrementFn = func() error { return errors.New("502") }

			var errs []error
			d.OnError(func(err error) {
				mu.Lock()
				defer mu.Unlock()
				errs = append(errs, err)
			})

			d.ReportPlay("7")
			d.Wait()

			So(remote.records, ShouldResemble, []string{"7"})
			So(len(errs), ShouldEqual, 1)
			So(errors.Is(errs[0], ErrSideEffect), ShouldBeTrue)

			var failure *Failure
			So(errors.As(errs[0], &failure), ShouldBeTrue)
			So(failure.Kind, ShouldEqual, KindIncrement)
			So(failure.TrackID, ShouldEqual, "7")
		})

		Convey("A failed record does not fire OnRecorded", func() {
			remote.recordFn = func() error { return errors.New("401") }
			d.ReportPlay("7")
			d.Wait()
			So(recorded, ShouldBeEmpty)
		})
	})

	Convey("ReportPlay never waits for the network", t, func() {
		remote := &fakeRemote{gate: make(chan struct{})}
		d := New(Config{Remote: remote})

		done := make(chan struct{})
		go func() {
			d.ReportPlay("1")
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("ReportPlay blocked")
		}

		close(remote.gate)
		d.Wait()
		So(remote.increments, ShouldResemble, []string{"1"})
	})

	Convey("ReportPlay does not wait for the session lookup", t, func() {
		remote := &fakeRemote{}
		release := make(chan struct{})
		d := New(Config{
			Remote: remote,
			SignedIn: func() bool {
				<-release
				return true
			},
		})

		start := time.Now()
		d.ReportPlay("1")
		So(time.Since(start), ShouldBeLessThan, 100*time.Millisecond)

		close(release)
		d.Wait()
		So(remote.increments, ShouldResemble, []string{"1"})
		So(remote.records, ShouldResemble, []string{"1"})
	})

	Convey("A signed-out listener produces no errors", t, func() {
		remote := &fakeRemote{}
		d := New(Config{Remote: remote, SignedIn: func() bool { return false }})

		var errs []error
		d.OnError(func(err error) { errs = append(errs, err) })

		d.ReportPlay("1")
		d.Wait()
		So(errs, ShouldBeEmpty)
		So(remote.records, ShouldBeEmpty)
	})

	Convey("A dispatcher without collaborators does nothing", t, func() {
		d := New(Config{})
		d.ReportPlay("1")
		d.Wait()
	})
}
