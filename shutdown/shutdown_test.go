package shutdown

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	add := func(name string, priority int) {
		r.Register(name, priority, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	add("history", 20)
	add("generator", 10)
	add("logger", 30)
	add("pool", 10)

	want := "generator,pool,history,logger"
	if got := strings.Join(r.Names(), ","); got != want {
		t.Errorf("Names() = %s, want %s", got, want)
	}

	if errs := r.Shutdown(context.Background()); len(errs) != 0 {
		t.Errorf("Shutdown() errors: %v", errs)
	}
	if got := strings.Join(order, ","); got != want {
		t.Errorf("ran %s, want %s", got, want)
	}
}

func TestRegistryCollectsErrors(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	var ran atomic.Int32

	r.Register("first", 1, func(ctx context.Context) error { ran.Add(1); return boom })
	r.Register("second", 2, func(ctx context.Context) error { ran.Add(1); return nil })

	errs := r.Shutdown(context.Background())
	if ran.Load() != 2 {
		t.Errorf("ran %d functions, want 2", ran.Load())
	}
	if len(errs) != 1 || !errors.Is(errs[0], boom) || !strings.Contains(errs[0].Error(), "first") {
		t.Errorf("errs = %v", errs)
	}

	if errs := r.Shutdown(context.Background()); errs != nil {
		t.Errorf("second Shutdown() = %v, want nil", errs)
	}
	r.Register("late", 0, func(ctx context.Context) error { ran.Add(1); return nil })
	if len(r.Names()) != 2 {
		t.Errorf("registration after Shutdown was accepted: %v", r.Names())
	}
}

func TestSignalCounter(t *testing.T) {
	var forced atomic.Int32
	c := NewSignalCounter(2, func() { forced.Add(1) })

	if c.Increment() != 1 || forced.Load() != 0 {
		t.Fatalf("first signal forced exit")
	}
	c.Increment()
	c.Increment()
	if forced.Load() != 1 {
		t.Errorf("onForce called %d times, want 1", forced.Load())
	}
	if c.Count() != 3 {
		t.Errorf("Count() = %d, want 3", c.Count())
	}
}

func TestWatchCancelsOnFirstSignal(t *testing.T) {
	ch := make(chan os.Signal, 2)
	forced := make(chan struct{})
	ctx, received, stop := watch(context.Background(), ch, func() { close(forced) })
	defer stop()

	ch <- os.Interrupt
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled after first signal")
	}
	if received.Get() != os.Interrupt {
		t.Errorf("received = %v, want interrupt", received.Get())
	}

	ch <- syscall.SIGTERM
	select {
	case <-forced:
	case <-time.After(time.Second):
		t.Fatal("second signal did not force")
	}
	if received.Get() != os.Interrupt {
		t.Errorf("received changed to %v", received.Get())
	}
}

func TestWatchStop(t *testing.T) {
	ch := make(chan os.Signal, 1)
	ctx, received, stop := watch(context.Background(), ch, nil)
	stop()
	stop()

	if ctx.Err() == nil {
		t.Error("stop did not cancel the context")
	}
	if received.Get() != nil {
		t.Errorf("received = %v, want nil", received.Get())
	}
}
