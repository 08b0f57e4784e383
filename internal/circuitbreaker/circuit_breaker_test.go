package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carbontrack/internal/logging"
)

var errDown = errors.New("backend down")
var errAuth = errors.New("unauthorized")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(&Config{
		Name:             "test",
		MaxFailures:      3,
		Timeout:          timeout,
		HalfOpenMaxCalls: 1,
		IsFailure:        func(err error) bool { return errors.Is(err, errDown) },
		Logger:           logging.NewNop(),
	})
}

func fail(ctx context.Context) error    { return errDown }
func succeed(ctx context.Context) error { return nil }

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errDown) {
			t.Fatalf("attempt %d: err = %v, want errDown", i, err)
		}
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	called := false
	err := cb.Execute(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("function must not run while the circuit is open")
	}
}

func TestNonFailureErrorsDoNotTrip(t *testing.T) {
	cb := newTestBreaker(time.Hour)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error { return errAuth })
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed", cb.GetState())
	}
}

func TestSuccessResetsConsecutiveCount(t *testing.T) {
	cb := newTestBreaker(time.Hour)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)

	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed", cb.GetState())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe err = %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after successful probe", cb.GetState())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	time.Sleep(20 * time.Millisecond)

	_ = cb.Execute(ctx, fail)
	if cb.GetState() != StateOpen {
		t.Errorf("state = %v, want open", cb.GetState())
	}

	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after reset", cb.GetState())
	}
}
