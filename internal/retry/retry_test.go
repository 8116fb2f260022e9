package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient failure")

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	}
}

func TestDoValue_FailsThenSucceeds(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		maxAttempts int
	}{
		{"no failures", 0, 1},
		{"one failure", 1, 2},
		{"two failures with spare attempts", 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := DoValue(context.Background(), fastPolicy(tt.maxAttempts), func(ctx context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					return "", errTransient
				}
				return "success", nil
			})
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if got != "success" {
				t.Errorf("DoValue = %q, want success", got)
			}
			if calls != tt.failures+1 {
				t.Errorf("calls = %d, want %d", calls, tt.failures+1)
			}
		})
	}
}

func TestDo_ExhaustedReturnsOriginalError(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		maxAttempts int
	}{
		{"single attempt", 1, 1},
		{"attempts equal failures", 3, 3},
		{"fewer attempts than failures", 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fastPolicy(tt.maxAttempts), func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return errTransient
				}
				return nil
			})
			if err != errTransient {
				t.Fatalf("err = %v, want the original error unchanged", err)
			}
			if calls != tt.maxAttempts {
				t.Errorf("calls = %d, want %d", calls, tt.maxAttempts)
			}
		})
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	p := fastPolicy(5)
	p.Retryable = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v, want fatal", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_OnAttemptSeesEveryAttempt(t *testing.T) {
	var seen []error
	p := fastPolicy(3)
	p.OnAttempt = func(attempt int, err error) {
		if attempt != len(seen)+1 {
			t.Errorf("attempt = %d, want %d", attempt, len(seen)+1)
		}
		seen = append(seen, err)
	}

	calls := 0
	_ = Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if len(seen) != 3 {
		t.Fatalf("OnAttempt called %d times, want 3", len(seen))
	}
	if seen[0] == nil || seen[1] == nil || seen[2] != nil {
		t.Errorf("unexpected attempt outcomes: %v", seen)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, func(ctx context.Context) error {
			calls++
			return errTransient
		})
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, MaxDelay: 20 * time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 20 * time.Second},
		{40, 20 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
