package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, ModeLinear, p.Mode)
	require.Equal(t, time.Second, p.Initial)
	require.Equal(t, 30*time.Second, p.Max)
	require.Equal(t, 2, p.MaxRetries)
	require.Zero(t, Disabled().MaxRetries)
}

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(ModeFixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Initial, "initial is clamped to max")
	require.Equal(t, 2*time.Second, p.Max)
	require.Equal(t, ModeFixed, p.Mode)
	require.Equal(t, 5, p.MaxRetries)

	require.Equal(t, ModeLinear, NewPolicy("weird", time.Second, time.Second, 1).Mode)
	require.Equal(t, ModeExponential, NewPolicy(" Exponential ", time.Second, time.Second, 1).Mode)
}

func TestDelayModes(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		attempt int
		want    time.Duration
	}{
		{"fixed", NewPolicy(ModeFixed, 100*time.Millisecond, 500*time.Millisecond, 3), 3, 100 * time.Millisecond},
		{"linear first", NewPolicy(ModeLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 1, 100 * time.Millisecond},
		{"linear second", NewPolicy(ModeLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 2, 200 * time.Millisecond},
		{"linear capped", NewPolicy(ModeLinear, 100*time.Millisecond, 250*time.Millisecond, 5), 3, 250 * time.Millisecond},
		{"exponential second", NewPolicy(ModeExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 2, 100 * time.Millisecond},
		{"exponential capped", NewPolicy(ModeExponential, 50*time.Millisecond, 160*time.Millisecond, 5), 3, 160 * time.Millisecond},
		{"exponential huge attempt", NewPolicy(ModeExponential, time.Second, time.Minute, 100), 80, time.Minute},
		{"zero attempt", DefaultPolicy(), 0, 0},
		{"negative attempt", DefaultPolicy(), -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.policy.Delay(tc.attempt))
		})
	}
}

func TestValidate(t *testing.T) {
	require.Error(t, Policy{Mode: ModeLinear, Max: time.Second, MaxRetries: 1}.Validate())
	require.Error(t, Policy{Mode: ModeLinear, Initial: time.Second, MaxRetries: 1}.Validate())
	require.Error(t, Policy{Mode: ModeLinear, Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
	require.NoError(t, Policy{Mode: ModeLinear, Initial: time.Second, Max: 2 * time.Second}.Validate())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("FIXED")
	require.NoError(t, err)
	require.Equal(t, ModeFixed, m)
	_, err = ParseMode("sometimes")
	require.Error(t, err)
}

func TestDo(t *testing.T) {
	p := NewPolicy(ModeFixed, time.Millisecond, time.Millisecond, 2)

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		var seen []int
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, func(attempt int, _ time.Duration, _ error) { seen = append(seen, attempt) })
		require.NoError(t, err)
		require.Equal(t, 3, calls)
		require.Equal(t, []int{1, 2}, seen)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errors.New("permanent")
		}, nil)
		require.EqualError(t, err, "permanent")
		require.Equal(t, 3, calls)
	})

	t.Run("does not retry cancellation", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return context.Canceled
		}, nil)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	})

	t.Run("respects classified retry strategy", func(t *testing.T) {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return ferrors.ValidationError("bad input").Build()
		}, nil)
		require.Error(t, err)
		require.Equal(t, 1, calls)

		calls = 0
		err = p.Do(context.Background(), func(context.Context) error {
			calls++
			return ferrors.FileSystemError("busy").Build()
		}, nil)
		require.Error(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("stops waiting when ctx is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		slow := NewPolicy(ModeFixed, time.Hour, time.Hour, 1)
		err := slow.Do(ctx, func(context.Context) error {
			cancel()
			return errors.New("boom")
		}, nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}
