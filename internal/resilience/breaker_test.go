package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *time.Time) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{FailureThreshold: threshold, ResetTimeout: reset})
	b.nowFunc = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	fail := func(ctx context.Context) error { return eris.New("provider down") }

	for i := 0; i < 3; i++ {
		assert.Error(t, b.Call(context.Background(), fail))
	}
	assert.Equal(t, StateOpen, b.State())

	err := b.Call(context.Background(), fail)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrBreakerOpen))
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	fail := func(ctx context.Context) error { return eris.New("down") }
	ok := func(ctx context.Context) error { return nil }

	b.Call(context.Background(), fail)
	b.Call(context.Background(), fail)
	b.Call(context.Background(), ok)
	b.Call(context.Background(), fail)
	b.Call(context.Background(), fail)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbeRecovers(t *testing.T) {
	b, now := newTestBreaker(2, 30*time.Second)
	fail := func(ctx context.Context) error { return eris.New("down") }

	b.Call(context.Background(), fail)
	b.Call(context.Background(), fail)
	assert.Equal(t, StateOpen, b.State())

	*now = now.Add(31 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, b.Call(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(2, 30*time.Second)
	fail := func(ctx context.Context) error { return eris.New("down") }

	b.Call(context.Background(), fail)
	b.Call(context.Background(), fail)
	*now = now.Add(31 * time.Second)

	assert.Error(t, b.Call(context.Background(), fail))
	assert.Equal(t, StateOpen, b.State())
}

func TestCallVal_PreservesValue(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)
	v, err := CallVal(context.Background(), b, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestProviderBreakers_PerProvider(t *testing.T) {
	pb := NewProviderBreakers(BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	fail := func(ctx context.Context) error { return eris.New("down") }

	pb.Get("places").Call(context.Background(), fail)
	assert.Equal(t, StateOpen, pb.Get("places").State())
	assert.Equal(t, StateClosed, pb.Get("census").State())

	// Same name returns the same breaker.
	assert.Same(t, pb.Get("places"), pb.Get("places"))
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(eris.New("validation failed")))
	assert.True(t, IsTransient(NewTransientError(eris.New("rate limited"), 429)))
	assert.True(t, IsTransient(eris.New("dial tcp: i/o timeout")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}
