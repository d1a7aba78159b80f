package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefetch/internal/core/domain"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestProbe_FirstSuccessWins(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(map[string]error{"B": nil, "C": nil})}
	p := NewProber(fx, named("A", "B", "C"), "", zerolog.Nop())

	res, err := p.Probe(context.Background(), testURL)
	require.NoError(t, err)

	assert.Equal(t, "B", res.Strategy)
	assert.Equal(t, "B", res.Metadata.ID)
	assert.Equal(t, "B", res.Options.PlayerClient)
	assert.Equal(t, []string{"A", "B"}, fx.clients())
}

func TestProbe_EndToEnd_ThirdStrategy(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(map[string]error{"C": nil})}
	p := NewProber(fx, named("A", "B", "C"), "", zerolog.Nop())

	res, err := p.Probe(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "C", res.Strategy)
	assert.Equal(t, "meta from C", res.Metadata.Title)
	assert.Equal(t, domain.Options{PlayerClient: "C"}, res.Options)

	// Same run with C failing too reports the earlier failures first, in order.
	fx = &fakeExtractor{extract: byClient(map[string]error{"C": errors.New("http 403")})}
	_, err = NewProber(fx, named("A", "B", "C"), "", zerolog.Nop()).Probe(context.Background(), testURL)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	require.Len(t, ex.Attempts, 3)
	assert.Equal(t, "A", ex.Attempts[0].Strategy)
	assert.EqualError(t, ex.Attempts[0].Err, "blocked")
	assert.Equal(t, "B", ex.Attempts[1].Strategy)
	assert.EqualError(t, ex.Attempts[1].Err, "blocked")
}

func TestProbe_ExhaustedSkipsCookieStrategyWithoutFile(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(nil)}
	missing := filepath.Join(t.TempDir(), "cookies.txt")
	p := NewProber(fx, DefaultStrategies(), missing, zerolog.Nop())

	_, err := p.Probe(context.Background(), testURL)
	require.ErrorIs(t, err, ErrProbeExhausted)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	names := make([]string, len(ex.Attempts))
	for i, a := range ex.Attempts {
		names[i] = a.Strategy
	}
	assert.Equal(t, []string{"Web", "iOS", "Android", "Smart TV"}, names)
	assert.Len(t, fx.extracted, 4)
	for _, o := range fx.extracted {
		assert.Empty(t, o.CookieFile)
	}
}

func TestProbe_UsesCookieStrategyWhenFilePresent(t *testing.T) {
	cookieFile := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("# Netscape HTTP Cookie File\n"), 0644))

	fx := &fakeExtractor{extract: func(o domain.Options) (*domain.Metadata, error) {
		if o.CookieFile == "" {
			return nil, errors.New("Sign in to confirm you're not a bot")
		}
		return &domain.Metadata{Title: "ok"}, nil
	}}
	p := NewProber(fx, DefaultStrategies(), cookieFile, zerolog.Nop())

	res, err := p.Probe(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "Web + Cookies", res.Strategy)
	assert.Equal(t, cookieFile, res.Options.CookieFile)
	assert.True(t, res.Options.NoCheckCertificate)
	assert.Len(t, fx.extracted, 2)
}

func TestProbe_MalformedStopsImmediately(t *testing.T) {
	malformed := errors.New("[youtube] abc: Incomplete YouTube ID abc. URL looks truncated.")
	names := []string{"A", "B", "C", "D", "E"}

	for _, pos := range []int{1, 3, 5} {
		t.Run(names[pos-1], func(t *testing.T) {
			outcomes := map[string]error{names[pos-1]: malformed}
			for _, n := range names[pos:] {
				outcomes[n] = nil // would succeed if reached
			}
			fx := &fakeExtractor{extract: byClient(outcomes)}
			p := NewProber(fx, named(names...), "", zerolog.Nop())

			res, err := p.Probe(context.Background(), testURL)
			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.NotErrorIs(t, err, ErrProbeExhausted)

			var inv *InvalidInputError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, names[pos-1], inv.Strategy)
			assert.Equal(t, malformed.Error(), inv.Detail())
			assert.ErrorIs(t, err, malformed)
			assert.Equal(t, names[:pos], fx.clients())
		})
	}
}

func TestProbe_StructuredMalformedError(t *testing.T) {
	wrapped := errors.Join(errors.New("backend said no"), domain.ErrMalformedURL)
	fx := &fakeExtractor{extract: byClient(map[string]error{"A": wrapped, "B": nil})}

	_, err := NewProber(fx, named("A", "B"), "", zerolog.Nop()).Probe(context.Background(), testURL)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{"A"}, fx.clients())
}

func TestProbe_ClearsCacheFirstAndIgnoresFailure(t *testing.T) {
	fx := &fakeExtractor{
		extract:  byClient(map[string]error{"A": nil}),
		clearErr: errors.New("permission denied"),
	}

	res, err := NewProber(fx, named("A"), "", zerolog.Nop()).Probe(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Strategy)
	assert.Equal(t, []string{"clear", "extract"}, fx.events)
}

func TestProbe_EmptyURL(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(nil)}

	_, err := NewProber(fx, named("A"), "", zerolog.Nop()).Probe(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, fx.events)
}

func TestProbe_CancelledContext(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(map[string]error{"A": nil})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProber(fx, named("A"), "", zerolog.Nop()).Probe(ctx, testURL)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fx.extracted)
}

func TestProbe_CancelledDuringLastStrategy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx := &fakeExtractor{extract: func(o domain.Options) (*domain.Metadata, error) {
		if o.PlayerClient == "B" {
			cancel()
			return nil, context.Canceled
		}
		return nil, errors.New("blocked")
	}}

	_, err := NewProber(fx, named("A", "B"), "", zerolog.Nop()).Probe(ctx, testURL)
	assert.ErrorIs(t, err, context.Canceled)
	var ex *ExhaustedError
	assert.False(t, errors.As(err, &ex))
	assert.Equal(t, []string{"A", "B"}, fx.clients())
}

func TestProbe_NoStrategies(t *testing.T) {
	fx := &fakeExtractor{extract: byClient(nil)}

	_, err := NewProber(fx, nil, "", zerolog.Nop()).Probe(context.Background(), testURL)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Empty(t, ex.Attempts)
}

func TestNewProber_CopiesStrategies(t *testing.T) {
	list := named("A", "B")
	p := NewProber(&fakeExtractor{}, list, "", zerolog.Nop())
	list[0].Name = "changed"

	assert.Equal(t, "A", p.Strategies()[0].Name)
}

func TestExhaustedError_Message(t *testing.T) {
	err := &ExhaustedError{Attempts: []Attempt{
		{Strategy: "A", Err: errors.New("blocked")},
		{Strategy: "B", Err: errors.New("timeout")},
	}}
	assert.Equal(t, "all probe strategies failed: [A: blocked; B: timeout]", err.Error())
}
