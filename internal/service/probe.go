package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"tubefetch/internal/adapters/cookies"
	"tubefetch/internal/core/domain"
	"tubefetch/internal/core/ports"
)

// Prober resolves a URL with the first strategy the backend accepts.
type Prober struct {
	extractor  ports.Extractor
	strategies []domain.Strategy
	cookieFile string
	logger     zerolog.Logger
}

// NewProber creates a Prober over an ordered candidate list. The list is
// copied; later changes by the caller are not seen.
func NewProber(extractor ports.Extractor, strategies []domain.Strategy, cookieFile string, logger zerolog.Logger) *Prober {
	return &Prober{
		extractor:  extractor,
		strategies: append([]domain.Strategy(nil), strategies...),
		cookieFile: cookieFile,
		logger:     logger,
	}
}

// Strategies returns a copy of the candidate list in priority order.
func (p *Prober) Strategies() []domain.Strategy {
	return append([]domain.Strategy(nil), p.strategies...)
}

// Probe fetches metadata for url, trying each strategy in order and returning
// on the first success. It fails with *InvalidInputError as soon as the backend
// says the URL is malformed, and with *ExhaustedError once every strategy failed.
func (p *Prober) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrInvalidInput)
	}

	if err := p.extractor.ClearCache(ctx); err != nil {
		p.logger.Debug().Err(err).Msg("cache clear failed, continuing")
	}

	var attempts []Attempt
	for _, s := range p.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opts := s.Options
		if s.RequiresCookies {
			if !cookies.Exists(p.cookieFile) {
				p.logger.Debug().Str("strategy", s.Name).Msg("no cookie file, skipping")
				continue
			}
			opts.CookieFile = p.cookieFile
		}

		p.logger.Info().Str("strategy", s.Name).Str("url", url).Msg("trying strategy")
		md, err := p.extractor.Extract(ctx, url, opts)
		if err == nil {
			p.logger.Info().Str("strategy", s.Name).Str("title", md.Title).Msg("probe succeeded")
			return &domain.ProbeResult{Metadata: md, Options: opts, Strategy: s.Name}, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if IsMalformedIdentifier(err) {
			p.logger.Warn().Err(err).Str("strategy", s.Name).Msg("url rejected as malformed")
			return nil, &InvalidInputError{Strategy: s.Name, Err: err}
		}

		p.logger.Warn().Err(err).Str("strategy", s.Name).Msg("strategy failed")
		attempts = append(attempts, Attempt{Strategy: s.Name, Err: err})
	}

	return nil, &ExhaustedError{Attempts: attempts}
}
