package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

// Source queries registered providers in configured order and returns the
// first non-empty prepared result list.
type Source struct {
	registry  *Registry
	providers []string
	limit     int
	logger    *slog.Logger
}

var _ ports.SearchProvider = (*Source)(nil)

// NewSource wires the provider registry with the configured provider order.
// Empty and repeated names are ignored.
func NewSource(reg *Registry, providers []string, limit int, log *slog.Logger) *Source {
	ordered := make([]string, 0, len(providers))
	seen := make(map[string]struct{}, len(providers))
	for _, name := range providers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		ordered = append(ordered, name)
	}
	return &Source{
		registry:  reg,
		providers: ordered,
		limit:     limit,
		logger:    log,
	}
}

// Name lists the providers this source consults.
func (s *Source) Name() string {
	return strings.Join(s.providers, ",")
}

// Search tries each provider until one yields usable results. It returns
// domain.ErrNoResults when every provider answered empty and domain.ErrSearch
// when at least one failed and none produced results.
func (s *Source) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: provider registry is not configured", domain.ErrSearch)
	}
	if len(s.providers) == 0 {
		return nil, fmt.Errorf("%w: no search providers configured", domain.ErrSearch)
	}

	s.debug("search", "providers", s.providers, "query", query)

	var errs []error
	for _, name := range s.providers {
		provider, err := s.registry.Resolve(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		raw, err := provider.Search(ctx, query)
		if err != nil {
			s.warn("search provider failed", "provider", name, "error", err)
			errs = append(errs, fmt.Errorf("provider %s: %w", name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		results := Prepare(raw, s.limit)
		s.debug("provider produced results", "provider", name, "raw", len(raw), "kept", len(results))
		if len(results) > 0 {
			return results, nil
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, errors.Join(errs...))
	}
	return nil, domain.ErrNoResults
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Source) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
