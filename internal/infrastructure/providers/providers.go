// Package providers holds the SearchProvider implementations.
package providers

import (
	"errors"
	"fmt"
	"strings"

	"ResearchReporter/internal/domain"
)

var errEmptyQuery = errors.New("empty query")

func checkQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: %w", domain.ErrSearch, errEmptyQuery)
	}
	return nil
}

func clipQuery(query string, limit int) string {
	query = strings.TrimSpace(query)
	runes := []rune(query)
	if len(runes) <= limit {
		return query
	}
	return string(runes[:limit])
}
