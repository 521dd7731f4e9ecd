package database

import "github.com/nfrund/espresso/internal/domain"

// effectiveLimit clamps a configured history limit to (0, domain.HistoryLimit].
func effectiveLimit(limit int) int {
	if limit <= 0 || limit > domain.HistoryLimit {
		return domain.HistoryLimit
	}
	return limit
}
