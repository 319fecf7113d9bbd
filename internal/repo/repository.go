package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/statushistory/internal/domain"
)

// ErrCorruptHistory is returned when a stored log cannot be parsed at all.
var ErrCorruptHistory = errors.New("corrupt history log")

// HistoryStore persists one append-only log per service, keyed by slug.
type HistoryStore interface {
	// Record appends r to the service's log, truncates it to
	// domain.MaxHistoryEntries and returns the log as persisted.
	Record(ctx context.Context, service string, r domain.StatusRecord) (domain.HistoryLog, error)
	// Load returns the service's log, or an empty log if none exists yet.
	Load(ctx context.Context, service string) (domain.HistoryLog, error)
	// List returns the slugs that have a log.
	List(ctx context.Context) ([]string, error)
}

// Orphans returns the slugs that have a log in s but belong to none of the
// configured services, e.g. after a service was renamed or removed.
func Orphans(ctx context.Context, s HistoryStore, services []domain.ServiceConfig) ([]string, error) {
	slugs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	configured := make(map[string]struct{}, len(services))
	for _, svc := range services {
		configured[svc.Slug()] = struct{}{}
	}
	var out []string
	for _, slug := range slugs {
		if _, ok := configured[slug]; !ok {
			out = append(out, slug)
		}
	}
	return out, nil
}
