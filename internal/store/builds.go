// Package store persists user-saved builds and recommendation request
// snapshots. The recommendation core never touches it; handlers do.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when no saved build exists under the given id.
var ErrNotFound = errors.New("store: saved build not found")

// SavedBuild is one build a user chose to keep, together with the query that
// produced it. BuildDetails and SourcePromptDetails are stored as raw JSON so
// the record round-trips whatever the pipeline emitted.
type SavedBuild struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	Name                string          `json:"name,omitempty"`
	BuildDetails        json.RawMessage `json:"build_details"`
	SourcePromptDetails json.RawMessage `json:"source_prompt_details,omitempty"`
	UserNotes           string          `json:"user_notes,omitempty"`
	SavedAt             time.Time       `json:"saved_at"`
}

// BuildRepository is the CRUD contract for saved builds. Listings are newest
// first.
type BuildRepository interface {
	Save(ctx context.Context, b *SavedBuild) error
	Get(ctx context.Context, id string) (*SavedBuild, error)
	ListByUser(ctx context.Context, userID string) ([]*SavedBuild, error)
	ListAll(ctx context.Context) ([]*SavedBuild, error)
	Delete(ctx context.Context, id string) error
}

// RequestLog accepts one request snapshot per recommendation request for
// later auditing. Log is fire-and-forget: the core consumes no return value.
type RequestLog interface {
	Log(ctx context.Context, userID string, payload any)
	CountToday(ctx context.Context) (int64, error)
}

// Stats are the admin counters.
type Stats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalSavedSpecs      int64 `json:"total_saved_specs"`
	RecommendationsToday int64 `json:"recommendations_today"`
}

// CollectStats derives the admin counters from the repository and the
// request log. TotalUsers counts distinct users holding at least one saved
// build.
func CollectStats(ctx context.Context, repo BuildRepository, rl RequestLog) (*Stats, error) {
	all, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	users := make(map[string]struct{}, len(all))
	for _, b := range all {
		users[b.UserID] = struct{}{}
	}

	today, err := rl.CountToday(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalUsers:           int64(len(users)),
		TotalSavedSpecs:      int64(len(all)),
		RecommendationsToday: today,
	}, nil
}
