package biz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CastRolePlaceholder marks cast rows whose role the provider did not expose.
const CastRolePlaceholder = "unspecified"

// NewID returns a time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Normalize converts a provider record into a canonical movie plus candidate
// genre, cast and omdb rating entities. Candidates are not deduplicated.
func Normalize(draft *Movie, rec *ProviderRecord, now time.Time) (*Ingestion, error) {
	if rec == nil || strings.TrimSpace(rec.Title) == "" {
		return nil, ErrMissingUpstreamData
	}
	if draft == nil {
		draft = &Movie{}
	}
	if draft.ID == "" {
		draft.ID = NewID()
	}

	draft.Title = rec.Title
	if rec.Year != "" {
		draft.YearOfRelease = rec.Year
	}
	draft.Rated = rec.Rated
	draft.Released = rec.Released
	draft.Runtime = rec.Runtime
	draft.Plot = rec.Plot
	draft.Awards = rec.Awards
	draft.Poster = rec.Poster
	draft.TotalSeasons = rec.TotalSeasons
	draft.IsActive = true
	draft.CreatedAt = now
	draft.UpdatedAt = now

	in := &Ingestion{Movie: draft}
	for _, name := range SplitList(rec.Genre) {
		in.Genres = append(in.Genres, Genre{ID: NewID(), Name: name})
	}
	for _, name := range SplitList(rec.Actors) {
		in.Cast = append(in.Cast, Cast{ID: NewID(), Name: name, Role: CastRolePlaceholder})
	}
	for _, r := range rec.Ratings {
		in.OmdbRatings = append(in.OmdbRatings, OmdbRating{
			ID:     NewID(),
			Source: r.Source,
			Value:  NormalizeRatingValue(r.Value),
		})
	}
	return in, nil
}

// SplitList splits a comma-separated provider field, trimming whitespace and
// dropping empty segments.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeRatingValue turns "85/100" into "85%". Anything else is returned
// unchanged.
func NormalizeRatingValue(v string) string {
	num, den, ok := strings.Cut(strings.TrimSpace(v), "/")
	if !ok {
		return v
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return v
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return v
	}
	return fmt.Sprintf("%d%%", int64(math.Round(n/d*100)))
}

// NormalizeYear strips the trailing range separator the provider appends to
// ongoing series ("2011–").
func NormalizeYear(year string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(year), "-–"))
}
