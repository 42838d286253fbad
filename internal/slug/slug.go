// Package slug derives URL-safe board identifiers from titles and keeps them
// unique within the scope of one owning user.
package slug

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinLength = 3
	MaxLength = 50

	// maxAttempts bounds the -1, -2, ... uniqueness retry loop.
	maxAttempts = 100
)

var (
	ErrInvalidBaseSlug = errors.New("invalid base slug format")
	ErrSlugExhausted   = errors.New("could not find a free slug after 100 attempts")
)

var (
	validPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	basePattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonAlnumRun  = regexp.MustCompile(`[^a-z0-9]+`)
	alnumOnly    = regexp.MustCompile(`[^a-z0-9]`)
)

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return len(s) >= MinLength && len(s) <= MaxLength && validPattern.MatchString(s)
}

// Generate turns a free-form title into a valid slug. The result is always
// non-empty, 3-50 characters and matches ^[a-z0-9-]+$.
func Generate(title string) string {
	s := strings.ToLower(title)
	s = nonAlnumRun.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxLength {
		s = strings.Trim(s[:MaxLength], "-")
	}
	if Valid(s) {
		return s
	}

	// Hyphenation produced something unusable; compact to alphanumerics only.
	compact := alnumOnly.ReplaceAllString(strings.ToLower(title), "")
	if len(compact) > MaxLength {
		compact = compact[:MaxLength]
	}
	if Valid(compact) {
		return compact
	}

	token := strconv.FormatInt(time.Now().UnixNano(), 36)
	if compact != "" {
		s = compact + token
		if len(s) > MaxLength {
			s = s[:MaxLength]
		}
		if Valid(s) {
			return s
		}
	}

	s = "board-" + token
	if len(s) > MaxLength {
		s = s[:MaxLength]
	}
	return s
}

// ExistenceChecker answers whether a slug is already taken for a user.
type ExistenceChecker interface {
	SlugExists(ctx context.Context, userID uuid.UUID, slug string) (bool, error)
}

// GenerateUnique returns base, or the first base-N variant (N = 1, 2, ...)
// that is not taken for userID. The base is truncated as needed so every
// candidate stays within MaxLength. A failing existence check counts as
// "taken" so that storage errors can never cause duplicate slugs.
func GenerateUnique(ctx context.Context, store ExistenceChecker, userID uuid.UUID, base string) (string, error) {
	if len(base) < MinLength || len(base) > MaxLength || !basePattern.MatchString(base) {
		return "", ErrInvalidBaseSlug
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			suffix := "-" + strconv.Itoa(attempt)
			trimmed := base
			if len(trimmed)+len(suffix) > MaxLength {
				trimmed = strings.TrimRight(trimmed[:MaxLength-len(suffix)], "-")
			}
			candidate = trimmed + suffix
		}

		exists, err := store.SlugExists(ctx, userID, candidate)
		if err != nil {
			// Treat the candidate as taken rather than risking a duplicate.
			continue
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrSlugExhausted
}
