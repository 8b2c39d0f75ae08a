// Package evidence resolves forensic queries against a case document.
//
// Locate, Footage and DNA are pure lookups. Alibi hands the question to the alibi contact's persona in the dialogue
// gateway. A query that cannot be answered returns a *Miss describing why, often with hints of valid alternatives.
package evidence

import (
	"slices"
	"strings"

	"github.com/myrjola/murderai/internal/errors"
)

var (
	ErrMissingArgument  = errors.NewSentinel("missing argument")
	ErrNotAssociated    = errors.NewSentinel("phone number not associated")
	ErrNoLocationData   = errors.NewSentinel("no location data")
	ErrNoFootage        = errors.NewSentinel("no footage")
	ErrEvidenceNotFound = errors.NewSentinel("evidence not found")
	ErrAlibiNotFound    = errors.NewSentinel("alibi not found")
	ErrPhoneNumberAlibi = errors.NewSentinel("alibi requested by phone number")
)

// Miss is a query that found nothing. It is a normal outcome and costs the player nothing.
type Miss struct {
	// Reason is shown to the player.
	Reason string
	// Hints lists valid alternatives, e.g. the timestamps that do have data.
	Hints []string
	kind  error
}

func miss(kind error, reason string, hints ...string) *Miss {
	return &Miss{Reason: reason, Hints: hints, kind: kind}
}

func (m *Miss) Error() string {
	if len(m.Hints) == 0 {
		return m.Reason
	}
	return m.Reason + " Available: " + strings.Join(m.Hints, ", ")
}

// Unwrap exposes the kind of miss for errors.Is.
func (m *Miss) Unwrap() error {
	return m.kind
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// samePhone compares digits only and accepts a suffix match in either direction so that international prefixes
// do not matter.
func samePhone(a, b string) bool {
	da, db := digits(a), digits(b)
	if da == "" || db == "" {
		return false
	}
	return strings.HasSuffix(da, db) || strings.HasSuffix(db, da)
}

var placeSeparators = strings.NewReplacer("_", " ", "-", " ")

func normalizePlace(s string) string {
	return strings.Join(strings.Fields(placeSeparators.Replace(strings.ToLower(s))), " ")
}

// samePlace accepts containment in either direction, ignoring case and separators.
func samePlace(query, key string) bool {
	q, k := normalizePlace(query), normalizePlace(key)
	if q == "" || k == "" {
		return false
	}
	return strings.Contains(k, q) || strings.Contains(q, k)
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
