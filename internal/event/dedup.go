package event

import (
	"sort"
	"strings"
	"time"
)

const (
	keyNameLen = 40
	keyDateLen = 10
)

// IdentityKey computes the fuzzy fingerprint used to recognize the same
// real-world event across sources: the lower-cased name with everything
// outside [a-z0-9] and the German extended letters stripped, cut to 40
// characters, concatenated with the first 10 characters of the normalized
// start string (empty when undated).
//
// "Stadtfest Neustadt!" and "stadtfest-neustadt" on the same day collapse to
// one key; the same name on different days does not.
func IdentityKey(e *Event) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == 'ä', r == 'ö', r == 'ü', r == 'ß':
			return r
		default:
			return -1
		}
	}, strings.ToLower(e.Name))

	if runes := []rune(name); len(runes) > keyNameLen {
		name = string(runes[:keyNameLen])
	}

	date := ""
	if e.Start != nil {
		date = e.Start.Format(time.RFC3339)
		if len(date) > keyDateLen {
			date = date[:keyDateLen]
		}
	}
	return name + date
}

// Dedup merges events sharing an identity key and returns the result sorted
// ascending by start time, undated events strictly last, ties keeping their
// original relative order.
//
// The first occurrence of a key becomes the canonical record (as a clone, so
// inputs are never mutated). Later occurrences fill any optional field the
// canonical record is still missing and append their source identifiers.
// Source entries are deliberately not de-duplicated; merging twice from the
// same source yields a repeated entry.
func Dedup(events []*Event) []*Event {
	byKey := make(map[string]*Event, len(events))
	merged := make([]*Event, 0, len(events))

	for _, e := range events {
		if !e.Valid() {
			continue
		}
		key := IdentityKey(e)
		canon, seen := byKey[key]
		if !seen {
			canon = e.Clone()
			byKey[key] = canon
			merged = append(merged, canon)
			continue
		}
		mergeInto(canon, e)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return startsBefore(merged[i], merged[j])
	})
	return merged
}

// mergeInto fills canon's absent optional fields from dup and appends dup's
// sources. Neither event's existing field values are overwritten.
func mergeInto(canon, dup *Event) {
	if canon.Venue == "" {
		canon.Venue = dup.Venue
	}
	if canon.Address == "" {
		canon.Address = dup.Address
	}
	if canon.Price == "" {
		canon.Price = dup.Price
	}
	if canon.URL == "" {
		canon.URL = dup.URL
	}
	if canon.Description == "" {
		canon.Description = dup.Description
	}
	if canon.Category == "" || canon.Category == DefaultCategory {
		if dup.Category != "" {
			canon.Category = dup.Category
		}
	}
	if canon.End == nil && dup.End != nil {
		t := *dup.End
		canon.End = &t
	}
	canon.Sources = append(canon.Sources, dup.Sources...)
}

// startsBefore orders dated events ascending and treats a missing start as
// positive infinity.
func startsBefore(a, b *Event) bool {
	switch {
	case a.Start == nil:
		return false
	case b.Start == nil:
		return true
	default:
		return a.Start.Before(*b.Start)
	}
}

// InRange reports whether the event overlaps the inclusive [start, end]
// window. Undated events are always in range; the date filter only applies
// when a date was actually extracted. An event whose effective end predates
// the window start, or whose start postdates the window end, is out.
func InRange(e *Event, start, end time.Time) bool {
	if e.Start == nil && e.End == nil {
		return true
	}
	if eff := e.EffectiveEnd(); eff != nil && eff.Before(start) {
		return false
	}
	return e.Start == nil || !e.Start.After(end)
}
