package card

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/rs/zerolog"
)

// TagSet holds the lower-cased TYPE parameters of one card field.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet, lower-casing every tag.
func NewTagSet(tags ...string) TagSet {
	t := make(TagSet, len(tags))
	for _, tag := range tags {
		t[strings.ToLower(tag)] = struct{}{}
	}
	return t
}

// tagsOf collects TYPE parameters. "TYPE=home,voice" and
// "TYPE=home;TYPE=voice" produce the same set.
func tagsOf(f *vcard.Field) TagSet {
	t := TagSet{}
	if f == nil {
		return t
	}
	for name, values := range f.Params {
		if !strings.EqualFold(name, vcard.ParamType) {
			continue
		}
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
					t[part] = struct{}{}
				}
			}
		}
	}
	return t
}

func (t TagSet) has(tag string) bool {
	_, ok := t[tag]
	return ok
}

func (t TagSet) hasAll(other TagSet) bool {
	for tag := range other {
		if !t.has(tag) {
			return false
		}
	}
	return true
}

func (t TagSet) hasAny(other TagSet) bool {
	for tag := range other {
		if t.has(tag) {
			return true
		}
	}
	return false
}

// Entry is one occurrence of a card property with its usage tags.
type Entry[T any] struct {
	Tags  TagSet
	Value T
}

// policy decides which entry fills a contact field. Entries carrying every
// preferred tag win; otherwise the first entry without a competing tag is
// taken. A competing tag marks an entry that belongs to another field.
type policy struct {
	field     string
	preferred TagSet
	competing TagSet
}

// preferredMatches returns indexes of available entries carrying all preferred tags.
func preferredMatches[T any](p policy, entries []Entry[T], available func(int) bool) []int {
	var idx []int
	for i, e := range entries {
		if available(i) && e.Tags.hasAll(p.preferred) {
			idx = append(idx, i)
		}
	}
	return idx
}

// fallbackMatches returns indexes of available entries with no competing tag.
func fallbackMatches[T any](p policy, entries []Entry[T], available func(int) bool) []int {
	var idx []int
	for i, e := range entries {
		if available(i) && !e.Tags.hasAny(p.competing) {
			idx = append(idx, i)
		}
	}
	return idx
}

// choosePreferred picks among preferred matches, warning when the choice is ambiguous.
func choosePreferred[T any](log *zerolog.Logger, p policy, entries []Entry[T], available func(int) bool) int {
	matches := preferredMatches(p, entries, available)
	if len(matches) == 0 {
		return -1
	}
	if len(matches) > 1 {
		log.Warn().
			Str("field", p.field).
			Int("candidates", len(matches)).
			Interface("chosen", entries[matches[0]].Value).
			Msg("several card entries match, using the first")
	}
	return matches[0]
}

// chooseFallback picks the first entry that does not belong to another field.
func chooseFallback[T any](log *zerolog.Logger, p policy, entries []Entry[T], available func(int) bool) int {
	matches := fallbackMatches(p, entries, available)
	if len(matches) == 0 {
		return -1
	}
	chosen := matches[0]
	if len(entries) > 1 || len(entries[chosen].Tags) == 0 {
		log.Warn().
			Str("field", p.field).
			Int("entries", len(entries)).
			Interface("chosen", entries[chosen].Value).
			Msg("no card entry carries the preferred tags, falling back")
	}
	return chosen
}

// choose applies the whole policy to entries, returning the chosen value.
func choose[T any](log *zerolog.Logger, p policy, entries []Entry[T]) (T, bool) {
	all := func(int) bool { return true }
	i := choosePreferred(log, p, entries, all)
	if i < 0 {
		i = chooseFallback(log, p, entries, all)
	}
	if i < 0 {
		var zero T
		return zero, false
	}
	return entries[i].Value, true
}
