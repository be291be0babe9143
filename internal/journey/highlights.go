package journey

import (
	"regexp"
	"strings"

	domain "journeygrid/domain/journey"
)

var nonWord = regexp.MustCompile(`[^a-z0-9_]+`)

// NormalizeFieldName lower-cases s and strips every non-word character,
// so "Barriers / Risks", "barriers-risks" and "BarriersRisks" all compare equal.
func NormalizeFieldName(s string) string {
	return nonWord.ReplaceAllString(strings.ToLower(s), "")
}

// HighlightSelector picks the optional fields a condensed card shows.
// The normalized-name index is built once from the registry.
type HighlightSelector struct {
	registry *domain.Registry
	index    map[string]string // normalized name, header or label -> canonical name
}

// NewHighlightSelector indexes every highlightable field of reg under its
// canonical name, header and label.
func NewHighlightSelector(reg *domain.Registry) *HighlightSelector {
	s := &HighlightSelector{registry: reg, index: make(map[string]string)}
	for _, spec := range reg.Specs() {
		if !spec.Highlightable {
			continue
		}
		for _, alias := range []string{spec.Name, spec.Header, spec.Label} {
			key := NormalizeFieldName(alias)
			if _, taken := s.index[key]; key != "" && !taken {
				s.index[key] = spec.Name
			}
		}
	}
	return s
}

// Resolve maps a loosely written field name to its canonical name
func (s *HighlightSelector) Resolve(name string) (string, bool) {
	canonical, ok := s.index[NormalizeFieldName(name)]
	return canonical, ok
}

// Select returns base followed by up to maxExtra further fields. The record's own
// HighlightFields override is consumed first, then priority backfills the remaining
// slots. A field is only added when it has a value on rec and has not been chosen yet.
func (s *HighlightSelector) Select(rec *domain.Record, base, priority []string, maxExtra int) []string {
	out := make([]string, 0, len(base)+max(maxExtra, 0))
	out = append(out, base...)

	chosen := make(map[string]struct{}, cap(out))
	for _, b := range base {
		chosen[b] = struct{}{}
		if canonical, ok := s.Resolve(b); ok {
			chosen[canonical] = struct{}{}
		}
	}

	extra := 0
	consider := func(candidates []string) {
		for _, token := range candidates {
			if extra >= maxExtra {
				return
			}
			name, ok := s.Resolve(token)
			if !ok {
				continue
			}
			if _, dup := chosen[name]; dup {
				continue
			}
			if !s.hasValue(rec, name) {
				continue
			}
			chosen[name] = struct{}{}
			out = append(out, name)
			extra++
		}
	}

	consider(rec.HighlightFieldsOverride)
	consider(priority)
	return out
}

// SelectWithPolicy is Select driven by a configured policy
func (s *HighlightSelector) SelectWithPolicy(rec *domain.Record, p domain.HighlightPolicy) []string {
	return s.Select(rec, p.BaseFields, p.Priority, p.MaxExtra)
}

func (s *HighlightSelector) hasValue(rec *domain.Record, name string) bool {
	spec, ok := s.registry.Lookup(name)
	if !ok {
		return false
	}
	return !spec.Value(rec).IsEmpty()
}
