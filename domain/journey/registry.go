package journey

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FieldKind is how a column's raw cell text is interpreted
type FieldKind string

const (
	KindScalar     FieldKind = "scalar"
	KindMultiValue FieldKind = "multiValue"
	KindNumberHint FieldKind = "numberHint"
)

// FieldSpec describes one registered column
type FieldSpec struct {
	Name   string    `json:"name"`   // canonical key, e.g. "satisfactionScore"
	Header string    `json:"header"` // source header text, matched case-insensitively
	Kind   FieldKind `json:"kind"`
	Label  string    `json:"label"`

	// Highlightable fields may be surfaced by the highlight selector
	Highlightable bool `json:"highlightable"`

	scalar func(*Record) *string
	list   func(*Record) *[]string
	hint   func(*Record) *OrderHint
}

// FieldValue is a kind-tagged view of one field of a record
type FieldValue struct {
	Kind   FieldKind
	Text   string
	Items  []string
	Number OrderHint
}

// IsEmpty follows the condensed-view rule: blank text, empty lists and unset hints are empty
func (v FieldValue) IsEmpty() bool {
	switch v.Kind {
	case KindMultiValue:
		return len(v.Items) == 0
	case KindNumberHint:
		return !v.Number.IsSet()
	}
	return strings.TrimSpace(v.Text) == ""
}

// String renders the value for plain-text output
func (v FieldValue) String() string {
	switch v.Kind {
	case KindMultiValue:
		return strings.Join(v.Items, "; ")
	case KindNumberHint:
		if !v.Number.IsSet() {
			return ""
		}
		return strconv.FormatFloat(float64(v.Number), 'g', -1, 64)
	}
	return v.Text
}

// Registry is the closed set of fields known to the mapper and highlight selector
type Registry struct {
	specs  []FieldSpec
	byName map[string]int
}

func scalar(name, header, label string, highlight bool, f func(*Record) *string) FieldSpec {
	return FieldSpec{Name: name, Header: header, Kind: KindScalar, Label: label, Highlightable: highlight, scalar: f}
}

func multi(name, header, label string, highlight bool, f func(*Record) *[]string) FieldSpec {
	return FieldSpec{Name: name, Header: header, Kind: KindMultiValue, Label: label, Highlightable: highlight, list: f}
}

func hint(name, header, label string, f func(*Record) *OrderHint) FieldSpec {
	return FieldSpec{Name: name, Header: header, Kind: KindNumberHint, Label: label, hint: f}
}

// DefaultRegistry returns the journey-grid field registry in expanded display order
func DefaultRegistry() *Registry {
	return newRegistry([]FieldSpec{
		scalar("stage", "Stage", "Stage", false, func(r *Record) *string { return &r.Stage }),
		scalar("stakeholder", "Stakeholder", "Stakeholder", false, func(r *Record) *string { return &r.Stakeholder }),
		scalar("kpi", "KPI", "KPI", true, func(r *Record) *string { return &r.KPI }),
		scalar("motivation", "Motivation", "Motivation", true, func(r *Record) *string { return &r.Motivation }),
		scalar("goal", "Goal", "Goal", true, func(r *Record) *string { return &r.Goal }),
		scalar("support", "Support", "Support", true, func(r *Record) *string { return &r.Support }),
		multi("plays", "Plays", "Plays", true, func(r *Record) *[]string { return &r.Plays }),
		multi("touchpoints", "Touchpoints", "Touchpoints", true, func(r *Record) *[]string { return &r.Touchpoints }),
		multi("emotions", "Emotions", "Emotions", true, func(r *Record) *[]string { return &r.Emotions }),
		multi("quotes", "Quotes", "Quotes", true, func(r *Record) *[]string { return &r.Quotes }),
		multi("roles", "Roles", "Roles / Stakeholders", true, func(r *Record) *[]string { return &r.Roles }),
		multi("influences", "Influences", "Influences", true, func(r *Record) *[]string { return &r.Influences }),
		multi("barriers", "Barriers", "Barriers / Risks", true, func(r *Record) *[]string { return &r.Barriers }),
		multi("evidence", "Evidence", "Evidence / Proof Needed", true, func(r *Record) *[]string { return &r.Evidence }),
		multi("opportunities", "Opportunities", "Opportunities (How we can win)", true, func(r *Record) *[]string { return &r.Opportunities }),
		multi("signals", "Signals", "Signals", true, func(r *Record) *[]string { return &r.Signals }),
		scalar("satisfactionScore", "SatisfactionScore", "Satisfaction Score", true, func(r *Record) *string { return &r.SatisfactionScore }),
		scalar("stageGroup", "StageGroup", "Stage Group", true, func(r *Record) *string { return &r.StageGroup }),
		hint("stageOrder", "StageOrder", "Stage Order", func(r *Record) *OrderHint { return &r.StageOrder }),
		hint("stakeholderOrder", "StakeholderOrder", "Stakeholder Order", func(r *Record) *OrderHint { return &r.StakeholderOrder }),
		multi("highlightFields", "HighlightFields", "Highlight Fields", false, func(r *Record) *[]string { return &r.HighlightFieldsOverride }),
	})
}

func newRegistry(specs []FieldSpec) *Registry {
	reg := &Registry{specs: specs, byName: make(map[string]int, len(specs))}
	for i, s := range specs {
		reg.byName[s.Name] = i
	}
	return reg
}

// Specs returns the registered fields in expanded display order
func (r *Registry) Specs() []FieldSpec {
	out := make([]FieldSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Lookup returns the spec registered under a canonical name
func (r *Registry) Lookup(name string) (FieldSpec, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return r.specs[i], true
}

// ExpandedOrder is the fixed, exhaustive field order used by the expanded view
func (r *Registry) ExpandedOrder() []string {
	var names []string
	for _, s := range r.specs {
		if s.Highlightable {
			names = append(names, s.Name)
		}
	}
	return names
}

// NewRecord returns a record with every registered field at its default
func (r *Registry) NewRecord() Record {
	var rec Record
	for _, s := range r.specs {
		s.Reset(&rec)
	}
	return rec
}

// Reset puts the field back to its kind's default value
func (s FieldSpec) Reset(rec *Record) {
	switch s.Kind {
	case KindScalar:
		*s.scalar(rec) = ""
	case KindMultiValue:
		*s.list(rec) = []string{}
	case KindNumberHint:
		*s.hint(rec) = Unordered
	}
}

// Assign parses raw cell text according to the field kind and stores it on rec
func (s FieldSpec) Assign(rec *Record, raw string) {
	switch s.Kind {
	case KindScalar:
		*s.scalar(rec) = strings.TrimSpace(raw)
	case KindMultiValue:
		*s.list(rec) = SplitMulti(raw)
	case KindNumberHint:
		*s.hint(rec) = OrderHint(ParseNumberHint(raw))
	}
}

// Value reads the field from rec
func (s FieldSpec) Value(rec *Record) FieldValue {
	v := FieldValue{Kind: s.Kind}
	switch s.Kind {
	case KindScalar:
		v.Text = *s.scalar(rec)
	case KindMultiValue:
		v.Items = *s.list(rec)
	case KindNumberHint:
		v.Number = *s.hint(rec)
	}
	return v
}

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumberHint converts order-hint cell text to a number. An empty cell or
// unparsable text yields +Inf so such records sort after every ordered one; a cell
// holding only whitespace is 0.
// Accepted forms: decimal and exponent notation, 0x/0o/0b integers, and
// "Infinity" with an optional sign.
func ParseNumberHint(raw string) float64 {
	if raw == "" {
		return math.Inf(1)
	}
	s := strings.TrimSpace(raw)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			digits := s[2:]
			if strings.ContainsAny(digits, "_+-") {
				return math.Inf(1)
			}
			n, err := strconv.ParseUint(digits, base, 64)
			if err != nil {
				return math.Inf(1)
			}
			return float64(n)
		}
	}

	if !decimalPattern.MatchString(s) {
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.Inf(1)
	}
	if math.IsNaN(f) {
		return math.Inf(1)
	}
	return f
}
