package journey

import (
	"encoding/json"
	"math"
	"strings"
)

// Axis identifies one of the two pivot dimensions of the journey grid
type Axis string

const (
	AxisStage       Axis = "stage"
	AxisStakeholder Axis = "stakeholder"
)

// ParseAxis accepts the axis names used by callers ("stage", "stages", "stakeholder", ...)
func ParseAxis(s string) (Axis, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stage", "stages":
		return AxisStage, true
	case "stakeholder", "stakeholders":
		return AxisStakeholder, true
	}
	return "", false
}

// OrderHint is a numeric ordering hint. Missing or unparsable hints are +Inf.
type OrderHint float64

// Unordered is the hint carried by records without a usable order column value
var Unordered = OrderHint(math.Inf(1))

// IsSet reports whether the hint carries a finite position
func (h OrderHint) IsSet() bool {
	return !math.IsInf(float64(h), 0) && !math.IsNaN(float64(h))
}

// MarshalJSON writes infinite hints as the strings "Infinity" / "-Infinity"
// since JSON numbers cannot represent them.
func (h OrderHint) MarshalJSON() ([]byte, error) {
	f := float64(h)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts both numbers and the infinity strings written by MarshalJSON
func (h *OrderHint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = OrderHint(ParseNumberHint(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*h = OrderHint(f)
	return nil
}

// Record is one parsed, fully-defaulted row of the journey table.
// Every field always carries a type-correct value: strings default to "",
// lists to an empty non-nil slice and order hints to Unordered.
type Record struct {
	Stage       string `json:"stage"`
	Stakeholder string `json:"stakeholder"`

	Motivation        string `json:"motivation"`
	Goal              string `json:"goal"`
	Support           string `json:"support"`
	KPI               string `json:"kpi"`
	SatisfactionScore string `json:"satisfactionScore"`
	StageGroup        string `json:"stageGroup"`

	Plays                   []string `json:"plays"`
	Touchpoints             []string `json:"touchpoints"`
	Emotions                []string `json:"emotions"`
	Quotes                  []string `json:"quotes"`
	Roles                   []string `json:"roles"`
	Influences              []string `json:"influences"`
	Barriers                []string `json:"barriers"`
	Evidence                []string `json:"evidence"`
	Opportunities           []string `json:"opportunities"`
	Signals                 []string `json:"signals"`
	HighlightFieldsOverride []string `json:"highlightFields"`

	StageOrder       OrderHint `json:"stageOrder"`
	StakeholderOrder OrderHint `json:"stakeholderOrder"`

	// Row is the 1-based data row the record was mapped from (header excluded)
	Row int `json:"row"`
}

// AxisValue returns the record's value on the given axis
func (r *Record) AxisValue(axis Axis) string {
	if axis == AxisStakeholder {
		return r.Stakeholder
	}
	return r.Stage
}

// AxisOrder returns the order hint that positions the record on the given axis
func (r *Record) AxisOrder(axis Axis) OrderHint {
	if axis == AxisStakeholder {
		return r.StakeholderOrder
	}
	return r.StageOrder
}

// KPIChips splits the KPI text into chips the same way multi-value cells are split
func (r *Record) KPIChips() []string {
	return SplitMulti(r.KPI)
}

// SplitMulti splits a multi-value cell on ';', trims each token and drops empty ones.
// The result is never nil.
func SplitMulti(v string) []string {
	out := []string{}
	if v == "" {
		return out
	}
	for _, tok := range strings.Split(v, ";") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// AxisList is the canonical, deduplicated, ordered value list of one axis.
// It is fixed once per load.
type AxisList []string

// Index returns the position of v in the list or -1
func (l AxisList) Index(v string) int {
	for i, s := range l {
		if s == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v is a member of the list
func (l AxisList) Contains(v string) bool {
	return l.Index(v) >= 0
}

// RawTable is a tokenized source table before mapping
type RawTable struct {
	Rows    [][]string `json:"-"`
	Origin  string     `json:"origin"`  // file path or URL the table was read from
	Preview string     `json:"preview"` // first two raw lines, for diagnostics
}

// LoadResult is the outcome of one successful load
type LoadResult struct {
	Records         []Record `json:"records"`
	StageAxis       AxisList `json:"stageAxis"`
	StakeholderAxis AxisList `json:"stakeholderAxis"`
	Headers         []string `json:"headers"`
	Preview         string   `json:"preview,omitempty"`

	// MissingAxisColumns lists the axis headers absent from the source.
	// Not an error: the affected axis list is simply empty.
	MissingAxisColumns []string `json:"missingAxisColumns,omitempty"`
}

// Axis returns the canonical list for the given axis
func (r *LoadResult) Axis(axis Axis) AxisList {
	if axis == AxisStakeholder {
		return r.StakeholderAxis
	}
	return r.StageAxis
}

// Degraded reports whether the load produced no stages or no stakeholders
func (r *LoadResult) Degraded() bool {
	return len(r.StageAxis) == 0 || len(r.StakeholderAxis) == 0
}

// HighlightPolicy configures which optional fields surface in condensed mode
type HighlightPolicy struct {
	BaseFields []string `json:"base_fields" yaml:"base_fields"`
	Priority   []string `json:"priority" yaml:"priority"`
	MaxExtra   int      `json:"max_extra" yaml:"max_extra"`
}

// DefaultHighlightPolicy returns the evergreen base fields and backfill order used by the grid cards
func DefaultHighlightPolicy() HighlightPolicy {
	return HighlightPolicy{
		BaseFields: []string{"motivation", "touchpoints"},
		Priority:   []string{"goal", "kpi", "plays", "emotions", "barriers", "opportunities", "evidence", "quotes"},
		MaxExtra:   3,
	}
}
