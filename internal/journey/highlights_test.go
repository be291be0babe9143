package journey

import (
	"testing"

	domain "journeygrid/domain/journey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOverrideThenBackfill(t *testing.T) {
	records := loadRecords(t, `Stage,Stakeholder,Motivation,Goal,Barriers,Emotions,HighlightFields
A,X,Why,Reach it,Budget,Curious,Barriers;Emotions
`)
	require.Len(t, records, 1)

	sel := NewHighlightSelector(domain.DefaultRegistry())
	got := sel.Select(&records[0],
		[]string{"motivation", "touchpoints"},
		[]string{"goal", "plays", "evidence"},
		3)

	assert.Equal(t, []string{"motivation", "touchpoints", "barriers", "emotions", "goal"}, got)
}

func TestSelectSkipsEmptyAndUnknownOverrides(t *testing.T) {
	r := domain.DefaultRegistry().NewRecord()
	r.HighlightFieldsOverride = []string{"Quotes", "no such field", "Opportunities (How we can win)", "evidence"}
	r.Opportunities = []string{"bundle"}
	r.Evidence = []string{"case study"}
	r.Support = "  "

	sel := NewHighlightSelector(domain.DefaultRegistry())
	got := sel.Select(&r, []string{"motivation"}, []string{"support", "evidence", "kpi"}, 5)

	assert.Equal(t, []string{"motivation", "opportunities", "evidence"}, got)
}

func TestSelectRespectsMaxExtra(t *testing.T) {
	r := domain.DefaultRegistry().NewRecord()
	r.Goal = "g"
	r.KPI = "k"
	r.Plays = []string{"p"}
	r.HighlightFieldsOverride = []string{"plays", "PLAYS", "kpi"}

	sel := NewHighlightSelector(domain.DefaultRegistry())

	assert.Equal(t, []string{"motivation", "plays"},
		sel.Select(&r, []string{"motivation"}, []string{"goal"}, 1))
	assert.Equal(t, []string{"motivation"},
		sel.Select(&r, []string{"motivation"}, []string{"goal"}, 0))
	assert.Equal(t, []string{"motivation"},
		sel.Select(&r, []string{"motivation"}, []string{"goal"}, -2))
}

func TestSelectNeverRepeatsBaseFields(t *testing.T) {
	r := domain.DefaultRegistry().NewRecord()
	r.Motivation = "m"
	r.Touchpoints = []string{"web"}
	r.Goal = "g"
	r.HighlightFieldsOverride = []string{"Motivation", "touch-points", "Touchpoints"}

	sel := NewHighlightSelector(domain.DefaultRegistry())
	got := sel.Select(&r, []string{"motivation", "touchpoints"}, []string{"motivation", "goal"}, 3)

	assert.Equal(t, []string{"motivation", "touchpoints", "goal"}, got)
}

func TestSelectWithPolicy(t *testing.T) {
	r := domain.DefaultRegistry().NewRecord()
	r.KPI = "NPS > 40"
	r.Emotions = []string{"calm"}

	sel := NewHighlightSelector(domain.DefaultRegistry())
	got := sel.SelectWithPolicy(&r, domain.DefaultHighlightPolicy())
	assert.Equal(t, []string{"motivation", "touchpoints", "kpi", "emotions"}, got)
}

func TestResolveAliases(t *testing.T) {
	sel := NewHighlightSelector(domain.DefaultRegistry())

	for alias, want := range map[string]string{
		"Barriers / Risks":      "barriers",
		"barriers":              "barriers",
		"Satisfaction Score":    "satisfactionScore",
		"satisfaction_score":    "",
		"Evidence/Proof Needed": "evidence",
		"  KPI ":                "kpi",
		"stage":                 "",
		"HighlightFields":       "",
		"Roles / Stakeholders":  "roles",
	} {
		got, ok := sel.Resolve(alias)
		if want == "" {
			assert.False(t, ok, alias)
			continue
		}
		assert.True(t, ok, alias)
		assert.Equal(t, want, got, alias)
	}
}

func TestNormalizeFieldName(t *testing.T) {
	assert.Equal(t, "barriersrisks", NormalizeFieldName("Barriers / Risks"))
	assert.Equal(t, "stage_group", NormalizeFieldName("Stage_Group!"))
	assert.Equal(t, "", NormalizeFieldName(" -- "))
}
