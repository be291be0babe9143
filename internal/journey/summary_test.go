package journey

import (
	"testing"

	domain "journeygrid/domain/journey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeStages(t *testing.T) {
	records := loadRecords(t, `Stage,Stakeholder,SatisfactionScore,StageOrder
Aware,Buyer,4,1
Aware,User,2,1
Aware,User,n/a,1
Consider,Buyer,80%,2
Retain,,,3
,Buyer,5,
`)
	summaries := SummarizeStages(records, AxisValues(records, domain.AxisStage))
	require.Len(t, summaries, 3)

	aware := summaries[0]
	assert.Equal(t, "Aware", aware.Stage)
	assert.Equal(t, 3, aware.Cards)
	assert.Equal(t, 2, aware.Stakeholders)
	require.NotNil(t, aware.Satisfaction)
	assert.Equal(t, ScaleRaw, aware.Satisfaction.Scale)
	assert.Equal(t, 2, aware.Satisfaction.Count)
	assert.InDelta(t, 3.0, aware.Satisfaction.Mean, 1e-9)
	assert.InDelta(t, 2.0, aware.Satisfaction.Min, 1e-9)
	assert.InDelta(t, 4.0, aware.Satisfaction.Max, 1e-9)

	consider := summaries[1]
	require.NotNil(t, consider.Satisfaction)
	assert.Equal(t, ScaleFraction, consider.Satisfaction.Scale)
	assert.InDelta(t, 0.8, consider.Satisfaction.Median, 1e-9)

	retain := summaries[2]
	assert.Equal(t, 1, retain.Cards)
	assert.Zero(t, retain.Stakeholders)
	assert.Nil(t, retain.Satisfaction)
}

func TestSummarizeStagesZeroCountForUnseenStage(t *testing.T) {
	summaries := SummarizeStages(nil, domain.AxisList{"Aware"})
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].Cards)
}

func TestSummarizeStagesNeverAveragesAcrossScales(t *testing.T) {
	records := loadRecords(t, `Stage,Stakeholder,SatisfactionScore
A,Buyer,4/5
A,User,80%
A,Ops,4
B,Buyer,3
B,User,5
B,Ops,50%
`)
	summaries := SummarizeStages(records, AxisValues(records, domain.AxisStage))
	require.Len(t, summaries, 2)

	a := summaries[0].Satisfaction
	require.NotNil(t, a)
	assert.Equal(t, ScaleFraction, a.Scale)
	assert.Equal(t, 2, a.Count)
	assert.Equal(t, 1, a.Excluded)
	assert.InDelta(t, 0.8, a.Mean, 1e-9)
	assert.InDelta(t, 0.8, a.Min, 1e-9)
	assert.InDelta(t, 0.8, a.Max, 1e-9)

	b := summaries[1].Satisfaction
	require.NotNil(t, b)
	assert.Equal(t, ScaleRaw, b.Scale)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 1, b.Excluded)
	assert.InDelta(t, 4.0, b.Mean, 1e-9)
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		raw   string
		want  float64
		scale ScoreScale
	}{
		{"4", 4, ScaleRaw},
		{" 4.5 ", 4.5, ScaleRaw},
		{"80%", 0.8, ScaleFraction},
		{" 80 % ", 0.8, ScaleFraction},
		{"4/5", 0.8, ScaleFraction},
	}
	for _, tc := range cases {
		got, scale, ok := parseScore(tc.raw)
		assert.True(t, ok, tc.raw)
		assert.Equal(t, tc.scale, scale, tc.raw)
		assert.InDelta(t, tc.want, got, 1e-9, tc.raw)
	}
	for _, raw := range []string{"", "n/a", "x/0", "good", "1/0", " /5", "%"} {
		_, _, ok := parseScore(raw)
		assert.False(t, ok, raw)
	}
}
