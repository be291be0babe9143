package journey

import (
	"math"
	"strings"

	domain "journeygrid/domain/journey"

	"github.com/montanaflynn/stats"
)

// ScoreScale says how the summarized scores should be read
type ScoreScale string

const (
	// ScaleFraction holds "80%" and "4/5" style scores, both stored as a fraction of 1
	ScaleFraction ScoreScale = "fraction"
	// ScaleRaw holds bare numbers such as "4", whose range the sheet does not state
	ScaleRaw ScoreScale = "raw"
)

// ScoreSummary describes the parsable satisfaction scores of one stage
type ScoreSummary struct {
	Scale  ScoreScale `json:"scale"`
	Count  int        `json:"count"`
	Mean   float64    `json:"mean"`
	Median float64    `json:"median"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`

	// Excluded counts parsable scores left out because they were on the other scale
	Excluded int `json:"excluded,omitempty"`
}

// StageSummary is the per-stage card count shown on the journey rail
type StageSummary struct {
	Stage        string        `json:"stage"`
	Cards        int           `json:"cards"`
	Stakeholders int           `json:"stakeholders"`
	Satisfaction *ScoreSummary `json:"satisfaction,omitempty"`
}

// SummarizeStages counts records per stage in canonical axis order. Stages of the
// axis with no records in the given slice get a zero count.
func SummarizeStages(records []domain.Record, stageAxis domain.AxisList) []StageSummary {
	cards := make(map[string]int, len(stageAxis))
	who := make(map[string]map[string]struct{}, len(stageAxis))
	scores := make(map[string]map[ScoreScale][]float64, len(stageAxis))

	for i := range records {
		r := &records[i]
		if r.Stage == "" {
			continue
		}
		cards[r.Stage]++
		if r.Stakeholder != "" {
			if who[r.Stage] == nil {
				who[r.Stage] = map[string]struct{}{}
			}
			who[r.Stage][r.Stakeholder] = struct{}{}
		}
		if score, scale, ok := parseScore(r.SatisfactionScore); ok {
			if scores[r.Stage] == nil {
				scores[r.Stage] = map[ScoreScale][]float64{}
			}
			scores[r.Stage][scale] = append(scores[r.Stage][scale], score)
		}
	}

	out := make([]StageSummary, 0, len(stageAxis))
	for _, st := range stageAxis {
		s := StageSummary{Stage: st, Cards: cards[st], Stakeholders: len(who[st])}
		s.Satisfaction = summarizeScores(scores[st])
		out = append(out, s)
	}
	return out
}

// summarizeScores summarizes the scale holding more scores; a tie goes to fractions.
// Scores on the other scale are counted in Excluded, never averaged in.
func summarizeScores(byScale map[ScoreScale][]float64) *ScoreSummary {
	scale, other := ScaleFraction, ScaleRaw
	if len(byScale[ScaleRaw]) > len(byScale[ScaleFraction]) {
		scale, other = ScaleRaw, ScaleFraction
	}
	data := byScale[scale]
	if len(data) == 0 {
		return nil
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil
	}
	min, err := stats.Min(data)
	if err != nil {
		return nil
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil
	}
	return &ScoreSummary{
		Scale:    scale,
		Count:    len(data),
		Mean:     mean,
		Median:   median,
		Min:      min,
		Max:      max,
		Excluded: len(byScale[other]),
	}
}

// parseScore reads "4", "4.5", "80%" or "4/5". Percentages and "/" scores come back
// as a fraction of 1 on ScaleFraction; bare numbers are returned as is on ScaleRaw.
func parseScore(raw string) (float64, ScoreScale, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "", false
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, okN := parseScoreNumber(num)
		d, okD := parseScoreNumber(den)
		if !okN || !okD || d == 0 {
			return 0, "", false
		}
		return n / d, ScaleFraction, true
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, ok := parseScoreNumber(pct)
		if !ok {
			return 0, "", false
		}
		return v / 100, ScaleFraction, true
	}
	v, ok := parseScoreNumber(s)
	if !ok {
		return 0, "", false
	}
	return v, ScaleRaw, true
}

func parseScoreNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v := domain.ParseNumberHint(s)
	if math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
