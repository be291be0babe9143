package journey

// Cell is one (stage, stakeholder) position of the grid.
// Empty is the explicit placeholder marker; Record is nil exactly when Empty is true.
type Cell struct {
	Stage       string  `json:"stage"`
	Stakeholder string  `json:"stakeholder"`
	Record      *Record `json:"record,omitempty"`
	Empty       bool    `json:"empty"`
}

// GridRow is one stage row as a renderer iterates it
type GridRow struct {
	Stage string `json:"stage"`
	Cells []Cell `json:"cells"`
}

// GridView is the derived, pruned pivot of the visible records
type GridView struct {
	EffectiveStage       []string `json:"effectiveStage"`
	EffectiveStakeholder []string `json:"effectiveStakeholder"`
	ActiveStage          []string `json:"activeStage"`
	ActiveStakeholder    []string `json:"activeStakeholder"`
	VisibleCount         int      `json:"visibleCount"`

	// Collisions counts records overwritten by a later record mapped to the same cell
	Collisions int `json:"collisions"`

	// Grid maps stage -> stakeholder -> record. Every effective stage has an entry.
	Grid map[string]map[string]*Record `json:"-"`
}

// Cell looks up one position. Positions without a record come back Empty.
func (g GridView) Cell(stage, stakeholder string) Cell {
	c := Cell{Stage: stage, Stakeholder: stakeholder}
	if row, ok := g.Grid[stage]; ok {
		if rec, ok := row[stakeholder]; ok && rec != nil {
			c.Record = rec
			return c
		}
	}
	c.Empty = true
	return c
}

// Populated counts cells holding a record
func (g GridView) Populated() int {
	n := 0
	for _, row := range g.Grid {
		n += len(row)
	}
	return n
}

// Placeholders counts empty cells inside the effective rectangle
func (g GridView) Placeholders() int {
	return len(g.EffectiveStage)*len(g.EffectiveStakeholder) - g.Populated()
}

// Rows lays the grid out for display. A stage row with no records is dropped when it
// is the only effective stage, and an empty cell is dropped when its stakeholder is
// the only effective stakeholder.
func (g GridView) Rows() []GridRow {
	rows := make([]GridRow, 0, len(g.EffectiveStage))
	for _, stage := range g.EffectiveStage {
		if len(g.Grid[stage]) == 0 && len(g.EffectiveStage) == 1 {
			continue
		}
		row := GridRow{Stage: stage, Cells: make([]Cell, 0, len(g.EffectiveStakeholder))}
		for _, sh := range g.EffectiveStakeholder {
			c := g.Cell(stage, sh)
			if c.Empty && len(g.EffectiveStakeholder) == 1 {
				continue
			}
			row.Cells = append(row.Cells, c)
		}
		rows = append(rows, row)
	}
	return rows
}
