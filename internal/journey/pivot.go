package journey

import (
	domain "journeygrid/domain/journey"
)

// Visible returns the records whose stage and stakeholder are both selected, in input order
func Visible(records []domain.Record, stages, stakeholders domain.SelectionSet) []*domain.Record {
	visible := make([]*domain.Record, 0, len(records))
	for i := range records {
		r := &records[i]
		if stages.Has(r.Stage) && stakeholders.Has(r.Stakeholder) {
			visible = append(visible, r)
		}
	}
	return visible
}

// activeValues keeps the selected values that at least one visible record carries
func activeValues(selected []string, visible []*domain.Record, axis domain.Axis) []string {
	present := make(map[string]struct{}, len(visible))
	for _, r := range visible {
		present[r.AxisValue(axis)] = struct{}{}
	}
	active := make([]string, 0, len(selected))
	for _, v := range selected {
		if _, ok := present[v]; ok {
			active = append(active, v)
		}
	}
	return active
}

// effective applies the pruning rule: an axis down to a single active value shows only
// that value; otherwise the full selection is kept so the grid stays rectangular.
func effective(selected, active []string) []string {
	if len(active) == 1 {
		return active
	}
	return selected
}

// DeriveGrid filters records by the two selections, prunes each axis independently
// and pivots the visible records into a stage -> stakeholder lookup. When two records
// land on the same cell the later one in input order wins.
func DeriveGrid(records []domain.Record, stages, stakeholders domain.SelectionSet) domain.GridView {
	visible := Visible(records, stages, stakeholders)
	selStage := stages.Values()
	selStakeholder := stakeholders.Values()

	view := domain.GridView{
		ActiveStage:       activeValues(selStage, visible, domain.AxisStage),
		ActiveStakeholder: activeValues(selStakeholder, visible, domain.AxisStakeholder),
		VisibleCount:      len(visible),
	}
	view.EffectiveStage = effective(selStage, view.ActiveStage)
	view.EffectiveStakeholder = effective(selStakeholder, view.ActiveStakeholder)

	inStage := toSet(view.EffectiveStage)
	inStakeholder := toSet(view.EffectiveStakeholder)

	view.Grid = make(map[string]map[string]*domain.Record, len(view.EffectiveStage))
	for _, st := range view.EffectiveStage {
		view.Grid[st] = map[string]*domain.Record{}
	}
	for _, r := range visible {
		if _, ok := inStage[r.Stage]; !ok {
			continue
		}
		if _, ok := inStakeholder[r.Stakeholder]; !ok {
			continue
		}
		row := view.Grid[r.Stage]
		if _, taken := row[r.Stakeholder]; taken {
			view.Collisions++
		}
		row[r.Stakeholder] = r
	}
	return view
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
