package journey

import (
	"sort"

	domain "journeygrid/domain/journey"
)

// AxisValues derives the canonical ordering of one axis: records are stably sorted
// by the axis order hint, then each non-empty axis value is kept at its first
// occurrence. Records with equal or missing hints keep their input order.
func AxisValues(records []domain.Record, axis domain.Axis) domain.AxisList {
	sorted := make([]*domain.Record, len(records))
	for i := range records {
		sorted[i] = &records[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AxisOrder(axis) < sorted[j].AxisOrder(axis)
	})

	seen := make(map[string]struct{})
	list := domain.AxisList{}
	for _, r := range sorted {
		v := r.AxisValue(axis)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		list = append(list, v)
	}
	return list
}
