package journey

import "encoding/json"

// SelectionSet is the subset of one axis currently chosen for display.
// It is a value: Toggle, SelectAll and Clear return a new set and leave the receiver untouched.
type SelectionSet struct {
	axis    AxisList
	members map[string]struct{}
}

// NewSelectionSet returns a set bound to axis with every value selected
func NewSelectionSet(axis AxisList) SelectionSet {
	return SelectionSet{axis: axis}.SelectAll()
}

// Has reports whether v is selected
func (s SelectionSet) Has(v string) bool {
	_, ok := s.members[v]
	return ok
}

// Len returns the number of selected values
func (s SelectionSet) Len() int {
	return len(s.members)
}

// Axis returns the canonical list the set is bound to
func (s SelectionSet) Axis() AxisList {
	return s.axis
}

// Values returns the selected values in canonical axis order
func (s SelectionSet) Values() []string {
	out := make([]string, 0, len(s.members))
	for _, v := range s.axis {
		if s.Has(v) {
			out = append(out, v)
		}
	}
	return out
}

// Toggle removes v when selected and adds it otherwise.
// Values outside the bound axis are ignored so the set stays a subset of it.
func (s SelectionSet) Toggle(v string) SelectionSet {
	if !s.axis.Contains(v) {
		return s
	}
	next := s.clone()
	if _, ok := next.members[v]; ok {
		delete(next.members, v)
	} else {
		next.members[v] = struct{}{}
	}
	return next
}

// SelectAll selects the full axis list
func (s SelectionSet) SelectAll() SelectionSet {
	next := SelectionSet{axis: s.axis, members: make(map[string]struct{}, len(s.axis))}
	for _, v := range s.axis {
		next.members[v] = struct{}{}
	}
	return next
}

// Clear deselects everything
func (s SelectionSet) Clear() SelectionSet {
	return SelectionSet{axis: s.axis, members: map[string]struct{}{}}
}

// MarshalJSON writes the selected values in axis order
func (s SelectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s SelectionSet) clone() SelectionSet {
	next := SelectionSet{axis: s.axis, members: make(map[string]struct{}, len(s.members)+1)}
	for v := range s.members {
		next.members[v] = struct{}{}
	}
	return next
}
