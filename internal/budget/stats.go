package budget

import "budgetbook/internal/core"

// Stats maps active category names to their statistics while remembering
// category creation order for display.
type Stats struct {
	order  []string
	byName map[string]core.CategoryStat
}

// Get returns the statistics of a single category.
func (s Stats) Get(name string) (core.CategoryStat, bool) {
	st, ok := s.byName[name]
	return st, ok
}

func (s Stats) Len() int { return len(s.order) }

// All returns the statistics in category creation order.
func (s Stats) All() []core.CategoryStat {
	out := make([]core.CategoryStat, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}

// DropdownCategories lists the names still accepting new expenses.
func (s Stats) DropdownCategories() []string {
	var out []string
	for _, name := range s.order {
		if s.byName[name].DropdownVisible {
			out = append(out, name)
		}
	}
	return out
}
