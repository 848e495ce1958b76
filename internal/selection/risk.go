package selection

import "github.com/roach88/qbuilder/internal/model"

// IsRisky reports whether projecting columns is likely to produce a large
// crossjoin.
//
// A measure constrains the cross-product through its aggregation context,
// so any measure makes the selection safe. Without one, columns from two or
// more tables are risky. The result is advisory; callers decide whether to
// block, prompt or proceed. Runs in O(len(columns)) and uses only the facts
// carried on each column.
func IsRisky(columns []model.Column) bool {
	tables := make(map[string]struct{}, 2)
	for _, c := range columns {
		if c.IsMeasure() {
			return false
		}
		tables[model.FoldName(c.Table)] = struct{}{}
	}
	return len(tables) > 1
}
