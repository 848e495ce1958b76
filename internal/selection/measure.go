package selection

import (
	"strconv"
	"strings"

	"github.com/roach88/qbuilder/internal/model"
)

// UniqueMeasureName returns a caption starting with prefix that no caption
// in existing uses.
//
// When no caption starts with prefix, prefix itself is returned. Otherwise
// the search starts at the number of captions sharing the prefix and counts
// up until prefix+N is free, so deleting an earlier custom measure does not
// cause a collision. Comparisons are case-insensitive like the model's
// object names. The loop runs at most len(existing)+1 times.
func UniqueMeasureName(existing []model.Column, prefix string) string {
	folded := model.FoldName(prefix)
	taken := make(map[string]bool, len(existing))
	n := 0
	for _, c := range existing {
		caption := model.FoldName(c.Caption)
		taken[caption] = true
		if strings.HasPrefix(caption, folded) {
			n++
		}
	}
	if n == 0 {
		return prefix
	}
	for taken[model.FoldName(prefix+strconv.Itoa(n))] {
		n++
	}
	return prefix + strconv.Itoa(n)
}
