package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/qbuilder/internal/model"
)

func captions(names ...string) []model.Column {
	cols := make([]model.Column, len(names))
	for i, n := range names {
		cols[i] = model.NewAuthoredMeasure("Sales", n, "")
	}
	return cols
}

func TestUniqueMeasureName(t *testing.T) {
	tests := []struct {
		name     string
		existing []model.Column
		want     string
	}{
		{"empty", nil, "MyMeasure"},
		{"unrelated", captions("Revenue"), "MyMeasure"},
		{"prefix taken", captions("MyMeasure"), "MyMeasure1"},
		{"two taken", captions("MyMeasure", "MyMeasure1"), "MyMeasure2"},
		{"gap after delete", captions("MyMeasure", "MyMeasure2"), "MyMeasure3"},
		{"only numbered", captions("MyMeasure1"), "MyMeasure2"},
		{"case-insensitive", captions("mymeasure", "MYMEASURE1"), "MyMeasure2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueMeasureName(tt.existing, "MyMeasure")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniqueMeasureName_NeverCollides(t *testing.T) {
	existing := captions("MyMeasure")
	for i := 0; i < 50; i++ {
		name := UniqueMeasureName(existing, "MyMeasure")
		for _, c := range existing {
			assert.NotEqual(t, model.FoldName(c.Caption), model.FoldName(name))
		}
		existing = append(existing, model.NewAuthoredMeasure("Sales", name, ""))
	}
}
