package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qbuilder/internal/model"
)

// CompileError is a model definition error with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileString compiles inline CUE source. name selects one of the
// models under `model:`; it may be empty when there is exactly one.
func CompileString(src, name string) (*Model, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename("model.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compile(v, name)
}

// LoadDir loads the CUE package in dir and compiles the selected model.
func LoadDir(dir, name string) (*Model, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("model directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compile(v, name)
}

func compile(root cue.Value, name string) (*Model, error) {
	models := root.LookupPath(cue.ParsePath("model"))
	if !models.Exists() {
		return nil, &CompileError{Field: "model", Message: "no model defined", Pos: root.Pos()}
	}

	var chosen cue.Value
	var found []string
	iter, err := models.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		label := unquote(iter.Label())
		found = append(found, label)
		if name != "" && model.FoldName(label) == model.FoldName(name) {
			chosen = iter.Value()
		}
	}

	switch {
	case name != "" && !chosen.Exists():
		return nil, &CompileError{
			Field:   "model",
			Message: fmt.Sprintf("model %q not defined (have %s)", name, strings.Join(found, ", ")),
			Pos:     models.Pos(),
		}
	case name == "" && len(found) != 1:
		return nil, &CompileError{
			Field:   "model",
			Message: fmt.Sprintf("%d models defined, select one of %s", len(found), strings.Join(found, ", ")),
			Pos:     models.Pos(),
		}
	case name == "":
		chosen = models.LookupPath(cue.MakePath(cue.Str(found[0])))
		name = found[0]
	}

	return compileModel(chosen, name)
}

func compileModel(v cue.Value, name string) (*Model, error) {
	caps := model.Capabilities{Model: name}
	if tv := v.LookupPath(cue.ParsePath("capabilities.treatas")); tv.Exists() {
		b, err := tv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		caps.TreatAs = b
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{Field: "table", Message: "at least one table is required", Pos: v.Pos()}
	}

	var tables []Table
	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		t := Table{Name: unquote(iter.Label())}
		cols, err := compileFields(iter.Value(), "column", model.RoleColumn)
		if err != nil {
			return nil, err
		}
		measures, err := compileFields(iter.Value(), "measure", model.RoleMeasure)
		if err != nil {
			return nil, err
		}
		t.Columns = append(cols, measures...)
		tables = append(tables, t)
	}

	m, err := NewModel(caps, tables...)
	if err != nil {
		return nil, &CompileError{Field: "table", Message: err.Error(), Pos: tablesVal.Pos()}
	}
	return m, nil
}

// compileFields reads `field: Caption: { type, name? }` entries of a table.
func compileFields(table cue.Value, field string, role model.Role) ([]model.Column, error) {
	v := table.LookupPath(cue.ParsePath(field))
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []model.Column
	for iter.Next() {
		caption := unquote(iter.Label())
		entry := iter.Value()

		typeVal := entry.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   field + "." + caption,
				Message: "type is required",
				Pos:     entry.Pos(),
			}
		}
		typeStr, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		dt, err := model.ParseDataType(typeStr)
		if err != nil {
			return nil, &CompileError{Field: field + "." + caption + ".type", Message: err.Error(), Pos: typeVal.Pos()}
		}

		col := model.Column{Caption: caption, DataType: dt, Role: role, ModelItem: true}
		if nameVal := entry.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
			if col.Name, err = nameVal.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// unquote strips CUE quoting from labels such as "Customer Count".
func unquote(label string) string {
	if s, err := strconv.Unquote(label); err == nil {
		return s
	}
	return label
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
