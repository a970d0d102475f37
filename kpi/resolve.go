package kpi

import (
	"slices"
	"strings"

	"github.com/warp/kpi-engine/settings"
)

// =============================================================================
// FIELD RESOLVER - Roles -> column names
// =============================================================================
// Per role, first match wins:
//
//   1. the field on the encoding map, matched against column names:
//      exact name, else first column whose name contains the field name
//      or is contained by it (case-sensitive)
//   2. date only: settings.DateFieldName, same rule case-insensitively
//   3. date only: first dimension field on the map not placed on
//      value/goal/goal2
//   4. goal/goal2 only, when a value column exists: first measure field
//      not placed on value (nor goal, for goal2) whose column is not
//      already used
//   5. PTD: settings.PTDFieldName only, case-insensitive rule
//
// Unresolved roles stay empty; nothing here fails.
// =============================================================================

type columnSet struct {
	names []string
	index map[string]bool
}

func newColumnSet(columns []Column) columnSet {
	cs := columnSet{index: make(map[string]bool, len(columns))}
	for _, c := range columns {
		if cs.index[c.FieldName] {
			continue
		}
		cs.index[c.FieldName] = true
		cs.names = append(cs.names, c.FieldName)
	}
	return cs
}

// match finds the column for name: exact, else containment either way.
// An empty name never matches.
func (cs columnSet) match(name string, foldCase bool) string {
	if name == "" {
		return ""
	}
	if cs.index[name] {
		return name
	}
	needle := name
	if foldCase {
		needle = strings.ToLower(name)
	}
	for _, cn := range cs.names {
		hay := cn
		if foldCase {
			hay = strings.ToLower(cn)
		}
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return cn
		}
	}
	return ""
}

func (cs columnSet) field(f *FieldRef) string {
	if f == nil {
		return ""
	}
	return cs.match(f.Name, false)
}

// Resolve maps encoding roles to concrete columns.
func Resolve(enc EncodingMap, columns []Column, s settings.Settings) ResolvedEncoding {
	cs := newColumnSet(columns)

	r := ResolvedEncoding{
		ValueCol:   cs.field(enc.Get(EncValue)),
		GoalCol:    cs.field(enc.Get(EncGoal)),
		Goal2Col:   cs.field(enc.Get(EncGoal2)),
		DateCol:    cs.field(enc.Get(EncDate)),
		ValueField: enc.Get(EncValue),
		Goal2Field: enc.Get(EncGoal2),
	}

	if r.DateCol == "" && s.DateFieldName != "" {
		r.DateCol = cs.match(s.DateFieldName, true)
	}
	if r.DateCol == "" {
		r.DateCol = firstDimensionColumn(enc, cs)
	}

	if r.ValueCol != "" {
		used := map[string]bool{}
		for _, col := range []string{r.ValueCol, r.GoalCol, r.Goal2Col} {
			if col != "" {
				used[col] = true
			}
		}
		if r.GoalCol == "" {
			r.GoalCol = firstUnusedMeasure(enc, cs, used, EncValue)
		}
		if r.Goal2Col == "" {
			r.Goal2Col = firstUnusedMeasure(enc, cs, used, EncValue, EncGoal)
		}
	}

	if s.PTDFieldName != "" {
		r.PTDCol = cs.match(s.PTDFieldName, true)
	}

	r.DateFieldName = dateFieldName(enc)
	return r
}

func isMeasureRole(id string) bool {
	return id == EncValue || id == EncGoal || id == EncGoal2
}

func firstDimensionColumn(enc EncodingMap, cs columnSet) string {
	for _, e := range enc {
		if e.Field == nil || isMeasureRole(e.ID) || e.Field.Role != RoleDimension {
			continue
		}
		if col := cs.field(e.Field); col != "" {
			return col
		}
	}
	return ""
}

// firstUnusedMeasure picks the first measure field outside the skipped
// roles whose column is not yet used, and marks that column used.
func firstUnusedMeasure(enc EncodingMap, cs columnSet, used map[string]bool, skip ...string) string {
	for _, e := range enc {
		if e.Field == nil || e.Field.Role != RoleMeasure || slices.Contains(skip, e.ID) {
			continue
		}
		col := cs.field(e.Field)
		if col != "" && !used[col] {
			used[col] = true
			return col
		}
	}
	return ""
}

// dateFieldName is the date field's name, else the first dimension's.
func dateFieldName(enc EncodingMap) string {
	if f := enc.Get(EncDate); f != nil {
		return f.Name
	}
	for _, e := range enc {
		if e.Field != nil && e.Field.Role == RoleDimension {
			return e.Field.Name
		}
	}
	return ""
}
