package omsvalues

import (
	"sort"

	"github.com/ijknabla/omsvalues/cref"
)

// Alias redirects a value defined under Source in a parameter resource to
// Target in the consuming scope.
type Alias struct {
	Source cref.Name // Resource-local name
	Target cref.Name // Consumer-side name
}

// AliasTable is a multimap of aliases. One source may feed several targets
// and several sources may feed one target. Duplicate pairs are stored once.
type AliasTable struct {
	entries []Alias
}

// NewAliasTable returns an empty table.
func NewAliasTable() *AliasTable {
	return &AliasTable{}
}

// Add inserts source→target and reports whether the pair was new.
func (t *AliasTable) Add(source, target cref.Name) bool {
	for _, a := range t.entries {
		if a.Source == source && a.Target == target {
			return false
		}
	}
	t.entries = append(t.entries, Alias{Source: source, Target: target})
	return true
}

// Remove deletes source→target and reports whether it existed.
func (t *AliasTable) Remove(source, target cref.Name) bool {
	for i, a := range t.entries {
		if a.Source == source && a.Target == target {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Sources returns every resource-local name aliased to target.
func (t *AliasTable) Sources(target cref.Name) []cref.Name {
	if t == nil {
		return nil
	}
	var out []cref.Name
	for _, a := range t.entries {
		if a.Target == target {
			out = append(out, a.Source)
		}
	}
	return out
}

// Targets returns every consumer name fed by source.
func (t *AliasTable) Targets(source cref.Name) []cref.Name {
	if t == nil {
		return nil
	}
	var out []cref.Name
	for _, a := range t.entries {
		if a.Source == source {
			out = append(out, a.Target)
		}
	}
	return out
}

// IsSource reports whether name is aliased away from its own name.
func (t *AliasTable) IsSource(name cref.Name) bool {
	return len(t.Targets(name)) > 0
}

// Len returns the number of pairs.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Clear removes every pair.
func (t *AliasTable) Clear() {
	t.entries = nil
}

// Entries returns all pairs ordered by source, then target.
func (t *AliasTable) Entries() []Alias {
	if t == nil {
		return nil
	}
	out := make([]Alias, len(t.entries))
	copy(out, t.entries)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Source.Compare(out[j].Source); c != 0 {
			return c < 0
		}
		return out[i].Target.Less(out[j].Target)
	})
	return out
}

// Rename rewrites sources and targets equal to or below old. Pairs that
// become identical are merged. Returns the number of pairs touched.
func (t *AliasTable) Rename(old, new cref.Name) int {
	if t == nil {
		return 0
	}
	touched := 0
	entries := t.entries
	t.entries = nil
	for _, a := range entries {
		src, okSrc := a.Source.Rebase(old, new)
		tgt, okTgt := a.Target.Rebase(old, new)
		if okSrc || okTgt {
			touched++
		}
		t.Add(src, tgt)
	}
	return touched
}
