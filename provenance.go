package omsvalues

import "github.com/ijknabla/omsvalues/cref"

// Resolution describes where a resolved value came from.
type Resolution struct {
	Name     cref.Name // Name as requested
	Value    Value
	Source   Source    // Layer that supplied the value
	Resource string    // Resource name when Source is SourceResources
	Local    cref.Name // Resource-local key; differs from Name when aliased
}

// Aliased reports whether the value was reached through an alias.
func (r Resolution) Aliased() bool {
	return r.Source == SourceResources && r.Local != r.Name
}

// SourceName formats the origin for display, e.g. "start",
// "resources:resources/gains.ssv" or "resources:resources/gains.ssv#p1".
func (r Resolution) SourceName() string {
	if r.Source != SourceResources {
		return string(r.Source)
	}
	name := r.Resource
	if name == "" {
		name = "<inline>"
	}
	s := string(r.Source) + ":" + name
	if r.Aliased() {
		s += "#" + r.Local.String()
	}
	return s
}
