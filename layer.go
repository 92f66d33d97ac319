package omsvalues

import (
	"sort"

	"github.com/ijknabla/omsvalues/cref"
)

// Layer maps qualified names to typed values. One Layer is one semantic layer:
// start overrides, runtime overrides, declared defaults, or the content of a
// parameter resource. The zero Layer is empty and ready to use.
type Layer struct {
	entries map[cref.Name]Value
}

// NewLayer returns an empty layer.
func NewLayer() *Layer {
	return &Layer{entries: make(map[cref.Name]Value)}
}

// Get returns the value stored under name.
func (l *Layer) Get(name cref.Name) (Value, bool) {
	if l == nil {
		return Value{}, false
	}
	v, ok := l.entries[name]
	return v, ok
}

// Has reports whether name is stored in the layer.
func (l *Layer) Has(name cref.Name) bool {
	_, ok := l.Get(name)
	return ok
}

// Set stores v under name. A name keeps its type for the lifetime of the
// entry: overwriting with a different type fails with TypeMismatch.
func (l *Layer) Set(name cref.Name, v Value) error {
	if old, ok := l.entries[name]; ok && old.Type() != v.Type() {
		return typeMismatch(name, old.Type(), v.Type())
	}
	l.put(name, v)
	return nil
}

func (l *Layer) put(name cref.Name, v Value) {
	if l.entries == nil {
		l.entries = make(map[cref.Name]Value)
	}
	l.entries[name] = v
}

// Delete removes name and reports whether it was present.
func (l *Layer) Delete(name cref.Name) bool {
	if _, ok := l.entries[name]; !ok {
		return false
	}
	delete(l.entries, name)
	return true
}

// Len returns the number of entries.
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Clear removes every entry.
func (l *Layer) Clear() {
	l.entries = make(map[cref.Name]Value)
}

// Names returns all keys in cref order.
func (l *Layer) Names() []cref.Name {
	if l == nil {
		return nil
	}
	names := make([]cref.Name, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sortNames(names)
	return names
}

// Rename moves every key equal to or below old so that it sits below new.
// Returns the number of keys moved. Callers check collisions first.
func (l *Layer) Rename(old, new cref.Name) int {
	if l == nil {
		return 0
	}
	moved := make(map[cref.Name]Value)
	for name, v := range l.entries {
		if renamed, ok := name.Rebase(old, new); ok {
			moved[renamed] = v
			delete(l.entries, name)
		}
	}
	for name, v := range moved {
		l.entries[name] = v
	}
	return len(moved)
}

// collisionIn returns a name at or below new that is not at or below old,
// i.e. a distinct entity that a rename old→new would overwrite.
func collisionIn(names []cref.Name, old, new cref.Name) (cref.Name, bool) {
	for _, name := range names {
		if name.HasPrefix(new) && !name.HasPrefix(old) {
			return name, true
		}
	}
	return cref.Name{}, false
}

func anyUnder(names []cref.Name, prefix cref.Name) bool {
	for _, name := range names {
		if name.HasPrefix(prefix) {
			return true
		}
	}
	return false
}

func sortNames(names []cref.Name) {
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
}
