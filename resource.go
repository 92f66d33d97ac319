package omsvalues

import (
	"sort"

	"github.com/ijknabla/omsvalues/cref"
)

// Resource is a parameter resource: a set of values, an alias table that
// maps resource-local names into the consuming scope, and nested resources.
// Resources form a tree; every child is owned by exactly one parent.
type Resource struct {
	// Name identifies the resource. For linked resources it is the document
	// path inside the package (e.g. "resources/gains.ssv"); for inline ones
	// it is the parameter set name.
	Name string

	Values  *Layer
	Aliases *AliasTable

	// SSMFile names the standalone mapping document paired with this set.
	// Empty means the mapping, if any, is embedded inline.
	SSMFile string

	// Linked selects export as standalone .ssv/.ssm documents rather than
	// embedding the values in the SSD.
	Linked bool

	Inline []*Resource
	Named  map[string]*Resource
}

// NewResource returns an empty resource.
func NewResource(name string, linked bool) *Resource {
	return &Resource{
		Name:    name,
		Values:  NewLayer(),
		Aliases: NewAliasTable(),
		Linked:  linked,
		Named:   make(map[string]*Resource),
	}
}

// AddInline appends child to the positional children.
func (r *Resource) AddInline(child *Resource) {
	child.init()
	r.Inline = append(r.Inline, child)
}

// init fills nil fields of a resource built as a struct literal.
func (r *Resource) init() {
	if r.Values == nil {
		r.Values = NewLayer()
	}
	if r.Aliases == nil {
		r.Aliases = NewAliasTable()
	}
	if r.Named == nil {
		r.Named = make(map[string]*Resource)
	}
}

// Attach stores child under key, replacing any previous child with that key.
// An unnamed child takes key as its name.
func (r *Resource) Attach(key string, child *Resource) {
	if r.Named == nil {
		r.Named = make(map[string]*Resource)
	}
	if child.Name == "" {
		child.Name = key
	}
	child.init()
	r.Named[key] = child
}

// Children returns inline children in order followed by named children in
// key order. This is the resolution priority among siblings.
func (r *Resource) Children() []*Resource {
	out := make([]*Resource, 0, len(r.Inline)+len(r.Named))
	out = append(out, r.Inline...)
	keys := make([]string, 0, len(r.Named))
	for k := range r.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, r.Named[k])
	}
	return out
}

// IsEmpty reports whether the resource holds no values, aliases or children.
func (r *Resource) IsEmpty() bool {
	return r.Values.Len() == 0 && r.Aliases.Len() == 0 && len(r.Inline) == 0 && len(r.Named) == 0
}

// entry is one resource-local slot that supplies a consumer name.
type entry struct {
	node  *Resource
	local cref.Name
	value Value
	set   bool // false for an alias whose source has no value yet
	alias bool
}

// own returns the slots of r itself that address name. A key that is an
// alias source is visible only through its targets.
func (r *Resource) own(name cref.Name) []entry {
	var out []entry
	for _, src := range r.Aliases.Sources(name) {
		v, ok := r.Values.Get(src)
		out = append(out, entry{node: r, local: src, value: v, set: ok, alias: true})
	}
	if !r.Aliases.IsSource(name) {
		if v, ok := r.Values.Get(name); ok {
			out = append(out, entry{node: r, local: name, value: v, set: true})
		}
	}
	return out
}

// slots returns the highest-priority slots for name below r: the node's own
// slots if any, otherwise the union of its children's slots. With unset,
// alias slots whose source holds no value yet also count.
func (r *Resource) slots(name cref.Name, unset bool) []entry {
	var own []entry
	for _, e := range r.own(name) {
		if e.set || unset {
			own = append(own, e)
		}
	}
	if len(own) > 0 {
		return own
	}
	return slotsIn(r.Children(), name, unset)
}

func slotsIn(nodes []*Resource, name cref.Name, unset bool) []entry {
	var out []entry
	for _, n := range nodes {
		out = append(out, n.slots(name, unset)...)
	}
	return out
}

// resolveIn resolves name among sibling resources. All matching slots must
// belong to one node and agree on the value; anything else is
// AmbiguousBinding.
func resolveIn(nodes []*Resource, name cref.Name) (entry, bool, error) {
	found := slotsIn(nodes, name, false)
	if len(found) == 0 {
		return entry{}, false, nil
	}
	first := found[0]
	for _, e := range found[1:] {
		if e.node != first.node || !e.value.Equal(first.value) {
			return entry{}, false, ambiguous(name, first, e)
		}
	}
	return first, true, nil
}

func ambiguous(name cref.Name, a, b entry) error {
	msg := "resources " + quoteResource(a) + " and " + quoteResource(b) +
		" supply " + a.value.String() + " and " + b.value.String()
	return &Error{Code: ErrCodeAmbiguousBinding, Name: name, Message: msg}
}

func quoteResource(e entry) string {
	name := e.node.Name
	if name == "" {
		name = "<inline>"
	}
	return "\"" + name + ":" + e.local.String() + "\""
}

// walk visits r and every descendant depth-first.
func (r *Resource) walk(fn func(*Resource)) {
	fn(r)
	for _, c := range r.Children() {
		c.walk(fn)
	}
}

// deleteName removes every slot of r and its descendants that supplies name.
// An alias source value is dropped once no alias references it. Children
// left empty by the removal are pruned.
func (r *Resource) deleteName(name cref.Name) bool {
	removed := false
	for _, src := range r.Aliases.Sources(name) {
		r.Aliases.Remove(src, name)
		removed = true
		if !r.Aliases.IsSource(src) {
			r.Values.Delete(src)
		}
	}
	if !r.Aliases.IsSource(name) && r.Values.Delete(name) {
		removed = true
	}
	for key, c := range r.Named {
		if c.deleteName(name) {
			removed = true
			if c.IsEmpty() {
				delete(r.Named, key)
			}
		}
	}
	kept := r.Inline[:0]
	for _, c := range r.Inline {
		if c.deleteName(name) {
			removed = true
			if c.IsEmpty() {
				continue
			}
		}
		kept = append(kept, c)
	}
	r.Inline = kept
	return removed
}

// ownNames returns the consumer names r's own slots supply: alias targets
// and keys that are not alias sources. With setOnly, targets whose source
// holds no value are left out.
func (r *Resource) ownNames(setOnly bool) []cref.Name {
	var out []cref.Name
	for _, a := range r.Aliases.Entries() {
		if !setOnly || r.Values.Has(a.Source) {
			out = append(out, a.Target)
		}
	}
	for _, n := range r.Values.Names() {
		if !r.Aliases.IsSource(n) {
			out = append(out, n)
		}
	}
	return out
}

// localNames returns every resource-local key of r: stored values and
// alias sources.
func (r *Resource) localNames() []cref.Name {
	out := r.Values.Names()
	for _, a := range r.Aliases.Entries() {
		out = append(out, a.Source)
	}
	return out
}

// withoutShadowed returns a copy of r, sharing its children, minus the
// slots for names in shadowed. An alias source value is kept only while
// some alias still references it.
func (r *Resource) withoutShadowed(shadowed map[cref.Name]bool) *Resource {
	out := &Resource{
		Name:    r.Name,
		Values:  NewLayer(),
		Aliases: NewAliasTable(),
		SSMFile: r.SSMFile,
		Linked:  r.Linked,
		Inline:  r.Inline,
		Named:   r.Named,
	}
	for _, a := range r.Aliases.Entries() {
		if !shadowed[a.Target] {
			out.Aliases.Add(a.Source, a.Target)
		}
	}
	for _, n := range r.Values.Names() {
		val, _ := r.Values.Get(n)
		if r.Aliases.IsSource(n) {
			if out.Aliases.IsSource(n) {
				out.Values.put(n, val)
			}
			continue
		}
		if !shadowed[n] {
			out.Values.put(n, val)
		}
	}
	return out
}

// detach removes every descendant named filename and clears mappings read
// from filename. Children left empty by the removal are pruned.
func (r *Resource) detach(filename string) bool {
	removed := false
	if r.SSMFile != "" && r.SSMFile == filename {
		r.Aliases.Clear()
		r.SSMFile = ""
		removed = true
	}
	for key, c := range r.Named {
		if key == filename || c.Name == filename {
			delete(r.Named, key)
			removed = true
			continue
		}
		if c.detach(filename) {
			removed = true
			if c.IsEmpty() {
				delete(r.Named, key)
			}
		}
	}
	kept := r.Inline[:0]
	for _, c := range r.Inline {
		if c.Name == filename {
			removed = true
			continue
		}
		if c.detach(filename) {
			removed = true
			if c.IsEmpty() {
				continue
			}
		}
		kept = append(kept, c)
	}
	r.Inline = kept
	return removed
}
