package omsvalues

import (
	"github.com/ijknabla/omsvalues/cref"
)

// Rename moves old, and everything below it, to new in every layer, every
// resource and every alias (source and target side). It fails with
// NameCollision, before changing anything, if new already denotes another
// entity.
func (v *Values) Rename(old, new cref.Name) error {
	layers := []*Layer{v.Start, v.Runtime, v.Defaults}
	return v.rename(old, new, layers)
}

// RenameInResources is Rename restricted to the attached resources.
func (v *Values) RenameInResources(old, new cref.Name) error {
	return v.rename(old, new, nil)
}

func (v *Values) rename(old, new cref.Name, layers []*Layer) error {
	if old == new {
		return nil
	}
	if old.IsEmpty() || new.IsEmpty() {
		return invalidScope(old, "cannot rename to or from the scope root")
	}

	var resources []*Resource
	v.walkResources(func(r *Resource) {
		resources = append(resources, r)
	})

	// Consumer-side names must not collide anywhere in the store.
	var visible []cref.Name
	for _, l := range layers {
		visible = append(visible, l.Names()...)
	}
	for _, r := range resources {
		visible = append(visible, r.ownNames(false)...)
	}
	if hit, ok := collisionIn(visible, old, new); ok {
		return nameCollision(new, hit)
	}
	// Resource-local keys only collide within a resource that moves some.
	for _, r := range resources {
		local := r.localNames()
		if !anyUnder(local, old) {
			continue
		}
		if hit, ok := collisionIn(local, old, new); ok {
			return nameCollision(new, hit)
		}
	}

	moved := 0
	for _, l := range layers {
		moved += l.Rename(old, new)
	}
	for _, r := range resources {
		moved += r.Values.Rename(old, new)
		moved += r.Aliases.Rename(old, new)
	}
	v.logger.Debug("renamed", "old", old.String(), "new", new.String(), "entries", moved)
	return nil
}

func nameCollision(new, existing cref.Name) error {
	return &Error{
		Code:    ErrCodeNameCollision,
		Name:    new,
		Message: "\"" + existing.String() + "\" already exists",
	}
}
