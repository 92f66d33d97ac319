package omsvalues

import (
	"github.com/ijknabla/omsvalues/cref"
)

// Set writes name as a start value. A name already held in Start stays
// there. Otherwise, if a resource aliases name, the value is written into
// that resource under its resource-local source name.
func (v *Values) Set(name cref.Name, val Value) error {
	if name.IsEmpty() {
		return invalidScope(name, "empty name")
	}
	if err := v.checkType(name, val.Type()); err != nil {
		return err
	}
	if v.Start.Has(name) {
		return v.Start.Set(name, val)
	}
	slots := slotsIn(v.Resources, name, true)
	for _, e := range slots {
		if e.alias {
			return writeSlots(name, slots, val)
		}
	}
	return v.Start.Set(name, val)
}

// SetResources writes name according to the policy row for
// (state, externalInput). fullName, when not empty, is the name qualified
// from the composition root and must resolve to name inside this store's
// scope.
func (v *Values) SetResources(name cref.Name, val Value, fullName cref.Name, externalInput bool, state ModelState) error {
	if name.IsEmpty() {
		return invalidScope(name, "empty name")
	}
	if !fullName.IsEmpty() && fullName != v.scope.Join(name) {
		return invalidScope(fullName, "not reachable from scope \""+v.scope.String()+"\"")
	}

	rule := v.policy.Rule(state, externalInput)
	switch rule.Write {
	case WriteRuntime:
		if err := v.checkType(name, val.Type()); err != nil {
			return err
		}
		return v.Runtime.Set(name, val)
	case WriteStart:
		if err := v.checkType(name, val.Type()); err != nil {
			return err
		}
		if v.Start.Has(name) {
			return v.Start.Set(name, val)
		}
		if slots := slotsIn(v.Resources, name, true); len(slots) > 0 {
			return writeSlots(name, slots, val)
		}
		return v.Start.Set(name, val)
	default:
		return &Error{
			Code:    ErrCodeInvalidState,
			Name:    name,
			Message: "values cannot be changed in state " + state.String() + externalSuffix(externalInput),
		}
	}
}

func externalSuffix(external bool) string {
	if external {
		return " (external input)"
	}
	return ""
}

// SetReal is Set for real variables.
func (v *Values) SetReal(name cref.Name, value float64) error {
	return v.Set(name, Real(value))
}

// SetInteger is Set for integer variables.
func (v *Values) SetInteger(name cref.Name, value int) error {
	return v.Set(name, Integer(value))
}

// SetBoolean is Set for boolean variables.
func (v *Values) SetBoolean(name cref.Name, value bool) error {
	return v.Set(name, Boolean(value))
}

// SetRealResources is SetResources for real variables.
func (v *Values) SetRealResources(name cref.Name, value float64, fullName cref.Name, externalInput bool, state ModelState) error {
	return v.SetResources(name, Real(value), fullName, externalInput, state)
}

// SetIntegerResources is SetResources for integer variables.
func (v *Values) SetIntegerResources(name cref.Name, value int, fullName cref.Name, externalInput bool, state ModelState) error {
	return v.SetResources(name, Integer(value), fullName, externalInput, state)
}

// SetBooleanResources is SetResources for boolean variables.
func (v *Values) SetBooleanResources(name cref.Name, value bool, fullName cref.Name, externalInput bool, state ModelState) error {
	return v.SetResources(name, Boolean(value), fullName, externalInput, state)
}

// checkType fails if any layer or resource already holds name with a type
// other than t.
func (v *Values) checkType(name cref.Name, t Type) error {
	for _, layer := range []*Layer{v.Start, v.Runtime, v.Defaults} {
		if old, ok := layer.Get(name); ok && old.Type() != t {
			return typeMismatch(name, old.Type(), t)
		}
	}
	var err error
	v.walkResources(func(r *Resource) {
		for _, e := range r.own(name) {
			if err == nil && e.set && e.value.Type() != t {
				err = typeMismatch(name, e.value.Type(), t)
			}
		}
	})
	return err
}

// writeSlots stores val in every slot. Slots spread over sibling resources
// are AmbiguousBinding and nothing is written. Types were checked by the
// caller.
func writeSlots(name cref.Name, slots []entry, val Value) error {
	for _, e := range slots[1:] {
		if e.node != slots[0].node {
			msg := "resources " + quoteResource(slots[0]) + " and " + quoteResource(e) + " both bind it"
			return &Error{Code: ErrCodeAmbiguousBinding, Name: name, Message: msg}
		}
	}
	for _, e := range slots {
		if err := e.node.Values.Set(e.local, val); err != nil {
			return err
		}
	}
	return nil
}

func invalidScope(name cref.Name, msg string) error {
	return &Error{Code: ErrCodeInvalidScope, Name: name, Message: msg}
}
