package omsvalues

import (
	"github.com/ijknabla/omsvalues/cref"
)

// Get resolves name from start values, then resources, then declared defaults.
func (v *Values) Get(name cref.Name) (Value, error) {
	res, err := v.resolve(name, setupOrder)
	return res.Value, err
}

// GetResources resolves name with the read order the policy assigns to
// (state, externalInput).
func (v *Values) GetResources(name cref.Name, externalInput bool, state ModelState) (Value, error) {
	res, err := v.Lookup(name, externalInput, state)
	return res.Value, err
}

// Lookup is GetResources with provenance.
func (v *Values) Lookup(name cref.Name, externalInput bool, state ModelState) (Resolution, error) {
	return v.resolve(name, v.policy.Rule(state, externalInput).Read)
}

// Default returns the declared default for name.
func (v *Values) Default(name cref.Name) (Value, error) {
	res, err := v.resolve(name, []Source{SourceDefaults})
	return res.Value, err
}

func (v *Values) resolve(name cref.Name, order []Source) (Resolution, error) {
	for _, src := range order {
		var layer *Layer
		switch src {
		case SourceStart:
			layer = v.Start
		case SourceRuntime:
			layer = v.Runtime
		case SourceDefaults:
			layer = v.Defaults
		case SourceResources:
			e, ok, err := resolveIn(v.Resources, name)
			if err != nil {
				return Resolution{}, err
			}
			if ok {
				return Resolution{
					Name:     name,
					Value:    e.value,
					Source:   SourceResources,
					Resource: e.node.Name,
					Local:    e.local,
				}, nil
			}
			continue
		}
		if val, ok := layer.Get(name); ok {
			return Resolution{Name: name, Value: val, Source: src, Local: name}, nil
		}
	}
	return Resolution{}, notFound(name)
}

// GetReal is Get for real variables.
func (v *Values) GetReal(name cref.Name) (float64, error) {
	return asReal(name)(v.Get(name))
}

// GetInteger is Get for integer variables.
func (v *Values) GetInteger(name cref.Name) (int, error) {
	return asInteger(name)(v.Get(name))
}

// GetBoolean is Get for boolean variables.
func (v *Values) GetBoolean(name cref.Name) (bool, error) {
	return asBoolean(name)(v.Get(name))
}

// GetRealResources is GetResources for real variables.
func (v *Values) GetRealResources(name cref.Name, externalInput bool, state ModelState) (float64, error) {
	return asReal(name)(v.GetResources(name, externalInput, state))
}

// GetIntegerResources is GetResources for integer variables.
func (v *Values) GetIntegerResources(name cref.Name, externalInput bool, state ModelState) (int, error) {
	return asInteger(name)(v.GetResources(name, externalInput, state))
}

// GetBooleanResources is GetResources for boolean variables.
func (v *Values) GetBooleanResources(name cref.Name, externalInput bool, state ModelState) (bool, error) {
	return asBoolean(name)(v.GetResources(name, externalInput, state))
}

// GetRealFromModelDescription returns the declared real default.
func (v *Values) GetRealFromModelDescription(name cref.Name) (float64, error) {
	return asReal(name)(v.Default(name))
}

// GetIntegerFromModelDescription returns the declared integer default.
func (v *Values) GetIntegerFromModelDescription(name cref.Name) (int, error) {
	return asInteger(name)(v.Default(name))
}

// GetBooleanFromModelDescription returns the declared boolean default.
func (v *Values) GetBooleanFromModelDescription(name cref.Name) (bool, error) {
	return asBoolean(name)(v.Default(name))
}

func asReal(name cref.Name) func(Value, error) (float64, error) {
	return func(val Value, err error) (float64, error) {
		if err != nil {
			return 0, err
		}
		f, ok := val.Real()
		if !ok {
			return 0, typeMismatch(name, val.Type(), TypeReal)
		}
		return f, nil
	}
}

func asInteger(name cref.Name) func(Value, error) (int, error) {
	return func(val Value, err error) (int, error) {
		if err != nil {
			return 0, err
		}
		n, ok := val.Integer()
		if !ok {
			return 0, typeMismatch(name, val.Type(), TypeInteger)
		}
		return n, nil
	}
}

func asBoolean(name cref.Name) func(Value, error) (bool, error) {
	return func(val Value, err error) (bool, error) {
		if err != nil {
			return false, err
		}
		b, ok := val.Boolean()
		if !ok {
			return false, typeMismatch(name, val.Type(), TypeBoolean)
		}
		return b, nil
	}
}
