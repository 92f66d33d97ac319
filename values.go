package omsvalues

import (
	"io"
	"log/slog"

	"github.com/ijknabla/omsvalues/cref"
)

// Values holds the overrides of one component scope: explicit start values,
// runtime values, declared defaults and the attached parameter resources.
//
// A Values tree is not safe for concurrent use. Callers editing one
// composition serialize access themselves.
type Values struct {
	Start     *Layer // Set before the component is instantiated
	Runtime   *Layer // Input values set after initialization
	Defaults  *Layer // Start values read from modelDescription.xml
	Resources []*Resource

	scope  cref.Name
	policy *Policy
	logger *slog.Logger
}

// Option configures a Values store.
type Option func(*Values)

// WithScope sets the qualified name of the owning component. SetResources
// uses it to check that full names are reachable from this store.
func WithScope(scope cref.Name) Option {
	return func(v *Values) {
		v.scope = scope
	}
}

// WithPolicy replaces the default resolution policy.
func WithPolicy(p *Policy) Option {
	return func(v *Values) {
		if p != nil {
			v.policy = p
		}
	}
}

// WithLogger sets the logger used for import warnings and debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Values) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Values {
	v := &Values{
		Start:    NewLayer(),
		Runtime:  NewLayer(),
		Defaults: NewLayer(),
		policy:   DefaultPolicy(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Scope returns the qualified name of the owning component.
func (v *Values) Scope() cref.Name {
	return v.scope
}

// Policy returns the active resolution policy.
func (v *Values) Policy() *Policy {
	return v.policy
}

// AddResource attaches r as the last top-level resource.
func (v *Values) AddResource(r *Resource) {
	r.init()
	v.Resources = append(v.Resources, r)
}

// Resource returns the top-level resource with the given name.
func (v *Values) Resource(name string) (*Resource, bool) {
	for _, r := range v.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// HasResources reports whether export would emit anything: a start value or
// at least one attached resource. Runtime values are never exported.
func (v *Values) HasResources() bool {
	return v.Start.Len() > 0 || len(v.Resources) > 0
}

func (v *Values) walkResources(fn func(*Resource)) {
	for _, r := range v.Resources {
		r.walk(fn)
	}
}
