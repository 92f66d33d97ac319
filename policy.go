package omsvalues

import (
	"fmt"
)

// Source names a place a value can be read from.
type Source string

const (
	SourceStart     Source = "start"     // explicit start overrides
	SourceRuntime   Source = "runtime"   // overrides applied after initialization
	SourceResources Source = "resources" // attached parameter resources
	SourceDefaults  Source = "defaults"  // declared defaults from modelDescription.xml
)

// WriteTarget names where a Resources-aware set goes.
type WriteTarget string

const (
	WriteStart   WriteTarget = "start"
	WriteRuntime WriteTarget = "runtime"
	WriteDeny    WriteTarget = "deny"
)

// Rule is one row of the policy table.
type Rule struct {
	Read  []Source    // Consulted in order; the first source holding the name wins
	Write WriteTarget // Where SetResources writes
}

type policyKey struct {
	state    ModelState
	external bool
}

// Policy maps (model state, externalInput) to a Rule.
type Policy struct {
	rules map[policyKey]Rule
}

var setupOrder = []Source{SourceStart, SourceResources, SourceDefaults}

// DefaultPolicy returns the built-in table. Before the model runs, explicit
// start values outrank resources and anything may be written as a start
// value. Once simulating, external inputs read and write only the runtime
// layer and start values are frozen.
func DefaultPolicy() *Policy {
	p := &Policy{rules: make(map[policyKey]Rule)}
	for _, state := range ModelStates() {
		for _, external := range []bool{false, true} {
			rule := Rule{Read: setupOrder, Write: WriteStart}
			if state.Initialized() {
				rule.Write = WriteDeny
				if external {
					rule.Read = []Source{SourceRuntime}
					if state == StateSimulation {
						rule.Write = WriteRuntime
					}
				}
			}
			p.SetRule(state, external, rule)
		}
	}
	return p
}

// Rule returns the row for (state, external). Unknown states fall back to a
// read-only setup order.
func (p *Policy) Rule(state ModelState, external bool) Rule {
	if rule, ok := p.rules[policyKey{state, external}]; ok {
		return rule
	}
	return Rule{Read: setupOrder, Write: WriteDeny}
}

// SetRule replaces the row for (state, external).
func (p *Policy) SetRule(state ModelState, external bool, rule Rule) {
	if p.rules == nil {
		p.rules = make(map[policyKey]Rule)
	}
	read := make([]Source, len(rule.Read))
	copy(read, rule.Read)
	p.rules[policyKey{state, external}] = Rule{Read: read, Write: rule.Write}
}

// Validate checks every row and returns a *ValidationError listing all
// problems. Writing runtime values before the model is initialized is
// rejected.
func (p *Policy) Validate() error {
	var issues []Issue
	for _, state := range ModelStates() {
		for _, external := range []bool{false, true} {
			rule, ok := p.rules[policyKey{state, external}]
			path := RulePath(state, external)
			if !ok {
				issues = append(issues, Issue{Path: path, Code: ErrCodeEmptyOrder, Message: "missing rule"})
				continue
			}
			issues = append(issues, validateRule(path, state, rule)...)
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validateRule(path string, state ModelState, rule Rule) []Issue {
	var issues []Issue
	if len(rule.Read) == 0 {
		issues = append(issues, Issue{Path: path + ".read", Code: ErrCodeEmptyOrder, Message: "read order is empty"})
	}
	seen := make(map[Source]bool)
	for _, src := range rule.Read {
		switch src {
		case SourceStart, SourceRuntime, SourceResources, SourceDefaults:
		default:
			issues = append(issues, Issue{
				Path:    path + ".read",
				Code:    ErrCodeUnknownSource,
				Message: fmt.Sprintf("unknown source %q", src),
			})
		}
		if seen[src] {
			issues = append(issues, Issue{
				Path:    path + ".read",
				Code:    ErrCodeUnknownSource,
				Message: fmt.Sprintf("source %q listed twice", src),
			})
		}
		seen[src] = true
	}
	switch rule.Write {
	case WriteStart, WriteDeny:
	case WriteRuntime:
		if !state.Initialized() {
			issues = append(issues, Issue{
				Path:    path + ".write",
				Code:    ErrCodeEarlyRuntime,
				Message: "runtime values cannot be written before initialization",
			})
		}
	default:
		issues = append(issues, Issue{
			Path:    path + ".write",
			Code:    ErrCodeUnknownWrite,
			Message: fmt.Sprintf("unknown write target %q", rule.Write),
		})
	}
	return issues
}

// RulePath returns the dotted path of a row as used in policy files,
// e.g. "simulation.external".
func RulePath(state ModelState, external bool) string {
	if external {
		return state.String() + ".external"
	}
	return state.String() + ".internal"
}
