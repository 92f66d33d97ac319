// Package policyfile loads a resolution policy table from YAML, JSON, or TOML files.
//
// Format is auto-detected from extension (.yaml, .json, .toml). Rows are
// addressed as <state>.<external|internal> and override the matching rows of
// omsvalues.DefaultPolicy; rows not mentioned keep their defaults.
//
// Example:
//
//	simulation:
//	  internal:
//	    read: [start, resources, defaults]
//	    write: deny
//	  external:
//	    read: [runtime, start]
//	    write: runtime
//
//	policy, err := policyfile.Load("policy.yaml", policyfile.Options{Required: true})
//	values := omsvalues.New(omsvalues.WithPolicy(policy))
package policyfile
