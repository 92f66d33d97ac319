// Package omsvalues provides layered start-value and parameter overrides for
// co-simulation components, with SSP import/export and provenance tracking.
//
// Quick Start:
//
//	v := omsvalues.New(omsvalues.WithScope(cref.MustParse("model.root.gain")))
//	_ = v.ParseModelDescription(afero.NewOsFs(), "fmu/extracted")
//	_ = v.SetReal(cref.MustParse("k"), 2.5)
//
//	k, err := v.GetReal(cref.MustParse("k"))
//
// Values are looked up in start overrides, then attached parameter resources
// (.ssv sets with optional .ssm alias tables), then the defaults declared in
// modelDescription.xml. GetResources and SetResources consult a Policy keyed
// on the model state and whether the variable is an external input.
//
// See example_test.go for detailed usage.
package omsvalues
