// Package cref implements qualified names for components and variables in a
// composed simulation model.
//
// A name is a dot-separated path such as "sys.sub.gain". Names are comparable
// values and can be used directly as map keys.
//
// Example:
//
//	name := cref.MustParse("sys.sub.gain")
//	name.HasPrefix(cref.MustParse("sys.sub")) // true
//	name.Rebase(cref.MustParse("sys.sub"), cref.MustParse("sys.x")) // sys.x.gain, true
package cref
