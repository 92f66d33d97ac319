package omsvalues_test

import (
	"fmt"
	"log"
	"os"

	"github.com/beevik/etree"

	"github.com/ijknabla/omsvalues"
	"github.com/ijknabla/omsvalues/cref"
)

// Example demonstrates how start values override declared defaults.
func Example() {
	k := cref.MustParse("k")
	v := omsvalues.New(omsvalues.WithScope(cref.MustParse("model.root.gain")))

	// Normally filled by ParseModelDescription
	if err := v.Defaults.Set(k, omsvalues.Real(1)); err != nil {
		log.Fatal(err)
	}

	def, _ := v.GetReal(k)
	fmt.Printf("declared: %g\n", def)

	if err := v.SetReal(k, 2.5); err != nil {
		log.Fatal(err)
	}
	start, _ := v.GetReal(k)
	fmt.Printf("overridden: %g\n", start)

	v.DeleteStartValue(k)
	again, _ := v.GetReal(k)
	fmt.Printf("after delete: %g\n", again)

	// Output:
	// declared: 1
	// overridden: 2.5
	// after delete: 1
}

// ExampleValues_Lookup shows how a resource alias makes a resource-local
// parameter visible under the model's variable name.
func ExampleValues_Lookup() {
	v := omsvalues.New()

	gains := omsvalues.NewResource("resources/gains.ssv", true)
	if err := gains.Values.Set(cref.MustParse("p1"), omsvalues.Real(4)); err != nil {
		log.Fatal(err)
	}
	gains.Aliases.Add(cref.MustParse("p1"), cref.MustParse("sys.gain"))
	v.AddResource(gains)

	res, err := v.Lookup(cref.MustParse("sys.gain"), false, omsvalues.StateVirgin)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s = %s from %s\n", res.Name, res.Value, res.SourceName())

	// Output:
	// sys.gain = Real(4) from resources:resources/gains.ssv#p1
}

// ExampleValues_SetResources shows the default policy freezing start values
// once the model runs, while external inputs still reach the runtime layer.
func ExampleValues_SetResources() {
	v := omsvalues.New()
	u := cref.MustParse("u")

	err := v.SetResources(u, omsvalues.Real(1), cref.Name{}, false, omsvalues.StateSimulation)
	fmt.Println(err)

	if err := v.SetResources(u, omsvalues.Real(0.25), cref.Name{}, true, omsvalues.StateSimulation); err != nil {
		log.Fatal(err)
	}
	in, _ := v.GetRealResources(u, true, omsvalues.StateSimulation)
	fmt.Println("u:", in)

	// Output:
	// omsvalues: invalid_state "u": values cannot be changed in state simulation
	// u: 0.25
}

// ExampleValues_Rename moves a whole subtree of names.
func ExampleValues_Rename() {
	v := omsvalues.New()
	_ = v.SetReal(cref.MustParse("sub.k"), 1)
	_ = v.SetInteger(cref.MustParse("sub.n"), 2)
	_ = v.SetReal(cref.MustParse("inner.k"), 3)

	err := v.Rename(cref.MustParse("sub"), cref.MustParse("inner"))
	fmt.Println(err)

	_ = v.Rename(cref.MustParse("sub"), cref.MustParse("moved"))
	fmt.Println(v.Start.Names())

	// Output:
	// omsvalues: name_collision "inner": "inner.k" already exists
	// [inner.k moved.k moved.n]
}

// ExampleDumpEffective demonstrates listing every effective value with its source.
func ExampleDumpEffective() {
	v := omsvalues.New()
	_ = v.Defaults.Set(cref.MustParse("n"), omsvalues.Integer(3))
	_ = v.SetReal(cref.MustParse("k"), 2.5)
	_ = v.SetBoolean(cref.MustParse("on"), false)

	if err := omsvalues.DumpEffective(os.Stdout, v, omsvalues.WithSources()); err != nil {
		log.Fatal(err)
	}

	// Output:
	// k = 2.5 (Real) (source: start)
	// n = 3 (Integer) (source: defaults)
	// on = false (Boolean) (source: start)
}

// ExampleValues_ExportToSSV writes the start values as a standalone parameter set.
func ExampleValues_ExportToSSV() {
	v := omsvalues.New()
	_ = v.SetReal(cref.MustParse("k"), 2.5)

	doc := etree.NewDocument()
	v.ExportToSSV(&doc.Element)
	doc.Indent(2)
	if _, err := doc.WriteTo(os.Stdout); err != nil {
		log.Fatal(err)
	}

	// Output:
	// <ssv:ParameterSet xmlns:ssc="http://ssp-standard.org/SSP1/SystemStructureCommon" xmlns:ssv="http://ssp-standard.org/SSP1/SystemStructureParameterValues" version="1.0" name="parameters">
	//   <ssv:Parameters>
	//     <ssv:Parameter name="k">
	//       <ssv:Real value="2.5"/>
	//     </ssv:Parameter>
	//   </ssv:Parameters>
	// </ssv:ParameterSet>
}
