package omsvalues

import (
	"fmt"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/ijknabla/omsvalues/cref"
)

// SSP element names and namespaces.
const (
	ssdParameterBindings = "ssd:ParameterBindings"
	ssdParameterBinding  = "ssd:ParameterBinding"
	ssdParameterValues   = "ssd:ParameterValues"
	ssdParameterMapping  = "ssd:ParameterMapping"
	ssvParameterSet      = "ssv:ParameterSet"
	ssvParameters        = "ssv:Parameters"
	ssvParameter         = "ssv:Parameter"
	ssmParameterMapping  = "ssm:ParameterMapping"
	ssmMappingEntry      = "ssm:MappingEntry"

	NamespaceSSC = "http://ssp-standard.org/SSP1/SystemStructureCommon"
	NamespaceSSV = "http://ssp-standard.org/SSP1/SystemStructureParameterValues"
	NamespaceSSM = "http://ssp-standard.org/SSP1/SystemStructureParameterMapping"

	// DefaultParameterSetName names the parameter set holding start values.
	DefaultParameterSetName = "parameters"
)

// ExportToSSD appends an inline ssd:ParameterBindings block holding the
// start values. Nothing is written when there are no start values.
func (v *Values) ExportToSSD(parent *etree.Element) {
	if v.Start.Len() == 0 {
		return
	}
	bindings := parent.CreateElement(ssdParameterBindings)
	v.exportStartBinding(bindings)
}

func (v *Values) exportStartBinding(bindings *etree.Element) {
	binding := bindings.CreateElement(ssdParameterBinding)
	values := binding.CreateElement(ssdParameterValues)
	writeParameterSet(values, DefaultParameterSetName, v.Start)
}

// ExportToSSV appends a standalone ssv:ParameterSet holding the start values.
func (v *Values) ExportToSSV(parent *etree.Element) {
	writeParameterSet(parent, DefaultParameterSetName, v.Start)
}

// ExportToSSVTemplate appends a parameter set seeded from the declared
// defaults only, each name qualified with prefix.
func (v *Values) ExportToSSVTemplate(parent *etree.Element, prefix cref.Name) {
	layer := NewLayer()
	for _, name := range v.Defaults.Names() {
		val, _ := v.Defaults.Get(name)
		layer.put(prefix.Join(name), val)
	}
	setName := prefix.String()
	if setName == "" {
		setName = DefaultParameterSetName
	}
	writeParameterSet(parent, setName, layer)
}

// ExportToSSMTemplate appends a parameter mapping that maps every declared
// default name to the same name qualified with prefix.
func (v *Values) ExportToSSMTemplate(parent *etree.Element, prefix cref.Name) {
	aliases := NewAliasTable()
	for _, name := range v.Defaults.Names() {
		aliases.Add(name, prefix.Join(name))
	}
	writeParameterMapping(parent, aliases)
}

// ExportToSSV appends the resource's values as an ssv:ParameterSet.
func (r *Resource) ExportToSSV(parent *etree.Element) {
	writeParameterSet(parent, r.setName(), r.Values)
}

// ExportToSSM appends the resource's aliases as an ssm:ParameterMapping.
func (r *Resource) ExportToSSM(parent *etree.Element) {
	writeParameterMapping(parent, r.Aliases)
}

func (r *Resource) setName() string {
	name := r.Name
	if r.Linked {
		name = strings.TrimSuffix(path.Base(name), ".ssv")
	}
	if name == "" {
		return DefaultParameterSetName
	}
	return name
}

// ExportParameterBindings appends the complete ssd:ParameterBindings block:
// the inline start values followed by one binding per resource. Linked
// resources are referenced by name and their .ssv/.ssm documents are
// written to snapshot. Nested resources are emitted as sibling bindings,
// without the names an ancestor already supplies, so that resolution is
// the same after import.
func (v *Values) ExportParameterBindings(parent *etree.Element, snapshot Snapshot) error {
	if !v.HasResources() {
		return nil
	}
	bindings := parent.CreateElement(ssdParameterBindings)
	if v.Start.Len() > 0 {
		v.exportStartBinding(bindings)
	}
	for _, r := range v.Resources {
		if err := v.exportTree(bindings, r, nil, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (v *Values) exportTree(bindings *etree.Element, r *Resource, shadowed map[cref.Name]bool, snapshot Snapshot) error {
	own := r.withoutShadowed(shadowed)
	children := r.Children()
	if own.Values.Len() > 0 || own.Aliases.Len() > 0 || len(children) == 0 {
		if err := v.exportBinding(bindings, own, snapshot); err != nil {
			return err
		}
	}
	if len(children) == 0 {
		return nil
	}

	inner := make(map[cref.Name]bool, len(shadowed))
	for name := range shadowed {
		inner[name] = true
	}
	for _, name := range r.ownNames(true) {
		inner[name] = true
	}
	for _, c := range children {
		if err := v.exportTree(bindings, c, inner, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (v *Values) exportBinding(bindings *etree.Element, r *Resource, snapshot Snapshot) error {
	binding := bindings.CreateElement(ssdParameterBinding)

	linked := r.Linked
	if linked && r.Name == "" {
		v.logger.Warn("linked resource has no name, embedding it inline")
		linked = false
	}
	if linked {
		binding.CreateAttr("source", r.Name)
		if err := writeDocument(snapshot, r.Name, r.ExportToSSV); err != nil {
			return err
		}
	} else {
		r.ExportToSSV(binding.CreateElement(ssdParameterValues))
	}

	switch {
	case r.SSMFile != "":
		mapping := binding.CreateElement(ssdParameterMapping)
		mapping.CreateAttr("source", r.SSMFile)
		if err := writeDocument(snapshot, r.SSMFile, r.ExportToSSM); err != nil {
			return err
		}
	case linked && r.Aliases.Len() == 0:
		// A source attribute already marks the binding as a resource.
	default:
		r.ExportToSSM(binding.CreateElement(ssdParameterMapping))
	}
	return nil
}

// writeDocument renders a standalone document with fill and stores it in snapshot.
func writeDocument(snapshot Snapshot, name string, fill func(*etree.Element)) error {
	if snapshot == nil {
		return fmt.Errorf("export %s: no snapshot to write to", name)
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	fill(&doc.Element)
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := snapshot.WriteResource(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeParameterSet(parent *etree.Element, name string, layer *Layer) *etree.Element {
	set := parent.CreateElement(ssvParameterSet)
	set.CreateAttr("xmlns:ssc", NamespaceSSC)
	set.CreateAttr("xmlns:ssv", NamespaceSSV)
	set.CreateAttr("version", "1.0")
	set.CreateAttr("name", name)
	params := set.CreateElement(ssvParameters)
	for _, n := range layer.Names() {
		val, _ := layer.Get(n)
		p := params.CreateElement(ssvParameter)
		p.CreateAttr("name", n.String())
		p.CreateElement("ssv:"+val.Type().String()).CreateAttr("value", val.Literal())
	}
	return set
}

func writeParameterMapping(parent *etree.Element, aliases *AliasTable) *etree.Element {
	mapping := parent.CreateElement(ssmParameterMapping)
	mapping.CreateAttr("xmlns:ssc", NamespaceSSC)
	mapping.CreateAttr("xmlns:ssm", NamespaceSSM)
	mapping.CreateAttr("version", "1.0")
	for _, a := range aliases.Entries() {
		e := mapping.CreateElement(ssmMappingEntry)
		e.CreateAttr("source", a.Source.String())
		e.CreateAttr("target", a.Target.String())
	}
	return mapping
}
