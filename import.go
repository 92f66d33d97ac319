package omsvalues

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/ijknabla/omsvalues/cref"
)

// Supported SSP versions for ImportFromSnapshot.
var supportedVersions = map[string]bool{
	"1.0":           true,
	"Draft20180219": true,
}

// ImportFromSnapshot reads the ssd:ParameterBindings found in node (or node
// itself when it is the bindings element). A binding without a source
// attribute and without a parameter mapping fills the start values; every
// other binding becomes a new resource. Documents referenced by source
// attributes are read from snapshot. Nothing is changed if any binding is
// malformed.
func (v *Values) ImportFromSnapshot(node *etree.Element, sspVersion string, snapshot Snapshot) error {
	if !supportedVersions[sspVersion] {
		return malformed(node.GetPath(), "unsupported SSP version %q", sspVersion)
	}
	bindings := node
	if bindings.Tag != "ParameterBindings" {
		bindings = childElement(node, "ParameterBindings")
		if bindings == nil {
			return nil
		}
	}

	start := NewLayer()
	var resources []*Resource
	for i, b := range bindings.ChildElements() {
		if b.Tag != "ParameterBinding" {
			v.logger.Warn("ignoring unexpected element in parameter bindings", "element", b.FullTag())
			continue
		}
		loc := fmt.Sprintf("%s[%d]", b.GetPath(), i+1)
		r, err := v.importBinding(b, loc, snapshot)
		if err != nil {
			return err
		}
		if r == nil {
			continue
		}
		if r.Linked || r.SSMFile != "" || childElement(b, "ParameterMapping") != nil {
			resources = append(resources, r)
			continue
		}
		for _, name := range r.Values.Names() {
			val, _ := r.Values.Get(name)
			if err := start.Set(name, val); err != nil {
				return err
			}
		}
	}

	for _, name := range start.Names() {
		val, _ := start.Get(name)
		if old, ok := v.Start.Get(name); ok && old.Type() != val.Type() {
			return typeMismatch(name, old.Type(), val.Type())
		}
	}
	for _, name := range start.Names() {
		val, _ := start.Get(name)
		v.Start.put(name, val)
	}
	for _, r := range resources {
		v.AddResource(r)
	}
	v.logger.Debug("imported parameter bindings",
		"start", start.Len(), "resources", len(resources), "version", sspVersion)
	return nil
}

func (v *Values) importBinding(b *etree.Element, loc string, snapshot Snapshot) (*Resource, error) {
	source := b.SelectAttrValue("source", "")

	var set *etree.Element
	setLoc := loc
	if source != "" {
		root, err := readDocument(snapshot, source)
		if err != nil {
			return nil, err
		}
		set, setLoc = root, source
	} else {
		values := childElement(b, "ParameterValues")
		if values == nil {
			return nil, malformed(loc, "binding has neither a source nor inline parameter values")
		}
		set = childElement(values, "ParameterSet")
		if set == nil {
			return nil, malformed(loc, "inline parameter values without a parameter set")
		}
	}

	name, layer, err := v.parseParameterSet(set, setLoc)
	if err != nil {
		return nil, err
	}
	r := NewResource(name, source != "")
	if source != "" {
		r.Name = source
	}
	r.Values = layer

	mapping := childElement(b, "ParameterMapping")
	if mapping == nil {
		return r, nil
	}
	if ssm := mapping.SelectAttrValue("source", ""); ssm != "" {
		root, err := readDocument(snapshot, ssm)
		if err != nil {
			return nil, err
		}
		if r.Aliases, err = v.parseParameterMapping(root, ssm); err != nil {
			return nil, err
		}
		r.SSMFile = ssm
		return r, nil
	}
	if inline := childElement(mapping, "ParameterMapping"); inline != nil {
		if r.Aliases, err = v.parseParameterMapping(inline, loc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ImportResource reads the parameter set ssvFile, and the mapping ssmFile
// when not empty, from snapshot into the linked resource named ssvFile. An
// existing resource with that name is repopulated; otherwise a new one is
// attached.
func (v *Values) ImportResource(snapshot Snapshot, ssvFile, ssmFile string) error {
	root, err := readDocument(snapshot, ssvFile)
	if err != nil {
		return err
	}
	_, layer, err := v.parseParameterSet(root, ssvFile)
	if err != nil {
		return err
	}
	aliases := NewAliasTable()
	if ssmFile != "" {
		mroot, err := readDocument(snapshot, ssmFile)
		if err != nil {
			return err
		}
		if aliases, err = v.parseParameterMapping(mroot, ssmFile); err != nil {
			return err
		}
	}

	r, ok := v.Resource(ssvFile)
	if !ok {
		r = NewResource(ssvFile, true)
		v.AddResource(r)
	}
	r.Values = layer
	r.Aliases = aliases
	r.SSMFile = ssmFile
	r.Linked = true
	v.logger.Debug("imported resource", "ssv", ssvFile, "ssm", ssmFile,
		"values", layer.Len(), "aliases", aliases.Len())
	return nil
}

func readDocument(snapshot Snapshot, name string) (*etree.Element, error) {
	if snapshot == nil {
		return nil, malformed(name, "referenced document cannot be read without a snapshot")
	}
	data, err := snapshot.ReadResource(name)
	if err != nil {
		return nil, &Error{Code: ErrCodeMalformedFragment, Location: name, Message: "cannot read referenced document", Err: err}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &Error{Code: ErrCodeMalformedFragment, Location: name, Message: "invalid XML", Err: err}
	}
	root := doc.Root()
	if root == nil {
		return nil, malformed(name, "document has no root element")
	}
	return root, nil
}

// parseParameterSet reads an ssv:ParameterSet. Parameters of types other
// than Real, Integer and Boolean are skipped with a warning.
func (v *Values) parseParameterSet(set *etree.Element, file string) (string, *Layer, error) {
	if set.Tag != "ParameterSet" {
		return "", nil, malformed(file, "expected ParameterSet, found %s", set.FullTag())
	}
	layer := NewLayer()
	params := childElement(set, "Parameters")
	if params == nil {
		return set.SelectAttrValue("name", ""), layer, nil
	}
	for i, p := range params.ChildElements() {
		loc := fmt.Sprintf("%s: %s[%d]", file, p.GetPath(), i+1)
		if p.Tag != "Parameter" {
			v.logger.Warn("ignoring unexpected element in parameter set", "element", p.FullTag(), "location", loc)
			continue
		}
		attr := p.SelectAttr("name")
		if attr == nil {
			return "", nil, malformed(loc, "parameter without name")
		}
		name, err := cref.Parse(attr.Value)
		if err != nil || name.IsEmpty() {
			return "", nil, &Error{Code: ErrCodeMalformedFragment, Location: loc, Message: "invalid parameter name", Err: err}
		}
		typed := p.ChildElements()
		if len(typed) == 0 {
			return "", nil, malformed(loc, "parameter %q has no value element", name)
		}
		t, ok := ParseType(typed[0].Tag)
		if !ok {
			v.logger.Warn("skipping parameter of unsupported type",
				"name", name.String(), "type", typed[0].Tag, "location", loc)
			continue
		}
		literal := typed[0].SelectAttr("value")
		if literal == nil {
			return "", nil, malformed(loc, "parameter %q has no value attribute", name)
		}
		val, err := ParseValue(t, literal.Value)
		if err != nil {
			return "", nil, &Error{Code: ErrCodeMalformedFragment, Name: name, Location: loc, Err: err}
		}
		if err := layer.Set(name, val); err != nil {
			return "", nil, &Error{Code: ErrCodeMalformedFragment, Name: name, Location: loc, Message: "declared twice", Err: err}
		}
	}
	return set.SelectAttrValue("name", ""), layer, nil
}

// parseParameterMapping reads an ssm:ParameterMapping. Transformations on
// mapping entries are not applied and only logged.
func (v *Values) parseParameterMapping(mapping *etree.Element, file string) (*AliasTable, error) {
	if mapping.Tag != "ParameterMapping" {
		return nil, malformed(file, "expected ParameterMapping, found %s", mapping.FullTag())
	}
	aliases := NewAliasTable()
	for i, e := range mapping.ChildElements() {
		loc := fmt.Sprintf("%s: %s[%d]", file, e.GetPath(), i+1)
		if e.Tag != "MappingEntry" {
			v.logger.Warn("ignoring unexpected element in parameter mapping", "element", e.FullTag(), "location", loc)
			continue
		}
		src, err := requiredName(e, "source", loc)
		if err != nil {
			return nil, err
		}
		tgt, err := requiredName(e, "target", loc)
		if err != nil {
			return nil, err
		}
		if len(e.ChildElements()) > 0 {
			v.logger.Warn("mapping transformation is not applied", "source", src.String(), "target", tgt.String(), "location", loc)
		}
		aliases.Add(src, tgt)
	}
	return aliases, nil
}

func requiredName(e *etree.Element, attr, loc string) (cref.Name, error) {
	a := e.SelectAttr(attr)
	if a == nil {
		return cref.Name{}, malformed(loc, "mapping entry without %s", attr)
	}
	name, err := cref.Parse(a.Value)
	if err != nil || name.IsEmpty() {
		return cref.Name{}, &Error{Code: ErrCodeMalformedFragment, Location: loc, Message: "invalid " + attr + " name", Err: err}
	}
	return name, nil
}

// childElement returns the first child whose local name is tag, ignoring
// namespace prefixes.
func childElement(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}
