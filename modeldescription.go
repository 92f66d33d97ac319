package omsvalues

import (
	"fmt"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/spf13/afero"

	"github.com/ijknabla/omsvalues/cref"
)

// ModelDescriptionFile is the file name of an FMU's metadata document.
const ModelDescriptionFile = "modelDescription.xml"

// fmi3Types maps FMI 3.0 variable elements onto the stored types.
var fmi3Types = map[string]Type{
	"Float32": TypeReal,
	"Float64": TypeReal,
	"Int8":    TypeInteger,
	"UInt8":   TypeInteger,
	"Int16":   TypeInteger,
	"UInt16":  TypeInteger,
	"Int32":   TypeInteger,
	"UInt32":  TypeInteger,
	"Int64":   TypeInteger,
	"UInt64":  TypeInteger,
	"Boolean": TypeBoolean,
}

// ParseModelDescription reads dir/modelDescription.xml from fs and replaces
// the declared defaults with the start values it declares. Start and
// runtime values are not touched, so repeated calls are idempotent.
// Both FMI 2.0 (ScalarVariable) and FMI 3.0 (Float64, Int32, ...) variable
// lists are understood.
func (v *Values) ParseModelDescription(fs afero.Fs, dir string) error {
	file := filepath.Join(dir, ModelDescriptionFile)
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return fmt.Errorf("read model description %s: %w", file, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return &Error{Code: ErrCodeMalformedFragment, Location: file, Message: "invalid XML", Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "fmiModelDescription" {
		return malformed(file, "missing fmiModelDescription root element")
	}

	defaults := NewLayer()
	if vars := childElement(root, "ModelVariables"); vars != nil {
		for i, sv := range vars.ChildElements() {
			loc := fmt.Sprintf("%s: %s[%d]", file, sv.GetPath(), i+1)
			name, val, ok, err := parseVariable(sv, loc)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := defaults.Set(name, val); err != nil {
				return &Error{Code: ErrCodeMalformedFragment, Name: name, Location: loc, Message: "declared twice", Err: err}
			}
		}
	}

	v.Defaults = defaults
	v.logger.Debug("parsed model description", "file", file, "defaults", defaults.Len())
	return nil
}

// parseVariable extracts the start value of one model variable. ok is false
// for variables without a start value or of an unsupported type.
func parseVariable(sv *etree.Element, loc string) (cref.Name, Value, bool, error) {
	var typ Type
	var holder *etree.Element
	if sv.Tag == "ScalarVariable" {
		for _, c := range sv.ChildElements() {
			if t, ok := ParseType(c.Tag); ok {
				typ, holder = t, c
				break
			}
		}
	} else if t, ok := fmi3Types[sv.Tag]; ok && childElement(sv, "Dimension") == nil {
		typ, holder = t, sv
	}
	if holder == nil {
		return cref.Name{}, Value{}, false, nil
	}
	start := holder.SelectAttr("start")
	if start == nil {
		return cref.Name{}, Value{}, false, nil
	}

	attr := sv.SelectAttr("name")
	if attr == nil {
		return cref.Name{}, Value{}, false, malformed(loc, "variable without name")
	}
	name, err := cref.Parse(attr.Value)
	if err != nil || name.IsEmpty() {
		return cref.Name{}, Value{}, false, &Error{Code: ErrCodeMalformedFragment, Location: loc, Message: "invalid variable name", Err: err}
	}
	val, err := ParseValue(typ, start.Value)
	if err != nil {
		return cref.Name{}, Value{}, false, &Error{Code: ErrCodeMalformedFragment, Name: name, Location: loc, Err: err}
	}
	return name, val, true, nil
}
