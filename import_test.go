package omsvalues

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ijknabla/omsvalues/cref"
)

const inlineBindings = `<ssd:Component name="gain">
  <ssd:ParameterBindings>
    <ssd:ParameterBinding>
      <ssd:ParameterValues>
        <ssv:ParameterSet version="1.0" name="parameters">
          <ssv:Parameters>
            <ssv:Parameter name="k"><ssv:Real value="2.5"/></ssv:Parameter>
            <ssv:Parameter name="n"><ssv:Integer value="7"/></ssv:Parameter>
            <ssv:Parameter name="label"><ssv:String value="ignored"/></ssv:Parameter>
          </ssv:Parameters>
        </ssv:ParameterSet>
      </ssd:ParameterValues>
    </ssd:ParameterBinding>
    <ssd:ParameterBinding>
      <ssd:ParameterValues>
        <ssv:ParameterSet version="1.0" name="tuning">
          <ssv:Parameters>
            <ssv:Parameter name="p"><ssv:Boolean value="1"/></ssv:Parameter>
          </ssv:Parameters>
        </ssv:ParameterSet>
      </ssd:ParameterValues>
      <ssd:ParameterMapping>
        <ssm:ParameterMapping version="1.0">
          <ssm:MappingEntry source="p" target="sys.flag">
            <ssc:LinearTransformation factor="1" offset="0"/>
          </ssm:MappingEntry>
        </ssm:ParameterMapping>
      </ssd:ParameterMapping>
    </ssd:ParameterBinding>
  </ssd:ParameterBindings>
</ssd:Component>`

func TestImportFromSnapshot_Inline(t *testing.T) {
	var logs bytes.Buffer
	v := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	require.NoError(t, v.ImportFromSnapshot(parseFragment(t, inlineBindings), "1.0", nil))

	assert.Equal(t, names("k", "n"), v.Start.Names())
	require.Len(t, v.Resources, 1)
	r := v.Resources[0]
	assert.Equal(t, "tuning", r.Name)
	assert.False(t, r.Linked)

	flag, err := v.GetBoolean(cref.MustParse("sys.flag"))
	require.NoError(t, err)
	assert.True(t, flag)

	assert.Contains(t, logs.String(), "skipping parameter of unsupported type")
	assert.Contains(t, logs.String(), "mapping transformation is not applied")
}

func TestImportFromSnapshot_BindingsElement(t *testing.T) {
	component := parseFragment(t, inlineBindings)
	bindings := component.SelectElement("ParameterBindings")

	v := New()
	require.NoError(t, v.ImportFromSnapshot(bindings, "Draft20180219", nil))
	assert.Equal(t, 2, v.Start.Len())
}

func TestImportFromSnapshot_NoBindings(t *testing.T) {
	v := New()
	require.NoError(t, v.ImportFromSnapshot(parseFragment(t, `<ssd:Component name="x"/>`), "1.0", nil))
	assert.False(t, v.HasResources())
}

func TestImportFromSnapshot_Linked(t *testing.T) {
	snapshot := NewMemSnapshot()
	require.NoError(t, snapshot.WriteResource("resources/gains.ssv", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ssv:ParameterSet version="1.0" name="gains">
  <ssv:Parameters>
    <ssv:Parameter name="gain"><ssv:Real value="4"/></ssv:Parameter>
  </ssv:Parameters>
</ssv:ParameterSet>`)))
	require.NoError(t, snapshot.WriteResource("resources/gains.ssm", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<ssm:ParameterMapping version="1.0">
  <ssm:MappingEntry source="gain" target="amp"/>
</ssm:ParameterMapping>`)))

	v := New()
	err := v.ImportFromSnapshot(parseFragment(t, `<ssd:ParameterBindings>
  <ssd:ParameterBinding source="resources/gains.ssv">
    <ssd:ParameterMapping source="resources/gains.ssm"/>
  </ssd:ParameterBinding>
</ssd:ParameterBindings>`), "1.0", snapshot)
	require.NoError(t, err)

	require.Len(t, v.Resources, 1)
	r := v.Resources[0]
	assert.Equal(t, "resources/gains.ssv", r.Name)
	assert.True(t, r.Linked)
	assert.Equal(t, "resources/gains.ssm", r.SSMFile)

	res, err := v.Lookup(cref.MustParse("amp"), false, StateVirgin)
	require.NoError(t, err)
	assert.Equal(t, "resources:resources/gains.ssv#gain", res.SourceName())
}

func TestImportFromSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		location string
	}{
		{
			name:     "binding without values",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding/></ssd:ParameterBindings>`,
			location: "ParameterBinding[1]",
		},
		{
			name: "values without set",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding>
  <ssd:ParameterValues/></ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name: "bad literal",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"><ssv:Parameters>
    <ssv:Parameter name="k"><ssv:Real value="fast"/></ssv:Parameter>
  </ssv:Parameters></ssv:ParameterSet>
</ssd:ParameterValues></ssd:ParameterBinding></ssd:ParameterBindings>`,
			location: "Parameter[1]",
		},
		{
			name: "parameter without name",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"><ssv:Parameters>
    <ssv:Parameter><ssv:Real value="1"/></ssv:Parameter>
  </ssv:Parameters></ssv:ParameterSet>
</ssd:ParameterValues></ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name: "invalid parameter name",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"><ssv:Parameters>
    <ssv:Parameter name="a..b"><ssv:Real value="1"/></ssv:Parameter>
  </ssv:Parameters></ssv:ParameterSet>
</ssd:ParameterValues></ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name: "parameter without value element",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"><ssv:Parameters>
    <ssv:Parameter name="k"/>
  </ssv:Parameters></ssv:ParameterSet>
</ssd:ParameterValues></ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name: "declared twice with different types",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"><ssv:Parameters>
    <ssv:Parameter name="k"><ssv:Real value="1"/></ssv:Parameter>
    <ssv:Parameter name="k"><ssv:Integer value="1"/></ssv:Parameter>
  </ssv:Parameters></ssv:ParameterSet>
</ssd:ParameterValues></ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name: "mapping entry without target",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding><ssd:ParameterValues>
  <ssv:ParameterSet name="s"/></ssd:ParameterValues>
  <ssd:ParameterMapping><ssm:ParameterMapping><ssm:MappingEntry source="p"/></ssm:ParameterMapping></ssd:ParameterMapping>
</ssd:ParameterBinding></ssd:ParameterBindings>`,
		},
		{
			name:     "referenced document missing",
			fragment: `<ssd:ParameterBindings><ssd:ParameterBinding source="resources/missing.ssv"/></ssd:ParameterBindings>`,
			location: "resources/missing.ssv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			err := v.ImportFromSnapshot(parseFragment(t, tt.fragment), "1.0", NewMemSnapshot())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedFragment), "got %v", err)

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.NotEmpty(t, e.Location)
			if tt.location != "" {
				assert.Contains(t, e.Location, tt.location)
			}
			assert.False(t, v.HasResources(), "nothing is committed")
		})
	}
}

func TestImportFromSnapshot_UnsupportedVersion(t *testing.T) {
	v := New()
	err := v.ImportFromSnapshot(parseFragment(t, inlineBindings), "2.0", nil)
	assert.True(t, errors.Is(err, ErrMalformedFragment))
	assert.Contains(t, err.Error(), `unsupported SSP version "2.0"`)
}

func TestImportFromSnapshot_AllOrNothing(t *testing.T) {
	v := New()
	require.NoError(t, v.SetReal(cref.MustParse("keep"), 1))

	err := v.ImportFromSnapshot(parseFragment(t, `<ssd:ParameterBindings>
  <ssd:ParameterBinding><ssd:ParameterValues><ssv:ParameterSet name="a"><ssv:Parameters>
    <ssv:Parameter name="fresh"><ssv:Real value="2"/></ssv:Parameter>
  </ssv:Parameters></ssv:ParameterSet></ssd:ParameterValues></ssd:ParameterBinding>
  <ssd:ParameterBinding source="resources/missing.ssv"/>
</ssd:ParameterBindings>`), "1.0", NewMemSnapshot())
	require.Error(t, err)

	assert.Equal(t, names("keep"), v.Start.Names())
	assert.Empty(t, v.Resources)
}

func TestImportFromSnapshot_TypeConflictWithStart(t *testing.T) {
	v := New()
	require.NoError(t, v.SetInteger(cref.MustParse("k"), 1))

	err := v.ImportFromSnapshot(parseFragment(t, inlineBindings), "1.0", nil)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	n, err := v.GetInteger(cref.MustParse("k"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, v.Resources)
}

func TestImportResource(t *testing.T) {
	snapshot := NewMemSnapshot()
	writeSet := func(value string) {
		require.NoError(t, snapshot.WriteResource("resources/a.ssv", []byte(`<ssv:ParameterSet name="a"><ssv:Parameters>
  <ssv:Parameter name="p"><ssv:Real value="`+value+`"/></ssv:Parameter>
</ssv:Parameters></ssv:ParameterSet>`)))
	}
	writeSet("1")
	require.NoError(t, snapshot.WriteResource("resources/a.ssm", []byte(`<ssm:ParameterMapping>
  <ssm:MappingEntry source="p" target="sys.k"/>
</ssm:ParameterMapping>`)))

	v := New()
	require.NoError(t, v.ImportResource(snapshot, "resources/a.ssv", "resources/a.ssm"))
	got, err := v.GetReal(cref.MustParse("sys.k"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	// Importing the same file again repopulates the existing resource
	writeSet("2")
	require.NoError(t, v.ImportResource(snapshot, "resources/a.ssv", ""))
	require.Len(t, v.Resources, 1)
	assert.True(t, v.Resources[0].Linked)
	assert.Equal(t, "", v.Resources[0].SSMFile)

	got, err = v.GetReal(cref.MustParse("p"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	err = v.ImportResource(snapshot, "resources/none.ssv", "")
	assert.True(t, errors.Is(err, ErrMalformedFragment))
	assert.True(t, errors.Is(err, ErrResourceNotFound), "the cause is kept")
}

func TestImportResource_WrongRoot(t *testing.T) {
	snapshot := NewMemSnapshot()
	require.NoError(t, snapshot.WriteResource("a.ssv", []byte(`<ssm:ParameterMapping/>`)))
	require.NoError(t, snapshot.WriteResource("bad.ssv", []byte(`<unclosed`)))

	v := New()
	err := v.ImportResource(snapshot, "a.ssv", "")
	assert.True(t, errors.Is(err, ErrMalformedFragment))
	assert.Contains(t, err.Error(), "expected ParameterSet")

	err = v.ImportResource(snapshot, "bad.ssv", "")
	assert.True(t, errors.Is(err, ErrMalformedFragment))
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := populated(t)
	snapshot := NewMemSnapshot()

	doc := etree.NewDocument()
	component := doc.CreateElement("ssd:Component")
	require.NoError(t, src.ExportParameterBindings(component, snapshot))
	xml, err := doc.WriteToString()
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.ImportFromSnapshot(parseFragment(t, xml), "1.0", snapshot))

	for _, n := range names("k", "amp", "z", "n", "sys.flag") {
		want, err := src.Get(n)
		require.NoError(t, err, n.String())
		got, err := dst.Get(n)
		require.NoError(t, err, n.String())
		assert.True(t, want.Equal(got), "%s: want %s, got %s", n, want, got)
	}

	require.Len(t, dst.Resources, 3)
	for i, r := range src.Resources {
		assert.Equal(t, r.Name, dst.Resources[i].Name)
		assert.Equal(t, r.Linked, dst.Resources[i].Linked)
		assert.Equal(t, r.SSMFile, dst.Resources[i].SSMFile)
		assert.Equal(t, r.Aliases.Entries(), dst.Resources[i].Aliases.Entries())
	}

	// Exporting the imported store reproduces the fragment
	again := etree.NewDocument()
	require.NoError(t, dst.ExportParameterBindings(again.CreateElement("ssd:Component"), NewMemSnapshot()))
	xml2, err := again.WriteToString()
	require.NoError(t, err)
	assert.Equal(t, xml, xml2)
}

func TestExportImport_ParentOutranksChildren(t *testing.T) {
	parent := newResource(t, "parent", map[string]Value{"x": Real(1), "p": Real(5)},
		map[string]string{"p": "sys.k"})
	child := newResource(t, "child",
		map[string]Value{"x": Real(2), "y": Real(3), "q": Real(6)},
		map[string]string{"q": "sys.k"})
	child.Aliases.Add(cref.MustParse("q"), cref.MustParse("sys.other"))
	parent.AddInline(child)

	src := New()
	src.AddResource(parent)

	snapshot := NewMemSnapshot()
	doc := etree.NewDocument()
	require.NoError(t, src.ExportParameterBindings(doc.CreateElement("ssd:Component"), snapshot))
	xml, err := doc.WriteToString()
	require.NoError(t, err)

	dst := New()
	require.NoError(t, dst.ImportFromSnapshot(parseFragment(t, xml), "1.0", snapshot))
	require.Len(t, dst.Resources, 2, "nested resources come back as siblings")

	for _, n := range names("x", "y", "sys.k", "sys.other") {
		want, err := src.Get(n)
		require.NoError(t, err, n.String())
		got, err := dst.Get(n)
		require.NoError(t, err, n.String())
		assert.True(t, want.Equal(got), "%s: want %s, got %s", n, want, got)
	}

	x, err := dst.Lookup(cref.MustParse("x"), false, StateVirgin)
	require.NoError(t, err)
	assert.Equal(t, "parent", x.Resource)

	exported := dst.Resources[1]
	assert.False(t, exported.Values.Has(cref.MustParse("x")), "shadowed by the parent")
	assert.Equal(t, []Alias{{Source: cref.MustParse("q"), Target: cref.MustParse("sys.other")}},
		exported.Aliases.Entries())
	assert.True(t, exported.Values.Has(cref.MustParse("q")), "still feeds sys.other")

	assert.True(t, child.Values.Has(cref.MustParse("x")), "the store itself is not changed by export")
}
