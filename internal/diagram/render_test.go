package diagram

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

func TestMermaid_Mappings(t *testing.T) {
	g, err := Project(index.Build(utilityCollection()), ViewMappings)
	require.NoError(t, err)

	out := Mermaid(g)

	assert.True(t, strings.HasPrefix(out, "flowchart LR\n"))
	assert.Contains(t, out, `n0["NYC Utility Standards<br/>New York City<br/>1 property"]`)
	assert.Contains(t, out, "n0 --> n2", "ownership edges point from document to property")
	assert.Contains(t, out, "n3 -.->|96%| n5")
	assert.Contains(t, out, "classDef global_property")
	assert.Contains(t, out, "class n5,n6 global_property")
	assert.Contains(t, out, "linkStyle 5 stroke:#ea580c")
}

func TestMermaid_EscapesLabels(t *testing.T) {
	g := &Graph{Mode: ViewHierarchy}
	g.addNode("schema:x", "say \"hi\"\nline|two", ClassGlobal)

	assert.Contains(t, Mermaid(g), `n0["say #quot;hi#quot;<br/>line#124;two"]`)
}

func TestMermaid_Empty(t *testing.T) {
	out := Mermaid(&Graph{Mode: ViewHierarchy})
	assert.Equal(t, "flowchart TD\n    empty[\"No schemas\"]\n", out)
}

func TestDOT_Hierarchy(t *testing.T) {
	g, err := Project(index.Build(utilityCollection()), ViewHierarchy)
	require.NoError(t, err)

	out := DOT(g)

	assert.True(t, strings.HasPrefix(out, "digraph \"hierarchy\" {\n  rankdir=TB;\n"))
	assert.Contains(t, out, `"schema:G" [label="Utility Clearances v1.0.0\n2 properties\n2 sources" style=filled fillcolor="#dbeafe"];`)
	assert.Contains(t, out, `"schema:G" -> "schema:G2" [style=solid];`)
	assert.Contains(t, out, `"schema:NYC" -> "schema:G" [style=dashed];`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestDOT_MappingColors(t *testing.T) {
	g, err := Project(index.Build(utilityCollection()), ViewMappings)
	require.NoError(t, err)

	assert.Contains(t, DOT(g), `"property:p_clear" -> "property:p_horiz" [label="70%" style=dashed color="#ea580c"];`)
}

func TestJSON(t *testing.T) {
	data, err := JSON(&Graph{Mode: ViewJurisdictions})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "jurisdictions", decoded["mode"])
	assert.Equal(t, []any{}, decoded["nodes"])
	assert.Equal(t, []any{}, decoded["edges"])
}

func TestRender(t *testing.T) {
	g, err := Project(index.Build(utilityCollection()), ViewJurisdictions)
	require.NoError(t, err)

	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, g, f), string(f))
		assert.NotEmpty(t, buf.String(), string(f))
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, g, Format("svg")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("DOT")
	require.NoError(t, err)
	assert.Equal(t, FormatDOT, f)
	assert.Equal(t, ".dot", f.Extension())

	_, err = ParseFormat("png")
	assert.Error(t, err)
}

func TestGraphHelpers(t *testing.T) {
	g := &Graph{}
	assert.True(t, g.IsEmpty())
	assert.Nil(t, g.Node(SchemaNodeID("missing")))
	assert.Equal(t, "jurisdiction:Global", JurisdictionNodeID(model.GlobalJurisdiction))
}
