package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
)

func newStructureTransformer() *DescriptionStructureTransformer {
	return NewDescriptionStructureTransformer(config.DefaultConfig().DescriptionStructure)
}

func TestDescriptionStructure_ExtractsBacktickQuotedExample(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"name":{
		"description": "The object name.\n\nExample: ` + "`" + ` \"acmecorp-web\" ` + "`" + `"
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	name, _ := properties.GetObject("name")
	description, _ := name.GetString("description")
	example, _ := name.GetString("x-ves-example")

	assert.Equal(t, "The object name.", description)
	assert.Equal(t, "acmecorp-web", example)
	assert.Equal(t, 1, tr.Stats().ExamplesExtracted)
}

func TestDescriptionStructure_ExtractsBareBacktickExample(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"port":{
		"description": "Listen port.\nExample: ` + "`8080`" + `"
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	port, _ := properties.GetObject("port")
	example, _ := port.GetString("x-ves-example")
	assert.Equal(t, "8080", example)
}

func TestDescriptionStructure_ExtractsXExampleLine(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"host":{
		"description": "Hostname to use.\nx-example: \"www.example.com\""
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	host, _ := properties.GetObject("host")
	description, _ := host.GetString("description")
	example, _ := host.GetString("x-ves-example")

	assert.Equal(t, "Hostname to use.", description)
	assert.Equal(t, "www.example.com", example)
}

func TestDescriptionStructure_ExistingExampleWins(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"name":{
		"description": "The name.\nExample: ` + "`extracted`" + `",
		"x-ves-example": "existing"
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	name, _ := properties.GetObject("name")
	example, _ := name.GetString("x-ves-example")
	description, _ := name.GetString("description")

	// The embedded section is still removed from the prose.
	assert.Equal(t, "existing", example)
	assert.Equal(t, "The name.", description)
}

func TestDescriptionStructure_ExtractsValidationRules(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"name":{
		"description": "The name.\nValidation Rules:\n  ves.io.schema.rules.string.max_len: 64\n  ves.io.schema.rules.string.min_len: 1\n"
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	name, _ := properties.GetObject("name")
	description, _ := name.GetString("description")
	rules, ok := name.GetObject("x-validation-rules")
	require.True(t, ok)

	assert.Equal(t, "The name.", description)
	assert.Equal(t, []string{
		"ves.io.schema.rules.string.max_len",
		"ves.io.schema.rules.string.min_len",
	}, rules.Keys())
	maxLen, _ := rules.GetString("ves.io.schema.rules.string.max_len")
	assert.Equal(t, "64", maxLen)
	assert.Equal(t, 1, tr.Stats().ValidationRulesExtracted)
}

func TestDescriptionStructure_NormalizesWhitespace(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"choice":{
		"description": "    Pick one:\n    - first option\n      - nested detail\n\n\n\n    Done.  Trailing."
	}}}`)

	out := tr.Transform(doc)

	properties, _ := out.GetObject("properties")
	choice, _ := properties.GetObject("choice")
	description, _ := choice.GetString("description")

	// Regular lines are trimmed, bullets re-indent in two-space units,
	// blank runs collapse, and double sentence spacing normalizes.
	assert.Equal(t, "Pick one:\n    - first option\n      - nested detail\n\nDone. Trailing.", description)
}

func TestDescriptionStructure_PreservedFieldsUntouched(t *testing.T) {
	cfg := config.DefaultConfig().DescriptionStructure
	cfg.PreserveFields = []string{"x-raw"}
	tr := NewDescriptionStructureTransformer(cfg)

	doc := mustDecode(t, `{"node":{
		"x-raw": {"description": "   keep   me   "},
		"description": "   clean me   "
	}}`)

	out := tr.Transform(doc)

	node, _ := out.GetObject("node")
	raw, _ := node.GetObject("x-raw")
	rawDescription, _ := raw.GetString("description")
	description, _ := node.GetString("description")

	assert.Equal(t, "   keep   me   ", rawDescription)
	assert.Equal(t, "clean me", description)
}

func TestDescriptionStructure_Idempotent(t *testing.T) {
	tr := newStructureTransformer()

	doc := mustDecode(t, `{"properties":{"name":{
		"description": "  The name.\nExample: ` + "`web`" + `\nValidation Rules:\n  max_len: 64\n"
	}}}`)

	once := tr.Transform(doc)
	onceOut := encodeString(t, once)

	twice := tr.Transform(once)
	assert.Equal(t, onceOut, encodeString(t, twice))
}
