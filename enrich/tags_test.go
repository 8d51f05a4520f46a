package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

func newTagGenerator(t *testing.T) *TagGenerator {
	t.Helper()
	generator, err := NewTagGenerator(config.DefaultConfig().Tags)
	require.NoError(t, err)
	return generator
}

func operationTags(t *testing.T, doc *document.Object, path, method string) document.Array {
	t.Helper()
	paths, _ := doc.GetObject("paths")
	pathItem, _ := paths.GetObject(path)
	operation, ok := pathItem.GetObject(method)
	require.True(t, ok)
	tags, _ := operation.GetArray("tags")
	return tags
}

func TestTagGenerator_AssignsDomainTag(t *testing.T) {
	generator := newTagGenerator(t)

	doc := mustDecode(t, `{"paths":{
		"/api/config/namespaces/{ns}/http_loadbalancer/{name}": {
			"get": {},
			"put": {"tags": ["custom"]}
		}
	}}`)

	generator.GenerateTags(doc)

	getTags := operationTags(t, doc, "/api/config/namespaces/{ns}/http_loadbalancer/{name}", "get")
	require.Len(t, getTags, 1)
	assert.Equal(t, "Load Balancing", getTags[0])

	// The domain tag is prepended, existing tags stay.
	putTags := operationTags(t, doc, "/api/config/namespaces/{ns}/http_loadbalancer/{name}", "put")
	require.Len(t, putTags, 2)
	assert.Equal(t, "Load Balancing", putTags[0])
	assert.Equal(t, "custom", putTags[1])

	assert.Equal(t, 2, generator.Stats().OperationsTagged)
}

func TestTagGenerator_FirstMatchWins(t *testing.T) {
	generator := newTagGenerator(t)

	// Identity precedes Networking in the table, so the namespace
	// segment claims the path before virtual_site can.
	doc := mustDecode(t, `{"paths":{"/namespace/{ns}/virtual_site/{name}":{"get":{}}}}`)
	generator.GenerateTags(doc)

	tags := operationTags(t, doc, "/namespace/{ns}/virtual_site/{name}", "get")
	require.Len(t, tags, 1)
	assert.Equal(t, "Identity", tags[0])
}

func TestTagGenerator_FallbackTag(t *testing.T) {
	generator := newTagGenerator(t)

	doc := mustDecode(t, `{"paths":{"/totally/unknown":{"get":{}}}}`)
	generator.GenerateTags(doc)

	tags := operationTags(t, doc, "/totally/unknown", "get")
	require.Len(t, tags, 1)
	assert.Equal(t, "Other", tags[0])
}

func TestTagGenerator_NoDuplicateTag(t *testing.T) {
	generator := newTagGenerator(t)

	doc := mustDecode(t, `{"paths":{"/waf/{name}":{"get":{"tags":["Security"]}}}}`)
	generator.GenerateTags(doc)

	tags := operationTags(t, doc, "/waf/{name}", "get")
	assert.Len(t, tags, 1)
	assert.Equal(t, 0, generator.Stats().OperationsTagged)
}

func TestTagGenerator_TopLevelMetadata(t *testing.T) {
	generator := newTagGenerator(t)

	doc := mustDecode(t, `{
		"tags": [{"name": "legacy"}],
		"paths": {
			"/waf/{name}": {"get": {}},
			"/nginx/instances": {"get": {}}
		}
	}`)

	generator.GenerateTags(doc)

	tags, ok := doc.GetArray("tags")
	require.True(t, ok)
	require.Len(t, tags, 3)

	// Sorted by name; known tags carry descriptions, unknown ones do not.
	first := tags[0].(*document.Object)
	name, _ := first.GetString("name")
	assert.Equal(t, "NGINX", name)
	description, _ := first.GetString("description")
	assert.Equal(t, "NGINX One management and configuration", description)

	second := tags[1].(*document.Object)
	name, _ = second.GetString("name")
	assert.Equal(t, "Security", name)

	third := tags[2].(*document.Object)
	name, _ = third.GetString("name")
	assert.Equal(t, "legacy", name)
	assert.False(t, third.Has("description"))
}

func TestTagGenerator_CustomDefinitionOverlay(t *testing.T) {
	cfg := config.DefaultConfig().Tags
	cfg.Definitions = []config.TagDefinition{
		{Name: "NGINX", Description: "Custom NGINX docs"},
		{Name: "Edge", Description: "Edge ops", Patterns: []string{`/edge/`}},
	}
	generator, err := NewTagGenerator(cfg)
	require.NoError(t, err)

	doc := mustDecode(t, `{"paths":{"/edge/site":{"get":{}}}}`)
	generator.GenerateTags(doc)

	tags := operationTags(t, doc, "/edge/site", "get")
	require.Len(t, tags, 1)
	assert.Equal(t, "Edge", tags[0])
	assert.Equal(t, "Custom NGINX docs", generator.descriptionFor("NGINX"))
}

func TestTagGenerator_Idempotent(t *testing.T) {
	generator := newTagGenerator(t)

	doc := mustDecode(t, `{"paths":{"/waf/{name}":{"get":{},"post":{}}}}`)

	once := generator.GenerateTags(doc)
	onceOut := encodeString(t, once)

	twice := generator.GenerateTags(once)
	assert.Equal(t, onceOut, encodeString(t, twice))
	assert.Equal(t, 0, generator.Stats().OperationsTagged)
}
