package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

func newTestReconciler(cfg config.ReconciliationConfig) *ConstraintReconciler {
	r := NewConstraintReconciler(cfg)
	r.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func reconcileProp(t *testing.T, r *ConstraintReconciler, propJSON string) *document.Object {
	t.Helper()
	doc := mustDecode(t, `{"components":{"schemas":{"S":{"properties":{"p":`+propJSON+`}}}}}`)
	reconciled, _ := r.Reconcile(doc)
	components, _ := reconciled.GetObject("components")
	schemas, _ := components.GetObject("schemas")
	schema, _ := schemas.GetObject("S")
	properties, _ := schema.GetObject("properties")
	prop, ok := properties.GetObject("p")
	require.True(t, ok)
	return prop
}

func TestReconcile_ReplaceMode(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{
		"type": "string",
		"maxLength": 64,
		"x-discovered-max-length": 32,
		"x-discovered-sample-size": 120,
		"x-discovered-confidence": 0.95
	}`)

	maxLength, ok := document.Int(mustGet(prop, "maxLength"))
	require.True(t, ok)
	assert.Equal(t, int64(32), maxLength)

	// Audit trail records the replaced value and the reconciliation.
	original, ok := document.Int(mustGet(prop, "x-original-maxLength"))
	require.True(t, ok)
	assert.Equal(t, int64(64), original)
	reconciledFlag, _ := prop.Get("x-reconciled-from-discovery")
	assert.Equal(t, true, reconciledFlag)
	at, _ := prop.GetString("x-reconciled-at")
	assert.Equal(t, "2026-08-30T12:00:00Z", at)
	sample, ok := document.Int(mustGet(prop, "x-reconciled-sample-size"))
	require.True(t, ok)
	assert.Equal(t, int64(120), sample)

	// Consumed discovery keys are gone.
	assert.False(t, prop.Has("x-discovered-max-length"))
	assert.Equal(t, 1, r.Stats().Reconciled)
	assert.Equal(t, 1, r.Stats().Fields["maxLength"])
}

func mustGet(obj *document.Object, key string) document.Value {
	v, _ := obj.Get(key)
	return v
}

func TestReconcile_SampleSizeGate(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{
		"type": "string",
		"maxLength": 64,
		"x-discovered-max-length": 32,
		"x-discovered-sample-size": 3
	}`)

	// Gated node keeps everything untouched.
	maxLength, _ := document.Int(mustGet(prop, "maxLength"))
	assert.Equal(t, int64(64), maxLength)
	assert.True(t, prop.Has("x-discovered-max-length"))
	assert.False(t, prop.Has("x-reconciled-from-discovery"))
	assert.Equal(t, 1, r.Stats().Skipped)
	assert.Equal(t, 0, r.Stats().Reconciled)
}

func TestReconcile_ConfidenceGate(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{
		"type": "string",
		"x-discovered-pattern": "^[a-z]+$",
		"x-discovered-confidence": 0.5
	}`)

	assert.False(t, prop.Has("pattern"))
	assert.True(t, prop.Has("x-discovered-pattern"))
	assert.Equal(t, 1, r.Stats().Skipped)
}

func TestReconcile_MissingConfidenceDefaultsToFull(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{"type": "string", "x-discovered-format": "uuid"}`)

	format, _ := prop.GetString("format")
	assert.Equal(t, "uuid", format)
}

func TestReconcile_AddMissingMode(t *testing.T) {
	cfg := config.DefaultConfig().Reconciliation
	cfg.Mode = config.ModeAddMissing
	r := newTestReconciler(cfg)

	prop := reconcileProp(t, r, `{
		"type": "string",
		"maxLength": 64,
		"x-discovered-max-length": 32,
		"x-discovered-pattern": "^x"
	}`)

	// Published value kept, missing one filled.
	maxLength, _ := document.Int(mustGet(prop, "maxLength"))
	assert.Equal(t, int64(64), maxLength)
	pattern, _ := prop.GetString("pattern")
	assert.Equal(t, "^x", pattern)

	// Both discovery keys are consumed either way.
	assert.False(t, prop.Has("x-discovered-max-length"))
	assert.False(t, prop.Has("x-discovered-pattern"))
}

func TestReconcile_TightenMode(t *testing.T) {
	cfg := config.DefaultConfig().Reconciliation
	cfg.Mode = config.ModeTighten
	r := newTestReconciler(cfg)

	t.Run("tighter maxLength wins", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"maxLength": 64, "x-discovered-max-length": 32}`)
		maxLength, _ := document.Int(mustGet(prop, "maxLength"))
		assert.Equal(t, int64(32), maxLength)
	})

	t.Run("looser maxLength rejected", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"maxLength": 64, "x-discovered-max-length": 128}`)
		maxLength, _ := document.Int(mustGet(prop, "maxLength"))
		assert.Equal(t, int64(64), maxLength)
		assert.False(t, prop.Has("x-discovered-max-length"))
	})

	t.Run("absent published value filled", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"x-discovered-max-length": 32}`)
		maxLength, _ := document.Int(mustGet(prop, "maxLength"))
		assert.Equal(t, int64(32), maxLength)
	})

	t.Run("enum subset tightens", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"enum": ["a","b","c"], "x-discovered-enum-values": ["a","b"]}`)
		enum, _ := prop.GetArray("enum")
		assert.Len(t, enum, 2)
	})

	t.Run("enum superset rejected", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"enum": ["a"], "x-discovered-enum-values": ["a","b"]}`)
		enum, _ := prop.GetArray("enum")
		assert.Len(t, enum, 1)
	})

	t.Run("empty enum rejected", func(t *testing.T) {
		prop := reconcileProp(t, r, `{"enum": ["a","b","c"], "x-discovered-enum-values": []}`)
		enum, _ := prop.GetArray("enum")
		assert.Len(t, enum, 3)
		assert.False(t, prop.Has("x-discovered-enum-values"))
	})
}

func TestReconcile_EnumSpellingsBothPresent(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{
		"enum": ["OLD"],
		"x-discovered-enum-values": ["a","b"],
		"x-discovered-enum": ["c","d"]
	}`)

	// Both spellings map to enum in table order, so the x-discovered-enum
	// value lands last.
	enum, _ := prop.GetArray("enum")
	require.Len(t, enum, 2)
	assert.Equal(t, "c", enum[0])
	assert.Equal(t, "d", enum[1])

	assert.False(t, prop.Has("x-discovered-enum-values"))
	assert.False(t, prop.Has("x-discovered-enum"))
}

func TestReconcile_FieldRuleOverridesMode(t *testing.T) {
	cfg := config.DefaultConfig().Reconciliation
	cfg.FieldRules = map[string]config.FieldRule{
		"maxLength": {Mode: config.ModeAddMissing},
	}
	r := newTestReconciler(cfg)

	prop := reconcileProp(t, r, `{
		"maxLength": 64,
		"format": "uri",
		"x-discovered-max-length": 32,
		"x-discovered-format": "hostname"
	}`)

	// maxLength follows its add_missing rule, format follows replace.
	maxLength, _ := document.Int(mustGet(prop, "maxLength"))
	assert.Equal(t, int64(64), maxLength)
	format, _ := prop.GetString("format")
	assert.Equal(t, "hostname", format)
}

func TestReconcile_PreservesUnmappedDiscoveryKeys(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	prop := reconcileProp(t, r, `{
		"x-discovered-max-length": 32,
		"x-discovered-nullable": true
	}`)

	assert.True(t, prop.Has("x-discovered-nullable"))
	assert.Equal(t, 1, r.Stats().Preserved)
}

func TestReconcile_AuditDisabled(t *testing.T) {
	cfg := config.DefaultConfig().Reconciliation
	cfg.AuditEnabled = false
	r := newTestReconciler(cfg)

	prop := reconcileProp(t, r, `{"maxLength": 64, "x-discovered-max-length": 32}`)

	maxLength, _ := document.Int(mustGet(prop, "maxLength"))
	assert.Equal(t, int64(32), maxLength)
	assert.False(t, prop.Has("x-original-maxLength"))
	assert.False(t, prop.Has("x-reconciled-from-discovery"))
}

func TestReconcile_InlineRequestAndResponseSchemas(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	doc := mustDecode(t, `{"paths": {"/things": {"post": {
		"requestBody": {"content": {"application/json": {"schema": {
			"properties": {"name": {"x-discovered-max-length": 16}}
		}}}},
		"responses": {"200": {"content": {"application/json": {"schema": {
			"properties": {"id": {"x-discovered-format": "uuid"}}
		}}}}}
	}}}}`)

	_, report := r.Reconcile(doc)
	assert.Equal(t, 2, report.Statistics.Reconciled)
	assert.Equal(t, "replace", report.Mode)
}

func TestReconcile_Idempotent(t *testing.T) {
	r := newTestReconciler(config.DefaultConfig().Reconciliation)

	doc := mustDecode(t, `{"components":{"schemas":{"S":{"properties":{"p":{
		"maxLength": 64, "x-discovered-max-length": 32
	}}}}}}`)

	once, _ := r.Reconcile(doc)
	onceOut := encodeString(t, once)

	twice, _ := r.Reconcile(once)
	assert.Equal(t, onceOut, encodeString(t, twice))
	assert.Equal(t, 0, r.Stats().Reconciled)
}
