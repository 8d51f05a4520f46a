package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
)

func TestTierEnricher_RewritesEnumWithDedup(t *testing.T) {
	enricher, err := NewDeprecatedTierEnricher(config.DefaultConfig().DeprecatedTiers)
	require.NoError(t, err)

	doc := mustDecode(t, `{"components":{"schemas":{
		"subscriptionAddonServiceTierType": {
			"type": "string",
			"enum": ["NO_TIER", "BASIC", "STANDARD", "ADVANCED", "PREMIUM"]
		}
	}}}`)

	enriched := enricher.Enrich(doc)

	components, _ := enriched.GetObject("components")
	schemas, _ := components.GetObject("schemas")
	schema, _ := schemas.GetObject("subscriptionAddonServiceTierType")
	enum, _ := schema.GetArray("enum")

	// BASIC folds into STANDARD and PREMIUM into ADVANCED, keeping
	// first-occurrence order.
	require.Len(t, enum, 3)
	assert.Equal(t, "NO_TIER", enum[0])
	assert.Equal(t, "STANDARD", enum[1])
	assert.Equal(t, "ADVANCED", enum[2])

	assert.Equal(t, 1, enricher.Stats().SchemasTransformed)
	assert.Equal(t, 2, enricher.Stats().ValuesTransformed)
}

func TestTierEnricher_UpdatesDescription(t *testing.T) {
	enricher, err := NewDeprecatedTierEnricher(config.DefaultConfig().DeprecatedTiers)
	require.NoError(t, err)

	doc := mustDecode(t, `{"components":{"schemas":{
		"serviceTierType": {
			"enum": ["BASIC", "PREMIUM"],
			"description": "Tiers:\n - BASIC: entry level\n - PREMIUM: full features"
		}
	}}}`)

	enriched := enricher.Enrich(doc)

	components, _ := enriched.GetObject("components")
	schemas, _ := components.GetObject("schemas")
	schema, _ := schemas.GetObject("serviceTierType")
	description, _ := schema.GetString("description")

	assert.Contains(t, description, "STANDARD: entry level")
	assert.Contains(t, description, "ADVANCED: full features")
	assert.NotContains(t, description, "BASIC")
	assert.NotContains(t, description, "PREMIUM")
	assert.Equal(t, 1, enricher.Stats().DescriptionsUpdated)
}

func TestTierEnricher_IgnoresNonTierSchemas(t *testing.T) {
	enricher, err := NewDeprecatedTierEnricher(config.DefaultConfig().DeprecatedTiers)
	require.NoError(t, err)

	input := `{"components":{"schemas":{"colorType":{"enum":["BASIC","FANCY"]}}}}`
	doc := mustDecode(t, input)
	enriched := enricher.Enrich(doc)

	assert.Equal(t, input, encodeString(t, enriched))
	assert.Equal(t, 0, enricher.Stats().SchemasTransformed)
}

func TestTierEnricher_FixesCLIExamples(t *testing.T) {
	enricher, err := NewDeprecatedTierEnricher(config.DefaultConfig().DeprecatedTiers)
	require.NoError(t, err)

	doc := mustDecode(t, `{"components":{"schemas":{
		"anySchema": {
			"x-ves-minimum-configuration": {
				"example_curl": "curl -d '{\"tier\":\"subscription_basic_tier\"}' https://api"
			}
		}
	}}}`)

	enriched := enricher.Enrich(doc)

	components, _ := enriched.GetObject("components")
	schemas, _ := components.GetObject("schemas")
	schema, _ := schemas.GetObject("anySchema")
	minConfig, _ := schema.GetObject("x-ves-minimum-configuration")
	example, _ := minConfig.GetString("example_curl")

	assert.Contains(t, example, "subscription_standard_tier")
	assert.NotContains(t, example, "basic")
	assert.Equal(t, 1, enricher.Stats().CLIExamplesFixed)
}

func TestTierEnricher_DisabledPassesThrough(t *testing.T) {
	cfg := config.DefaultConfig().DeprecatedTiers
	cfg.Enabled = false
	enricher, err := NewDeprecatedTierEnricher(cfg)
	require.NoError(t, err)

	input := `{"components":{"schemas":{"xTierType":{"enum":["BASIC"]}}}}`
	doc := mustDecode(t, input)
	enriched := enricher.Enrich(doc)

	assert.Equal(t, input, encodeString(t, enriched))
}

func TestTierEnricher_Idempotent(t *testing.T) {
	enricher, err := NewDeprecatedTierEnricher(config.DefaultConfig().DeprecatedTiers)
	require.NoError(t, err)

	doc := mustDecode(t, `{"components":{"schemas":{
		"serviceTierType": {"enum": ["BASIC", "PREMIUM"], "description": "BASIC or PREMIUM"}
	}}}`)

	once := enricher.Enrich(doc)
	onceOut := encodeString(t, once)

	twice := enricher.Enrich(once)
	assert.Equal(t, onceOut, encodeString(t, twice))
	assert.Equal(t, 0, enricher.Stats().ValuesTransformed)
}

func TestTierEnricher_RejectsBadPattern(t *testing.T) {
	cfg := config.DefaultConfig().DeprecatedTiers
	cfg.Patterns = []string{"("}
	_, err := NewDeprecatedTierEnricher(cfg)
	assert.Error(t, err)
}
