package enrich

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/document"
)

// fallbackTag collects paths no pattern claims.
const fallbackTag = "Other"

// defaultTagDefinitions align with the platform domain categories. Order
// matters: the first tag whose pattern matches a path wins.
var defaultTagDefinitions = []config.TagDefinition{
	{
		Name:        "API Security",
		Description: "API security, discovery, testing, and protection operations",
		Patterns: []string{
			`/api_sec/`, `/api_crawler/`, `/api_discovery/`, `/api_testing/`,
			`/api_group/`, `/sensitive_data/`, `/rule_suggestion/`,
		},
	},
	{
		Name:        "Applications",
		Description: "Application settings, types, and workload management",
		Patterns:    []string{`/app_setting/`, `/app_type/`, `/app_api_group/`, `/workload/`},
	},
	{
		Name:        "BIG-IP",
		Description: "BIG-IP integration and management operations",
		Patterns:    []string{`/bigip/`, `/bigcne/`},
	},
	{
		Name:        "Billing",
		Description: "Billing, invoices, payments, and usage tracking",
		Patterns:    []string{`/billing/`, `/invoice/`, `/payment/`, `/quota/`, `/usage/`},
	},
	{
		Name:        "CDN",
		Description: "Content delivery network and caching operations",
		Patterns:    []string{`/cdn_loadbalancer/`, `/cdn_cache/`},
	},
	{
		Name:        "Configuration",
		Description: "Global settings, labels, and configuration management",
		Patterns:    []string{`/global_setting/`, `/tenant_setting/`, `/known_label/`, `/implicit_label/`},
	},
	{
		Name:        "Identity",
		Description: "Identity, access management, users, roles, and credentials",
		Patterns: []string{
			`/namespace/`, `/user_group/`, `/user/`, `/user_identification/`,
			`/role/`, `/service_credential/`, `/api_credential/`, `/certificate/`,
			`/token/`, `/oidc_provider/`, `/scim/`, `/authentication/`,
			`/signup/`, `/contact/`,
		},
	},
	{
		Name:        "Infrastructure",
		Description: "Cloud sites, Kubernetes clusters, and infrastructure management",
		Patterns: []string{
			`/cloud_credentials/`, `/aws_vpc_site/`, `/aws_tgw_site/`,
			`/azure_vnet_site/`, `/gcp_vpc_site/`, `/voltstack_site/`,
			`/securemesh_site/`, `/k8s_cluster/`, `/k8s_pod/`, `/virtual_k8s/`,
			`/ce_cluster/`, `/certified_hardware/`, `/registration/`,
			`/upgrade_status/`, `/module_management/`,
		},
	},
	{
		Name:        "Infrastructure Protection",
		Description: "DDoS protection and infrastructure security operations",
		Patterns:    []string{`/infraprotect/`},
	},
	{
		Name:        "Load Balancing",
		Description: "HTTP, TCP, and UDP load balancer configuration",
		Patterns: []string{
			`/http_loadbalancer/`, `/tcp_loadbalancer/`, `/udp_loadbalancer/`,
			`/healthcheck/`, `/origin_pool/`, `/proxy/`,
		},
	},
	{
		Name:        "Networking",
		Description: "Network policies, DNS, routing, and connectivity",
		Patterns: []string{
			`/network_policy/`, `/network_firewall/`, `/network_interface/`,
			`/network_connector/`, `/virtual_network/`, `/site_mesh/`,
			`/dc_cluster/`, `/fleet/`, `/bgp/`, `/dns_zone/`, `/dns_domain/`,
			`/dns_load_balancer/`, `/dns_lb/`, `/dns_compliance/`, `/subnet/`,
			`/segment/`, `/cloud_connect/`, `/cloud_link/`, `/cloud_elastic/`,
			`/cloud_region/`, `/public_ip/`, `/nat_policy/`, `/address_allocator/`,
			`/advertise_policy/`, `/forwarding_class/`, `/ip_prefix_set/`,
			`/route/`, `/srv6/`, `/virtual_host/`, `/virtual_site/`,
			`/external_connector/`, `/policy_based_routing/`,
		},
	},
	{
		Name:        "NGINX",
		Description: "NGINX One management and configuration",
		Patterns:    []string{`/nginx/`},
	},
	{
		Name:        "Observability",
		Description: "Logging, metrics, alerts, and monitoring operations",
		Patterns: []string{
			`/log_receiver/`, `/global_log_receiver/`, `/log/`, `/metric/`,
			`/alert_policy/`, `/alert_receiver/`, `/alert/`, `/synthetic_monitor/`,
			`/monitor/`, `/trace/`, `/dashboard/`, `/report/`, `/flow_anomaly/`,
			`/flow/`, `/topology/`, `/graph/`, `/status_at_site/`,
		},
	},
	{
		Name:        "Security",
		Description: "WAF, firewall policies, bot defense, and access control",
		Patterns: []string{
			`/app_firewall/`, `/waf/`, `/service_policy/`, `/rate_limiter/`,
			`/malicious/`, `/bot_defense/`, `/api_definition/`,
			`/enhanced_firewall/`, `/fast_acl/`, `/rbac_policy/`,
			`/secret_policy/`, `/secret_management/`, `/policer/`,
			`/protocol_policer/`, `/protocol_inspection/`, `/filter_set/`,
			`/trusted_ca/`, `/crl/`, `/geo_location/`, `/data_type/`, `/voltshare/`,
		},
	},
	{
		Name:        "Service Mesh",
		Description: "Service discovery, endpoints, and container management",
		Patterns: []string{
			`/discovery/`, `/discovered_service/`, `/endpoint/`, `/cluster/`,
			`/container_registry/`, `/nfv_service/`,
		},
	},
	{
		Name:        "Shape Security",
		Description: "Client-side defense, device identification, and Shape security",
		Patterns:    []string{`/shape/`, `/client_side_defense/`, `/device_id/`},
	},
	{
		Name:        "Subscriptions",
		Description: "Subscription management, marketplace, and add-on services",
		Patterns: []string{
			`/subscription/`, `/addon_service/`, `/addon_subscription/`,
			`/marketplace/`, `/catalog/`, `/plan/`, `/navigation/`,
		},
	},
	{
		Name:        "Tenant Management",
		Description: "Multi-tenant configuration and management",
		Patterns: []string{
			`/tenant_management/`, `/tenant_configuration/`, `/tenant_profile/`,
			`/tenant/`, `/child_tenant/`, `/allowed_tenant/`, `/managed_tenant/`,
		},
	},
	{
		Name:        "VPN",
		Description: "IPSec VPN, IKE configuration, and tunnel management",
		// The tunnel pattern is deliberately unterminated so it matches
		// both /tunnel/ and /tunnels.
		Patterns: []string{`/ike1/`, `/ike2/`, `/ike_phase/`, `/tunnel`},
	},
	{
		Name:        "AI Assistant",
		Description: "AI-powered assistant and automation operations",
		Patterns:    []string{`/ai_assistant/`, `/ai_data/`},
	},
	{
		Name:        fallbackTag,
		Description: "Miscellaneous operations",
	},
}

// TagGeneratorStats counts tagging work.
type TagGeneratorStats struct {
	OperationsTagged int `json:"operations_tagged"`
	TagsGenerated    int `json:"tags_generated"`
}

type compiledTag struct {
	name        string
	description string
	patterns    []*regexp.Regexp
}

// TagGenerator assigns domain tags to operations based on path patterns
// and regenerates the top-level tags array with descriptions.
type TagGenerator struct {
	generateMetadata   bool
	assignToOperations bool
	tags               []compiledTag

	stats TagGeneratorStats
}

// NewTagGenerator constructs a generator from configuration. Custom tag
// definitions overlay the defaults by name; unknown names are appended.
func NewTagGenerator(cfg config.TagsConfig) (*TagGenerator, error) {
	definitions := make([]config.TagDefinition, len(defaultTagDefinitions))
	copy(definitions, defaultTagDefinitions)

	for _, custom := range cfg.Definitions {
		found := false
		for i := range definitions {
			if definitions[i].Name == custom.Name {
				if custom.Description != "" {
					definitions[i].Description = custom.Description
				}
				if custom.Patterns != nil {
					definitions[i].Patterns = custom.Patterns
				}
				found = true
				break
			}
		}
		if !found {
			definitions = append(definitions, custom)
		}
	}

	tags := make([]compiledTag, 0, len(definitions))
	for _, def := range definitions {
		compiled := compiledTag{name: def.Name, description: def.Description}
		for _, p := range def.Patterns {
			pattern, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("compile tag pattern %q for %s: %w", p, def.Name, err)
			}
			compiled.patterns = append(compiled.patterns, pattern)
		}
		tags = append(tags, compiled)
	}

	return &TagGenerator{
		generateMetadata:   cfg.GenerateMetadata,
		assignToOperations: cfg.AssignToOperations,
		tags:               tags,
	}, nil
}

// GenerateTags assigns operation tags and rebuilds the top-level tags
// array.
func (g *TagGenerator) GenerateTags(doc *document.Object) *document.Object {
	g.stats = TagGeneratorStats{}

	if g.assignToOperations {
		g.assignOperationTags(doc)
	}
	if g.generateMetadata {
		g.generateTagMetadata(doc)
	}

	return doc
}

// Stats returns counters from the last GenerateTags pass.
func (g *TagGenerator) Stats() TagGeneratorStats {
	return g.stats
}

// assignOperationTags prepends the path's domain tag to every operation
// that does not already carry it. All operations under one path share the
// same tag.
func (g *TagGenerator) assignOperationTags(doc *document.Object) {
	paths, ok := doc.GetObject("paths")
	if !ok {
		return
	}

	for _, path := range paths.Keys() {
		pathItem, ok := paths.GetObject(path)
		if !ok {
			continue
		}

		tag := g.tagForPath(path)

		for _, method := range pathItem.Keys() {
			if !httpMethods[strings.ToLower(method)] {
				continue
			}
			operation, ok := pathItem.GetObject(method)
			if !ok {
				continue
			}

			existing, _ := operation.GetArray("tags")
			if containsString(existing, tag) {
				continue
			}

			updated := make(document.Array, 0, len(existing)+1)
			updated = append(updated, tag)
			updated = append(updated, existing...)
			operation.Set("tags", updated)
			g.stats.OperationsTagged++
		}
	}
}

// tagForPath returns the first tag whose pattern matches the path, with
// the fallback tag for unmatched paths.
func (g *TagGenerator) tagForPath(path string) string {
	for _, tag := range g.tags {
		if tag.name == fallbackTag {
			continue
		}
		for _, pattern := range tag.patterns {
			if pattern.MatchString(path) {
				return tag.name
			}
		}
	}
	return fallbackTag
}

// generateTagMetadata rebuilds the top-level tags array from the union of
// tags used by operations and tags already declared, sorted by name.
func (g *TagGenerator) generateTagMetadata(doc *document.Object) {
	used := make(map[string]bool)

	if paths, ok := doc.GetObject("paths"); ok {
		for _, path := range paths.Keys() {
			pathItem, ok := paths.GetObject(path)
			if !ok {
				continue
			}
			for _, method := range pathItem.Keys() {
				operation, ok := pathItem.GetObject(method)
				if !ok {
					continue
				}
				if tags, ok := operation.GetArray("tags"); ok {
					for _, t := range tags {
						if name, ok := t.(string); ok {
							used[name] = true
						}
					}
				}
			}
		}
	}

	if declared, ok := doc.GetArray("tags"); ok {
		for _, entry := range declared {
			if tag, ok := entry.(*document.Object); ok {
				if name, ok := tag.GetString("name"); ok && name != "" {
					used[name] = true
				}
			}
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)

	metadata := make(document.Array, 0, len(names))
	for _, name := range names {
		entry := document.NewObject()
		entry.Set("name", name)
		if description := g.descriptionFor(name); description != "" {
			entry.Set("description", description)
			g.stats.TagsGenerated++
		}
		metadata = append(metadata, entry)
	}

	doc.Set("tags", metadata)
}

func (g *TagGenerator) descriptionFor(name string) string {
	for _, tag := range g.tags {
		if tag.name == name {
			return tag.description
		}
	}
	return ""
}

func containsString(arr document.Array, s string) bool {
	for _, v := range arr {
		if str, ok := v.(string); ok && str == s {
			return true
		}
	}
	return false
}
