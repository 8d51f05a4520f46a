// Package categorize assigns specification files to functional domains
// based on filename patterns. Domains are checked in declaration order and
// the first matching pattern wins, so narrower domains must precede
// broader ones.
package categorize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
)

// FallbackDomain is returned when no pattern matches.
const FallbackDomain = "other"

// defaultDomains are the 31 functional domains derived from analysis of
// the full specification corpus. Order is significant.
var defaultDomains = []config.DomainDefinition{
	// Infrastructure and deployment
	{Name: "site_management", Patterns: []string{
		`aws_vpc_site`, `aws_tgw_site`, `azure_vnet_site`, `gcp_vpc_site`,
		`voltstack_site`, `securemesh_site`, `k8s_cluster`, `virtual_k8s`,
		`virtual_site`, `\.site\.`,
	}},
	{Name: "cloud_infrastructure", Patterns: []string{
		`cloud_credentials`, `cloud_connect`, `cloud_elastic`, `cloud_link`,
		`cloud_region`, `certified_hardware`,
	}},
	{Name: "vpm_and_node_management", Patterns: []string{
		`registration`, `module_management`, `upgrade_status`,
		`maintenance_status`, `usb_policy`, `network_interface`,
	}},
	{Name: "kubernetes_and_orchestration", Patterns: []string{
		`k8s_cluster`, `k8s_pod_security`, `virtual_appliance`, `workload`,
		`container_registry`, `\.cluster\.`,
	}},
	{Name: "service_mesh", Patterns: []string{
		`site_mesh`, `virtual_network`, `virtual_host`, `endpoint`,
		`nfv_service`, `fleet`, `discovery`, `app_setting`, `app_type`,
	}},
	// Core security
	{Name: "app_firewall", Patterns: []string{
		`app_firewall`, `app_security`, `waf`, `protocol_inspection`,
		`enhanced_firewall`,
	}},
	{Name: "api_security", Patterns: []string{
		`api_sec\.`, `api_crawler`, `api_discovery`, `api_testing`,
		`api_group`, `code_base_integration`, `api_credential`,
		`api_definition`,
	}},
	{Name: "bot_and_threat_defense", Patterns: []string{
		`bot_defense`, `bot_allowlist`, `bot_endpoint`, `bot_infrastructure`,
		`bot_network`, `mobile_sdk`, `mobile_base`, `threat_intelligence`,
	}},
	{Name: "network_security", Patterns: []string{
		`network_firewall`, `network_policy`, `nat_policy`, `forward_proxy`,
		`fast_acl`, `policy_based_routing`, `service_policy`, `segment`,
		`filter_set`,
	}},
	// Advanced security
	{Name: "data_and_privacy_security", Patterns: []string{
		`sensitive_data_policy`, `data_privacy`, `client_side_defense`,
		`device_id`, `data_type`,
	}},
	{Name: "infrastructure_protection", Patterns: []string{`infraprotect`}},
	{Name: "secops_and_incident_response", Patterns: []string{
		`secret_management`, `secret_policy`, `ticket_tracking`,
		`malicious_user`,
	}},
	// Application delivery. The healthcheck pattern excludes
	// dns_lb_health_check, which belongs to DNS.
	{Name: "virtual_server", Patterns: []string{
		`views\.http_loadbalancer`, `views\.tcp_loadbalancer`,
		`views\.udp_loadbalancer`, `views\.origin_pool`,
	}},
	{Name: "virtual_server", Patterns: []string{`\.healthcheck\.ves`}, Exclude: []string{`dns_lb`}},
	{Name: "virtual_server", Patterns: []string{
		`\.virtual_host\.ves`, `^[^.]*\.route\.ves`,
		`views\.rate_limiter_policy`, `views\.proxy\.ves`,
		`views\.forward_proxy_policy`,
	}},
	{Name: "dns_and_domain_management", Patterns: []string{
		`dns_load_balancer`, `dns_zone`, `dns_domain`, `dns_compliance`,
		`dns_lb_`, `rrset`,
	}},
	// Connectivity
	{Name: "network_connectivity", Patterns: []string{
		`bgp_routing`, `bgp`, `bgp_asn`, `route`, `tunnel`,
		`segment_connection`, `network_connector`, `ip_prefix_set`,
		`advertise_policy`, `subnet`, `srv6`, `address_allocator`,
		`public_ip`, `forwarding_class`, `dc_cluster_group`,
	}},
	{Name: "vpn_and_encryption", Patterns: []string{`ike1`, `ike2`, `ike_phase`}},
	// Content delivery
	{Name: "cdn_and_content_delivery", Patterns: []string{
		`cdn_loadbalancer`, `cdn_cache`, `cdn_`, `data_delivery`,
	}},
	// Observability
	{Name: "observability_and_analytics", Patterns: []string{
		`synthetic_monitor`, `alert_policy`, `alert_receiver`, `alert`,
		`log_receiver`, `global_log_receiver`, `log`, `report`,
		`observability\.`, `brmalerts`,
	}},
	{Name: "telemetry_and_insights", Patterns: []string{
		`graph`, `topology`, `flow`, `discovered_service`, `status_at_site`,
	}},
	{Name: "platform_operations", Patterns: []string{`operate\.`, `customer_support`}},
	// Enterprise administration
	{Name: "tenant_and_identity_management", Patterns: []string{
		`tenant_management`, `tenant`, `namespace`, `user_group`, `user`,
		`rbac_policy`, `role`, `authentication`, `oidc_provider`, `scim`,
		`signup`, `contact`,
	}},
	{Name: "user_and_account_management", Patterns: []string{
		`user_setting`, `user_identification`, `implicit_label`,
		`known_label`, `token`, `was\.user`,
	}},
	{Name: "compliance_and_governance", Patterns: []string{
		`geo_location_set`, `label`, `quota`, `usage_invoice`,
	}},
	// Platform integrations
	{Name: "bigip_integration", Patterns: []string{`bigip`, `bigcne`, `irule`, `data_group`}},
	{Name: "nginx_one_management", Patterns: []string{`nginx`}},
	{Name: "platform_and_marketplace", Patterns: []string{
		`marketplace`, `pbac\.`, `addon_`, `tpm_`, `cminstance`, `voltshare`,
		`views\.third_party`, `views\.terraform`, `views\.external`,
		`views\.view_internal`,
	}},
	// Advanced and emerging
	{Name: "advanced_ai_security", Patterns: []string{
		`ai_assistant`, `ai_data`, `flow_anomaly`, `malware_protection`,
		`shape\.recognize`, `shape\.safe`, `shape\.safeap`, `\.gia\.`,
	}},
	{Name: "rate_limiting_and_quotas", Patterns: []string{`rate_limiter`, `policer`}},
	{Name: "configuration_and_deployment", Patterns: []string{
		`stored_object`, `manifest`, `certificate`, `config`, `trusted_ca`, `crl`,
	}},
	// UI and billing
	{Name: "admin_console_and_ui", Patterns: []string{`ui_static`, `ui\.`, `navigation_tile`}},
	{Name: "billing_and_usage", Patterns: []string{
		`billing\.`, `usage`, `subscription`, `payment_method`, `plan_transition`,
	}},
}

type compiledDomain struct {
	name     string
	patterns []*regexp.Regexp
	exclude  []*regexp.Regexp
}

// Categorizer assigns filenames to domains.
type Categorizer struct {
	domains  []compiledDomain
	fallback string
}

// New constructs a categorizer from configuration, falling back to the
// built-in domain table when no definitions are configured.
func New(cfg config.DomainsConfig) (*Categorizer, error) {
	definitions := cfg.Definitions
	if len(definitions) == 0 {
		definitions = defaultDomains
	}
	fallback := cfg.Fallback
	if fallback == "" {
		fallback = FallbackDomain
	}

	domains := make([]compiledDomain, 0, len(definitions))
	for _, def := range definitions {
		compiled := compiledDomain{name: def.Name}
		for _, p := range def.Patterns {
			pattern, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compile domain pattern %q for %s: %w", p, def.Name, err)
			}
			compiled.patterns = append(compiled.patterns, pattern)
		}
		for _, p := range def.Exclude {
			pattern, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compile domain exclude %q for %s: %w", p, def.Name, err)
			}
			compiled.exclude = append(compiled.exclude, pattern)
		}
		domains = append(domains, compiled)
	}

	return &Categorizer{domains: domains, fallback: fallback}, nil
}

// Categorize returns the domain for a specification filename. Matching is
// case-insensitive over the lowercased name; the first matching domain
// wins and unmatched files fall into the fallback domain.
func (c *Categorizer) Categorize(filename string) string {
	name := strings.ToLower(filename)

	for _, domain := range c.domains {
		if domain.excluded(name) {
			continue
		}
		for _, pattern := range domain.patterns {
			if pattern.MatchString(name) {
				return domain.name
			}
		}
	}

	return c.fallback
}

func (d compiledDomain) excluded(name string) bool {
	for _, pattern := range d.exclude {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// Domains returns the sorted set of domain names the categorizer knows,
// without the fallback.
func (c *Categorizer) Domains() []string {
	seen := make(map[string]bool, len(c.domains))
	names := make([]string, 0, len(c.domains))
	for _, domain := range c.domains {
		if !seen[domain.name] {
			seen[domain.name] = true
			names = append(names, domain.name)
		}
	}
	sort.Strings(names)
	return names
}
