// Package rules defines the static tag rule tables and the service
// dispatch catalog used by the resource scanner.
//
// The catalog is built once at startup and never mutated; callers receive
// their own Catalog value rather than sharing package-level state.
package rules

import "github.com/lzops/lzops/match"

// APIKind selects how a service's resources are discovered.
type APIKind string

const (
	// APITagging discovers resources through the Resource Groups
	// Tagging API in one paginated pass.
	APITagging APIKind = "tagging-api"
	// APIDirect discovers resources through the service's own API.
	APIDirect APIKind = "direct"
)

// Service binds a resource-type token to its discovery method and rules.
type Service struct {
	Key          string
	ResourceType string
	API          APIKind
	Rules        match.RuleSet
}

// Catalog maps service keys to their scan configuration.
type Catalog struct {
	services []Service
	byType   map[string]Service
}

// Presets shared across services. The nabserv exclusion is a substring
// match: any Name containing "nef-jenkins" is off limits.
var (
	presetASG          = []match.Rule{match.KeyPresent("aws:autoscaling:groupName")}
	presetNabserv      = []match.Rule{match.Contains("Name", "nef-jenkins")}
	presetNEF2         = []match.Rule{match.Exact("HIPmgmtEKS", "Yes")}
	presetCPS          = []match.Rule{match.Exact("HIPLocked", "Yes")}
	presetWiz          = []match.Rule{match.KeyPresent("wiz")}
	presetManagedByCMS = []match.Rule{match.Exact("managed_by", "CMS")}
)

// standardExclude combines the exclusions applied to every scanned service.
func standardExclude() []match.Rule {
	var out []match.Rule
	out = append(out, presetNEF2...)
	out = append(out, presetNabserv...)
	out = append(out, presetCPS...)
	out = append(out, presetWiz...)
	return out
}

// DefaultCatalog builds the full service catalog.
func DefaultCatalog() *Catalog {
	std := standardExclude()

	services := []Service{
		{
			Key:          "ec2",
			ResourceType: "ec2:instance",
			API:          APITagging,
			Rules: match.RuleSet{
				Include: presetManagedByCMS,
				Exclude: append(append([]match.Rule{}, std...), presetASG...),
			},
		},
		{
			Key:          "ebs",
			ResourceType: "ec2:volume",
			API:          APITagging,
			Rules: match.RuleSet{
				Exclude: append(append([]match.Rule{}, std...), presetASG...),
			},
		},
		{Key: "asg", ResourceType: "autoscaling:autoScalingGroup", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "s3", ResourceType: "s3", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "sns", ResourceType: "sns", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "sqs", ResourceType: "sqs", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "dynamodb", ResourceType: "dynamodb:table", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "cloudwatch", ResourceType: "cloudwatch:alarm", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "events", ResourceType: "events:rule", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "lb", ResourceType: "elasticloadbalancing:loadbalancer", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "tg", ResourceType: "elasticloadbalancing:targetgroup", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "efs", ResourceType: "elasticfilesystem:file-system", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "fsx", ResourceType: "fsx:volume", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "sg", ResourceType: "ec2:security-group", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "kms", ResourceType: "kms:key", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "rds", ResourceType: "rds:db", API: APITagging, Rules: match.RuleSet{Exclude: std}},
		{Key: "lambda", ResourceType: "lambda:function", API: APITagging, Rules: match.RuleSet{Exclude: std}},

		// Direct-API services: the tagging API does not return these.
		{Key: "iam", ResourceType: "iam:role", API: APIDirect, Rules: match.RuleSet{Exclude: std}},
		{Key: "route53", ResourceType: "route53:hostedzone", API: APIDirect, Rules: match.RuleSet{Exclude: std}},
	}

	byType := make(map[string]Service, len(services))
	for _, s := range services {
		byType[s.ResourceType] = s
	}

	return &Catalog{services: services, byType: byType}
}

// Services returns every service in catalog order.
func (c *Catalog) Services() []Service {
	return c.services
}

// ByResourceType looks up the service for a resource-type token.
func (c *Catalog) ByResourceType(token string) (Service, bool) {
	s, ok := c.byType[token]
	return s, ok
}

// TaggingResourceTypes returns the resource-type filters for one tagging
// API pass.
func (c *Catalog) TaggingResourceTypes() []string {
	var out []string
	for _, s := range c.services {
		if s.API == APITagging {
			out = append(out, s.ResourceType)
		}
	}
	return out
}

// DirectServices returns services scanned through their own APIs.
func (c *Catalog) DirectServices() []Service {
	var out []Service
	for _, s := range c.services {
		if s.API == APIDirect {
			out = append(out, s)
		}
	}
	return out
}
