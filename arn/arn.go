// Package arn derives normalized resource-type tokens from AWS ARNs.
//
// Tokens look like "ec2:volume" or, for services whose ARNs carry no
// resource-type segment, just the service name ("s3"). The token selects
// which tag rule set applies to a resource.
package arn

import "strings"

// flatServices have ARNs with no resource-type segment; the service name
// alone is the token.
var flatServices = map[string]bool{
	"s3":  true,
	"sns": true,
	"sqs": true,
}

// grammar is a per-service override for ARN shapes the generic positional
// parse gets wrong. Each entry fires when the ARN contains its marker.
type grammar struct {
	marker string
	token  string
}

var serviceGrammar = map[string]grammar{
	"dynamodb":   {marker: "/table/", token: "dynamodb:table"},
	"cloudwatch": {marker: ":alarm:", token: "cloudwatch:alarm"},
	"events":     {marker: "/rule/", token: "events:rule"},
}

// Classify returns the resource-type token for a resource. A non-empty
// providedType is trusted as-is; otherwise the token is parsed from the
// ARN. Malformed ARNs degrade to a service-only or empty token, never an
// error: callers treat an unknown token as "no rule set, skip".
func Classify(arn, providedType string) string {
	if providedType != "" {
		return providedType
	}
	return fromARN(arn)
}

// fromARN parses "arn:partition:service:region:account:resource-part..."
// positionally.
func fromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 3 {
		return ""
	}

	service := parts[2]
	if flatServices[service] {
		return service
	}

	if len(parts) >= 6 {
		if g, ok := serviceGrammar[service]; ok && strings.Contains(arn, g.marker) {
			return g.token
		}

		resourcePart := parts[5]
		if i := strings.Index(resourcePart, "/"); i >= 0 {
			return service + ":" + resourcePart[:i]
		}
		return service + ":" + resourcePart
	}

	return service
}
