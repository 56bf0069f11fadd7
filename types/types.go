// Package types holds the resource and tag models shared across lzops.
package types

// Tag is a single key/value pair attached to a cloud resource.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Resource is one discovered cloud resource as reported by a lister:
// its ARN, the provider-supplied resource type (may be empty), and its tags.
type Resource struct {
	ARN  string `json:"arn"`
	Type string `json:"type,omitempty"`
	Tags []Tag  `json:"tags,omitempty"`
}

// Match is a resource that passed the tag rules for its service.
type Match struct {
	ARN  string            `json:"arn"`
	Tags map[string]string `json:"tags"`
}

// TagMap converts a tag list to a plain map, last write wins on
// duplicate keys.
func TagMap(tags []Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.Key] = t.Value
	}
	return m
}
