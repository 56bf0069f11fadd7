package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/lzops/lzops/types"
)

// Role name prefixes excluded from scans.
var excludedRolePrefixes = []string{"TEST", "ADES"}

// IAMRoleLister lists IAM roles through the IAM API. The tagging API does
// not return roles, so they are scanned directly. Implements
// scanner.DirectLister.
type IAMRoleLister struct {
	p *Provider
}

// IAMRoles returns the direct lister for IAM roles.
func (p *Provider) IAMRoles() *IAMRoleLister {
	return &IAMRoleLister{p: p}
}

// Key returns the catalog service key.
func (l *IAMRoleLister) Key() string { return "iam" }

// List returns IAM roles, skipping excluded name prefixes and AWS
// service-linked roles. Roles carry no tags here; rule evaluation sees an
// empty tag set.
func (l *IAMRoleLister) List(ctx context.Context) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := iam.NewListRolesPaginator(l.p.iam, &iam.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list IAM roles: %w", err)
		}

		for _, role := range page.Roles {
			name := awssdk.ToString(role.RoleName)
			path := awssdk.ToString(role.Path)

			if hasExcludedPrefix(name) {
				l.p.logger.Debug().Str("role", name).Msg("skipping role with excluded prefix")
				continue
			}
			if strings.HasPrefix(path, "/aws-service/") {
				l.p.logger.Debug().Str("role", name).Msg("skipping service-linked role")
				continue
			}

			resources = append(resources, types.Resource{
				ARN:  awssdk.ToString(role.Arn),
				Type: "iam:role",
			})
		}
	}

	return resources, nil
}

func hasExcludedPrefix(name string) bool {
	for _, prefix := range excludedRolePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
