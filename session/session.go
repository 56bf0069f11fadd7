// Package session creates cross-account AWS configs by assuming a role in
// each landing zone, with caching so a zone's role is assumed once per run.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSClient is the subset of the STS API the manager needs.
type STSClient interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Manager caches assumed-role configs keyed by account, zone, role, region
// and session name.
type Manager struct {
	mu    sync.Mutex
	cache map[string]aws.Config
	sts   STSClient
}

// NewManager builds a Manager that assumes roles through the given STS
// client.
func NewManager(stsClient STSClient) *Manager {
	return &Manager{
		cache: make(map[string]aws.Config),
		sts:   stsClient,
	}
}

// NewManagerFromEnv builds a Manager using ambient AWS credentials.
func NewManagerFromEnv(ctx context.Context, region string) (*Manager, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewManager(sts.NewFromConfig(cfg)), nil
}

// GetConfig returns an aws.Config for the role in the given account,
// assuming it once and serving subsequent calls from cache.
func (m *Manager) GetConfig(ctx context.Context, accountID, zoneName, role, region, sessionSuffix string) (aws.Config, error) {
	key := fmt.Sprintf("%s:%s:%s:%s:%s", accountID, zoneName, role, region, sessionSuffix)

	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg, ok := m.cache[key]; ok {
		return cfg, nil
	}

	cfg, err := m.assumeRole(ctx, accountID, zoneName, role, region, sessionSuffix)
	if err != nil {
		return aws.Config{}, err
	}

	m.cache[key] = cfg
	return cfg, nil
}

// ClearCache drops all cached configs.
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]aws.Config)
}

func (m *Manager) assumeRole(ctx context.Context, accountID, zoneName, role, region, sessionSuffix string) (aws.Config, error) {
	if !validAccountID(accountID) {
		return aws.Config{}, fmt.Errorf("invalid AWS account ID %q", accountID)
	}

	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, role)
	sessionName := fmt.Sprintf("%s-%s", zoneName, sessionSuffix)

	out, err := m.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to assume role %s: %w", roleARN, err)
	}

	creds := out.Credentials
	return aws.Config{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			aws.ToString(creds.AccessKeyId),
			aws.ToString(creds.SecretAccessKey),
			aws.ToString(creds.SessionToken),
		),
	}, nil
}

// validAccountID reports whether s is a 12-digit AWS account ID.
func validAccountID(s string) bool {
	if len(s) != 12 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
