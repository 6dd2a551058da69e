package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// TokenProvider hands out a short-lived password for a cloud-hosted
// movies database. String must not reveal secrets.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)
	String() string
}

// entraScope is the audience Entra ID issues Azure Database for PostgreSQL tokens for.
const entraScope = "https://ossrdbms-aad.database.windows.net/.default"

// rdsTokenLifetime is fixed by AWS.
const rdsTokenLifetime = 15 * time.Minute

// rdsIAMTokens signs RDS IAM tokens with the default AWS credential chain.
type rdsIAMTokens struct {
	endpoint string
	region   string
	user     string

	credentials func(ctx context.Context, region string) (aws.CredentialsProvider, error)
	sign        func(ctx context.Context, endpoint, region, user string, creds aws.CredentialsProvider, optFns ...func(*auth.BuildAuthTokenOptions)) (string, error)
	now         func() time.Time
}

func newRDSIAMTokens(cfg *moviedb.ConnectionConfig) (*rdsIAMTokens, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("AWS IAM auth requires DB_HOST: %w", moviedb.ErrInvalidConfig)
	}
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("AWS IAM auth requires AWS_REGION or database.aws_region: %w", moviedb.ErrInvalidConfig)
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires DB_USER: %w", moviedb.ErrInvalidConfig)
	}
	return &rdsIAMTokens{
		endpoint:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		region:      cfg.AWSRegion,
		user:        cfg.Username,
		credentials: defaultAWSCredentials,
		sign:        auth.BuildAuthToken,
		now:         time.Now,
	}, nil
}

func defaultAWSCredentials(ctx context.Context, region string) (aws.CredentialsProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return cfg.Credentials, nil
}

func (p *rdsIAMTokens) GetToken(ctx context.Context) (string, time.Time, error) {
	creds, err := p.credentials(ctx, p.region)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load AWS credentials: %w", err)
	}
	issued := p.now()
	token, err := p.sign(ctx, p.endpoint, p.region, p.user, creds)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign RDS auth token for %s: %w", p.user, err)
	}
	return token, issued.Add(rdsTokenLifetime), nil
}

func (p *rdsIAMTokens) String() string {
	return fmt.Sprintf("RDS IAM (endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.user)
}

// entraTokens asks Entra ID for a PostgreSQL access token. A complete
// tenant/client/secret triple selects service principal auth, anything
// less falls back to the DefaultAzureCredential chain.
type entraTokens struct {
	credential azcore.TokenCredential
	desc       string
}

func newEntraTokens(cfg *moviedb.ConnectionConfig) (*entraTokens, error) {
	if cfg.AzureTenantID != "" && cfg.AzureClientID != "" && cfg.AzureClientSecret != "" {
		cred, err := azidentity.NewClientSecretCredential(cfg.AzureTenantID, cfg.AzureClientID, cfg.AzureClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("create Azure service principal credential: %w", err)
		}
		return &entraTokens{
			credential: cred,
			desc:       fmt.Sprintf("Entra ID service principal (tenant=%s, client=%s)", cfg.AzureTenantID, cfg.AzureClientID),
		}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure default credential: %w", err)
	}
	return &entraTokens{credential: cred, desc: "Entra ID default credential chain"}, nil
}

func (p *entraTokens) GetToken(ctx context.Context) (string, time.Time, error) {
	tok, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{entraScope}})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("acquire Entra ID token: %w", err)
	}
	return tok.Token, tok.ExpiresOn, nil
}

func (p *entraTokens) String() string { return p.desc }

var (
	_ TokenProvider = (*rdsIAMTokens)(nil)
	_ TokenProvider = (*entraTokens)(nil)
)
