package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

func rdsConfig() *moviedb.ConnectionConfig {
	return &moviedb.ConnectionConfig{
		Host: "movies.abc.us-east-1.rds.amazonaws.com", Port: 5432,
		Username: "loader", AuthMethod: moviedb.AuthMethodAWSIAM, AWSRegion: "us-east-1",
	}
}

func TestNewRDSIAMTokens_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*moviedb.ConnectionConfig)
	}{
		{"no host", func(c *moviedb.ConnectionConfig) { c.Host = "" }},
		{"no region", func(c *moviedb.ConnectionConfig) { c.AWSRegion = "" }},
		{"no user", func(c *moviedb.ConnectionConfig) { c.Username = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := rdsConfig()
			tt.mutate(cfg)
			_, err := newRDSIAMTokens(cfg)
			assert.ErrorIs(t, err, moviedb.ErrInvalidConfig)
		})
	}
}

func TestRDSIAMTokens_GetToken(t *testing.T) {
	p, err := newRDSIAMTokens(rdsConfig())
	require.NoError(t, err)

	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gotEndpoint, gotRegion, gotUser string
	p.now = func() time.Time { return issued }
	p.credentials = func(context.Context, string) (aws.CredentialsProvider, error) {
		return aws.AnonymousCredentials{}, nil
	}
	p.sign = func(_ context.Context, endpoint, region, user string, _ aws.CredentialsProvider, _ ...func(*auth.BuildAuthTokenOptions)) (string, error) {
		gotEndpoint, gotRegion, gotUser = endpoint, region, user
		return "signed-token", nil
	}

	token, expires, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, issued.Add(15*time.Minute), expires)
	assert.Equal(t, "movies.abc.us-east-1.rds.amazonaws.com:5432", gotEndpoint)
	assert.Equal(t, "us-east-1", gotRegion)
	assert.Equal(t, "loader", gotUser)
	assert.Contains(t, p.String(), "region=us-east-1")
}

func TestRDSIAMTokens_CredentialFailure(t *testing.T) {
	p, err := newRDSIAMTokens(rdsConfig())
	require.NoError(t, err)
	p.credentials = func(context.Context, string) (aws.CredentialsProvider, error) {
		return nil, errors.New("no profile")
	}

	_, _, err = p.GetToken(context.Background())
	assert.ErrorContains(t, err, "load AWS credentials")
}

type fakeCredential struct {
	scopes []string
	err    error
}

func (f *fakeCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	f.scopes = opts.Scopes
	if f.err != nil {
		return azcore.AccessToken{}, f.err
	}
	return azcore.AccessToken{Token: "entra-token", ExpiresOn: time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)}, nil
}

func TestEntraTokens_RequestsPostgresScope(t *testing.T) {
	cred := &fakeCredential{}
	p := &entraTokens{credential: cred, desc: "test"}

	token, expires, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "entra-token", token)
	assert.Equal(t, 13, expires.Hour())
	assert.Equal(t, []string{entraScope}, cred.scopes)
}

func TestEntraTokens_Failure(t *testing.T) {
	p := &entraTokens{credential: &fakeCredential{err: errors.New("AADSTS700016")}}

	_, _, err := p.GetToken(context.Background())
	assert.ErrorContains(t, err, "acquire Entra ID token")
	assert.ErrorContains(t, err, "AADSTS700016")
}

func TestNewEntraTokens_ServicePrincipalDescription(t *testing.T) {
	p, err := newEntraTokens(&moviedb.ConnectionConfig{
		AzureTenantID: "00000000-0000-0000-0000-000000000001", AzureClientID: "client", AzureClientSecret: "secret",
	})
	require.NoError(t, err)
	assert.Contains(t, p.String(), "service principal")
	assert.NotContains(t, p.String(), "secret")
}
