package awscfg

import (
	"context"
	"testing"

	"github.com/AymanSha3ban/MUC-Library/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_StaticCredentials(t *testing.T) {
	cfg := &config.Config{AWSAccessKeyID: "test", AWSSecretKey: "secret"}
	awsCfg, err := Load(context.Background(), cfg, "eu-central-1")
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", awsCfg.Region)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestEndpoint(t *testing.T) {
	assert.Nil(t, Endpoint(&config.Config{}))
	ep := Endpoint(&config.Config{AWSEndpointURL: "http://localhost:4566"})
	require.NotNil(t, ep)
	assert.Equal(t, "http://localhost:4566", *ep)
}
