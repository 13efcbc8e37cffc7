package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// GoogleCloud reads secrets from Google Secret Manager. Secret names are
// normalized to the platform's convention: lower case with dashes.
type GoogleCloud struct {
	client    *secretmanager.Client
	projectID string
}

// NewGoogleCloud creates a Secret Manager backed retriever.
func NewGoogleCloud(ctx context.Context, projectID string) (*GoogleCloud, error) {
	if projectID == "" {
		return nil, errors.New("gcp project id is required")
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating secret manager client: %w", err)
	}
	return &GoogleCloud{client: client, projectID: projectID}, nil
}

// Get returns the latest version of the named secret.
func (g *GoogleCloud) Get(ctx context.Context, name string) (string, error) {
	normalized := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	path := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", g.projectID, normalized)

	resp, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: path})
	if err != nil {
		return "", fmt.Errorf("accessing secret %s: %w", normalized, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

// Close releases the underlying client connection.
func (g *GoogleCloud) Close() error {
	return g.client.Close()
}
