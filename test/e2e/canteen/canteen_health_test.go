package canteen_test

import (
	"testing"

	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check works on a fresh instance.
func TestLivezEndpoint(t *testing.T) {
	baseURL, cleanup := setupCanteenContainer(t)
	defer cleanup()

	client := canteensdk.NewClient(baseURL)

	health, err := client.Livez(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}

// TestReadyzEndpoint verifies the readiness check reports the database as up.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, cleanup := setupCanteenContainer(t)
	defer cleanup()

	client := canteensdk.NewClient(baseURL)

	health, err := client.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
}
