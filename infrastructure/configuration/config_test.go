package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfiguration is a smoke test for the package-level configuration.
func TestConfiguration(t *testing.T) {
	t.Run("configuration_struct_exists", func(t *testing.T) {
		require.NotNil(t, &C, "Configuration should not be nil")
		require.NotNil(t, &C.App, "App configuration should exist")
		require.NotNil(t, &C.Database, "Database configuration should exist")
	})

	t.Run("configuration_defaults", func(t *testing.T) {
		// init() runs before tests, so defaults must already be applied.
		require.Greater(t, C.Publisher.BatchSize, 0, "Batch size default should be set")
		require.Greater(t, C.Publisher.ExpiryWarningDays, 0, "Expiry warning window default should be set")
	})
}
