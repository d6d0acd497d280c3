package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithDrupalRootStoresNormalizedValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithDrupalRoot(context.Background(), "  docroot ")

	drupalRoot, exists := accessor.DrupalRoot(enriched)
	require.True(t, exists)
	require.Equal(t, "docroot", drupalRoot)
}

func TestWithDrupalRootSkipsEmptyValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithDrupalRoot(context.Background(), "   ")

	_, exists := accessor.DrupalRoot(enriched)
	require.False(t, exists)
}

func TestWithConfigurationFilePathStoresValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithConfigurationFilePath(nil, "/tmp/drutask.yaml")

	configurationFilePath, exists := accessor.ConfigurationFilePath(enriched)
	require.True(t, exists)
	require.Equal(t, "/tmp/drutask.yaml", configurationFilePath)
}

func TestWithLogLevelStoresTrimmedValue(t *testing.T) {
	accessor := NewCommandContextAccessor()
	enriched := accessor.WithLogLevel(context.Background(), " debug ")

	logLevel, exists := accessor.LogLevel(enriched)
	require.True(t, exists)
	require.Equal(t, "debug", logLevel)

	_, missing := accessor.LogLevel(accessor.WithLogLevel(context.Background(), ""))
	require.False(t, missing)
}

func TestAccessorHandlesNilContext(t *testing.T) {
	accessor := NewCommandContextAccessor()

	_, exists := accessor.ConfigurationFilePath(nil)
	require.False(t, exists)
	_, exists = accessor.DrupalRoot(nil)
	require.False(t, exists)
}
