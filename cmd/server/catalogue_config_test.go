package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
)

func TestLoadCatalogueDefaultsWhenPathIsEmpty(t *testing.T) {
	catalogue, catalogueErr := loadCatalogue(ServerConfig{})
	require.NoError(t, catalogueErr)
	require.Len(t, catalogue.All(), len(catalog.DefaultDashboards()))
}

func TestLoadCatalogueReadsConfiguredFile(t *testing.T) {
	cataloguePath := filepath.Join(t.TempDir(), "dashboards.yaml")
	catalogueYAML := `dashboards:
  - id: grid-health
    title: Grid Health
    icon: bar-chart
    presentation_kind: embedded-report
    embed_url: https://app.powerbi.com/view?r=grid-health
`
	require.NoError(t, os.WriteFile(cataloguePath, []byte(catalogueYAML), 0o600))

	catalogue, catalogueErr := loadCatalogue(ServerConfig{CataloguePath: cataloguePath})
	require.NoError(t, catalogueErr)

	configuration, lookupErr := catalogue.Lookup("grid-health")
	require.NoError(t, lookupErr)
	require.Equal(t, "Grid Health", configuration.Title)
}

func TestLoadCatalogueRejectsMissingFile(t *testing.T) {
	_, catalogueErr := loadCatalogue(ServerConfig{CataloguePath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, catalogueErr)
}

func TestEnvironmentValuesReachLoadedConfiguration(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://hub.example.com/analytics")
	t.Setenv("OPENAI_API_KEY", "test-key")

	application := NewServerApplication()
	_, commandErr := application.Command()
	require.NoError(t, commandErr)

	configuration := application.loadConfiguration()
	require.Equal(t, ":9090", configuration.ApplicationAddress)
	require.Equal(t, "postgres", configuration.DatabaseDriverName)
	require.Equal(t, "postgres://hub.example.com/analytics", configuration.DatabaseDataSourceName)
	require.Equal(t, "test-key", configuration.OpenAIAPIKey)
}
