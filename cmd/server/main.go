package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/temirov/GAuss/pkg/gauss"
	"github.com/temirov/GAuss/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EnspecPower/analytics_hub/internal/auth"
	"github.com/EnspecPower/analytics_hub/internal/catalog"
	"github.com/EnspecPower/analytics_hub/internal/draft"
	"github.com/EnspecPower/analytics_hub/internal/history"
	"github.com/EnspecPower/analytics_hub/internal/httpapi"
	"github.com/EnspecPower/analytics_hub/internal/presentation"
	"github.com/EnspecPower/analytics_hub/internal/storage"
	"github.com/EnspecPower/analytics_hub/internal/userstate"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the analytics hub server"
	commandLongDescription      = "Launch the dashboard aggregation HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logFieldAddress             = "addr"

	flagNameApplicationAddress = "app-addr"
	flagNameDatabaseDriver     = "db-driver"
	flagNameDatabaseDataSource = "db-dsn"
	flagNameCataloguePath      = "catalog-path"
	flagNameOpenAIAPIKey       = "openai-api-key"
	flagNameGoogleClientID     = "google-client-id"
	flagNameGoogleClientSecret = "google-client-secret"
	flagNamePublicBaseURL      = "public-base-url"
	flagNameSessionSecret      = "session-secret"

	flagUsageApplicationAddress = "address for the HTTP server to listen on"
	flagUsageDatabaseDriver     = "database driver (sqlite or postgres)"
	flagUsageDatabaseDataSource = "database connection string"
	flagUsageCataloguePath      = "path to a YAML dashboard catalogue (built-in catalogue when empty)"
	flagUsageOpenAIAPIKey       = "API key for the content draft service"
	flagUsageGoogleClientID     = "Google OAuth client identifier"
	flagUsageGoogleClientSecret = "Google OAuth client secret"
	flagUsagePublicBaseURL      = "externally visible base URL for OAuth callbacks"
	flagUsageSessionSecret      = "secret used to sign session cookies"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyCataloguePath      = "CATALOG_PATH"
	environmentKeyOpenAIAPIKey       = "OPENAI_API_KEY"
	environmentKeyGoogleClientID     = "GOOGLE_CLIENT_ID"
	environmentKeyGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	environmentKeyPublicBaseURL      = "PUBLIC_BASE_URL"
	environmentKeySessionSecret      = "SESSION_SECRET"

	defaultApplicationAddress = ":8080"

	loggerContextOpenDatabase  = "open_db"
	loggerContextAutoMigrate   = "migrate"
	loggerContextLoadCatalogue = "load_catalogue"
	loggerContextOAuthHandlers = "oauth_handlers"
	loggerContextServer        = "server"

	readHeaderTimeoutSeconds      = 5
	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	CataloguePath          string
	OpenAIAPIKey           string
	GoogleClientID         string
	GoogleClientSecret     string
	PublicBaseURL          string
	SessionSecret          string
}

// DatabaseOpener opens a database connection from a storage configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

type configurationBinding struct {
	environmentKey string
	flagName       string
	defaultValue   string
	usage          string
	required       bool
}

func (application *ServerApplication) configurationBindings() []configurationBinding {
	return []configurationBinding{
		{environmentKeyApplicationAddress, flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress, false},
		{environmentKeyDatabaseDriver, flagNameDatabaseDriver, storage.DriverNameSQLite, flagUsageDatabaseDriver, false},
		{environmentKeyDatabaseDataSource, flagNameDatabaseDataSource, "", flagUsageDatabaseDataSource, true},
		{environmentKeyCataloguePath, flagNameCataloguePath, "", flagUsageCataloguePath, false},
		{environmentKeyOpenAIAPIKey, flagNameOpenAIAPIKey, "", flagUsageOpenAIAPIKey, false},
		{environmentKeyGoogleClientID, flagNameGoogleClientID, "", flagUsageGoogleClientID, true},
		{environmentKeyGoogleClientSecret, flagNameGoogleClientSecret, "", flagUsageGoogleClientSecret, true},
		{environmentKeyPublicBaseURL, flagNamePublicBaseURL, "", flagUsagePublicBaseURL, true},
		{environmentKeySessionSecret, flagNameSessionSecret, "", flagUsageSessionSecret, true},
	}
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	for _, binding := range application.configurationBindings() {
		application.configurationLoader.SetDefault(binding.environmentKey, binding.defaultValue)
		commandFlags.String(binding.flagName, binding.defaultValue, binding.usage)

		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() ServerConfig {
	loader := application.configurationLoader
	return ServerConfig{
		ApplicationAddress:     loader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(loader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(loader.GetString(environmentKeyDatabaseDataSource)),
		CataloguePath:          strings.TrimSpace(loader.GetString(environmentKeyCataloguePath)),
		OpenAIAPIKey:           strings.TrimSpace(loader.GetString(environmentKeyOpenAIAPIKey)),
		GoogleClientID:         strings.TrimSpace(loader.GetString(environmentKeyGoogleClientID)),
		GoogleClientSecret:     strings.TrimSpace(loader.GetString(environmentKeyGoogleClientSecret)),
		PublicBaseURL:          strings.TrimSpace(loader.GetString(environmentKeyPublicBaseURL)),
		SessionSecret:          strings.TrimSpace(loader.GetString(environmentKeySessionSecret)),
	}
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSource)
	}
	if configuration.GoogleClientID == "" {
		missingParameters = append(missingParameters, flagNameGoogleClientID)
	}
	if configuration.GoogleClientSecret == "" {
		missingParameters = append(missingParameters, flagNameGoogleClientSecret)
	}
	if configuration.PublicBaseURL == "" {
		missingParameters = append(missingParameters, flagNamePublicBaseURL)
	}
	if configuration.SessionSecret == "" {
		missingParameters = append(missingParameters, flagNameSessionSecret)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func loadCatalogue(configuration ServerConfig) (*catalog.Catalogue, error) {
	if configuration.CataloguePath != "" {
		return catalog.LoadCatalogueFile(configuration.CataloguePath)
	}
	return catalog.NewCatalogue(catalog.DefaultDashboards())
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadConfiguration()
	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	session.NewSession([]byte(serverConfig.SessionSecret))

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	catalogue, catalogueErr := loadCatalogue(serverConfig)
	if catalogueErr != nil {
		logger.Fatal(loggerContextLoadCatalogue, zap.Error(catalogueErr))
	}

	oauthHandlers, oauthErr := auth.NewHandlers(auth.Config{
		GoogleClientID:     serverConfig.GoogleClientID,
		GoogleClientSecret: serverConfig.GoogleClientSecret,
		PublicBaseURL:      serverConfig.PublicBaseURL,
		LocalRedirectPath:  httpapi.HomeRoutePath,
		Scopes:             gauss.ScopeStrings(gauss.DefaultScopes),
		LoginTemplate:      "",
		Logger:             logger,
	})
	if oauthErr != nil {
		logger.Fatal(loggerContextOAuthHandlers, zap.Error(oauthErr))
	}

	userState := userstate.NewStore(database, logger)
	historyTracker := history.NewTracker(database, catalogue, logger)
	resolver := presentation.NewResolver(catalogue, historyTracker, logger)
	draftClient := draft.NewClient(serverConfig.OpenAIAPIKey)

	authManager := httpapi.NewAuthManager(logger, userState)
	apiHandlers := httpapi.NewAPIHandlers(catalogue, userState, historyTracker, draftClient, authManager, logger)
	webHandlers := httpapi.NewWebHandlers(catalogue, userState, historyTracker, resolver, authManager, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	registerFrontendRoutes(router, authManager, webHandlers, oauthHandlers)
	registerBackendRoutes(router, authManager, apiHandlers, serverConfig.PublicBaseURL)

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
