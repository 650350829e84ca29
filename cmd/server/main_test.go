package main_test

import (
	"bytes"
	"strings"
	"testing"

	"gorm.io/gorm"

	servercmd "github.com/EnspecPower/analytics_hub/cmd/server"
	"github.com/EnspecPower/analytics_hub/internal/storage"
)

const (
	testEnvironmentKeyDatabaseDataSource = "DB_DSN"
	testEnvironmentKeyGoogleClientID     = "GOOGLE_CLIENT_ID"
	testEnvironmentKeyGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	testEnvironmentKeyPublicBaseURL      = "PUBLIC_BASE_URL"
	testEnvironmentKeySessionSecret      = "SESSION_SECRET"

	testPlaceholderDatabaseDSN  = "file:hub.db?mode=memory"
	testPlaceholderClientID     = "client-id"
	testPlaceholderClientSecret = "client-secret"
	testPlaceholderBaseURL      = "https://hub.enspecpower.com"
	testPlaceholderSecret       = "12345678901234567890123456789012"

	testMissingConfigurationMessage = "missing required configuration"
	testFlagIndicator               = "--"
	testUsagePrefix                 = "Usage:"
)

func applyCompleteEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv(testEnvironmentKeyDatabaseDataSource, testPlaceholderDatabaseDSN)
	t.Setenv(testEnvironmentKeyGoogleClientID, testPlaceholderClientID)
	t.Setenv(testEnvironmentKeyGoogleClientSecret, testPlaceholderClientSecret)
	t.Setenv(testEnvironmentKeyPublicBaseURL, testPlaceholderBaseURL)
	t.Setenv(testEnvironmentKeySessionSecret, testPlaceholderSecret)
}

func TestServerCommandMissingConfigurationShowsHelp(t *testing.T) {
	testCases := []struct {
		name                string
		clearedKey          string
		expectedMissingFlag string
	}{
		{name: "missing database dsn", clearedKey: testEnvironmentKeyDatabaseDataSource, expectedMissingFlag: "db-dsn"},
		{name: "missing google client id", clearedKey: testEnvironmentKeyGoogleClientID, expectedMissingFlag: "google-client-id"},
		{name: "missing google client secret", clearedKey: testEnvironmentKeyGoogleClientSecret, expectedMissingFlag: "google-client-secret"},
		{name: "missing public base url", clearedKey: testEnvironmentKeyPublicBaseURL, expectedMissingFlag: "public-base-url"},
		{name: "missing session secret", clearedKey: testEnvironmentKeySessionSecret, expectedMissingFlag: "session-secret"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			applyCompleteEnvironment(t)
			t.Setenv(testCase.clearedKey, "")

			databaseOpenerStub := func(configuration storage.Config) (*gorm.DB, error) {
				t.Fatalf("database opener invoked with %s", configuration.DataSourceName)
				return nil, nil
			}

			application := servercmd.NewServerApplication().WithDatabaseOpener(databaseOpenerStub)
			command, commandErr := application.Command()
			if commandErr != nil {
				t.Fatalf("unexpected command construction error: %v", commandErr)
			}

			commandOutput := &bytes.Buffer{}
			command.SetOut(commandOutput)
			command.SetErr(commandOutput)

			executionErr := command.Execute()
			if executionErr == nil {
				t.Fatalf("expected error for missing configuration")
			}

			combinedOutput := commandOutput.String()
			if !strings.Contains(combinedOutput, testMissingConfigurationMessage) {
				t.Fatalf("expected combined output to mention missing configuration: %s", combinedOutput)
			}

			if !strings.Contains(combinedOutput, testUsagePrefix) {
				t.Fatalf("expected combined output to include usage instructions: %s", combinedOutput)
			}

			expectedFlagIndicator := testFlagIndicator + testCase.expectedMissingFlag
			if !strings.Contains(combinedOutput, expectedFlagIndicator) {
				t.Fatalf("expected help output to include flag %s, actual output: %s", expectedFlagIndicator, combinedOutput)
			}
		})
	}
}
