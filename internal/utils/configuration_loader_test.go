package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/drutask/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTDRUTASK"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigFileNameConstant        = "config.yaml"
	testVersionEnvironmentConstant    = "TESTDRUTASK_DRUPAL_VERSION"
	testExcludeEnvironmentConstant    = "TESTDRUTASK_DRUPAL_SITE_ENABLE_ALL_EXCLUDE"
	testEmbeddedConfigurationConstant = "drupal:\n  version: \"\"\n  drush:\n    alias: \"\"\n  site:\n    enable_all_exclude: []\n"
)

type drupalFixture struct {
	Drupal drupalSectionFixture `mapstructure:"drupal"`
}

type drupalSectionFixture struct {
	Version string       `mapstructure:"version"`
	Drush   drushFixture `mapstructure:"drush"`
	Site    siteFixture  `mapstructure:"site"`
}

type drushFixture struct {
	Alias string `mapstructure:"alias"`
}

type siteFixture struct {
	EnableAllExclude []string `mapstructure:"enable_all_exclude"`
}

func writeConfigurationFile(testInstance *testing.T, directoryPath string, content string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directoryPath, 0o755))
	configurationFilePath := filepath.Join(directoryPath, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func TestConfigurationLoaderLayering(testInstance *testing.T) {
	testCases := []struct {
		name                string
		defaultValues       map[string]any
		fileContent         string
		environment         map[string]string
		expectedVersion     string
		expectedAlias       string
		expectedExclusions  []string
		expectConfigFileUse bool
	}{
		{
			name:               "embedded only",
			expectedVersion:    "",
			expectedAlias:      "",
			expectedExclusions: []string{},
		},
		{
			name:               "defaults beneath embedded",
			defaultValues:      map[string]any{"drupal.profile": "minimal"},
			expectedExclusions: []string{},
		},
		{
			name:                "file overrides embedded",
			fileContent:         "drupal:\n  version: 8.9.20\n  drush:\n    alias: \"@local\"\n  site:\n    enable_all_exclude: [devel, kint]\n",
			expectedVersion:     "8.9.20",
			expectedAlias:       "@local",
			expectedExclusions:  []string{"devel", "kint"},
			expectConfigFileUse: true,
		},
		{
			name:                "environment overrides file",
			fileContent:         "drupal:\n  version: 8.9.20\n",
			environment:         map[string]string{testVersionEnvironmentConstant: "10.1.0"},
			expectedVersion:     "10.1.0",
			expectedExclusions:  []string{},
			expectConfigFileUse: true,
		},
		{
			name:               "environment lists split on commas",
			environment:        map[string]string{testExcludeEnvironmentConstant: "devel,migrate_drupal_ui"},
			expectedExclusions: []string{"devel", "migrate_drupal_ui"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			expectedConfigFile := ""
			if len(testCase.fileContent) > 0 {
				expectedConfigFile = writeConfigurationFile(testInstance, searchDirectory, testCase.fileContent)
			}
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})
			loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

			var loadedConfiguration drupalFixture
			metadata, loadError := loader.LoadConfiguration("", testCase.defaultValues, &loadedConfiguration)
			require.NoError(testInstance, loadError)

			require.Equal(testInstance, testCase.expectedVersion, loadedConfiguration.Drupal.Version)
			require.Equal(testInstance, testCase.expectedAlias, loadedConfiguration.Drupal.Drush.Alias)
			require.Equal(testInstance, testCase.expectedExclusions, loadedConfiguration.Drupal.Site.EnableAllExclude)
			if testCase.expectConfigFileUse {
				require.Equal(testInstance, expectedConfigFile, metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderSearchOrder(testInstance *testing.T) {
	testCases := []struct {
		name              string
		populated         []int
		expectedDirectory int
		expectedVersion   string
	}{
		{name: "first directory wins", populated: []int{0, 1, 2}, expectedDirectory: 0, expectedVersion: "8.0.0"},
		{name: "falls through to user directory", populated: []int{1, 2}, expectedDirectory: 1, expectedVersion: "9.0.0"},
		{name: "falls through to home directory", populated: []int{2}, expectedDirectory: 2, expectedVersion: "10.0.0"},
	}
	versionsByDirectory := []string{"8.0.0", "9.0.0", "10.0.0"}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory := testInstance.TempDir()
			directories := []string{
				filepath.Join(rootDirectory, "project"),
				filepath.Join(rootDirectory, "xdg", "drutask"),
				filepath.Join(rootDirectory, "home", ".drutask"),
			}
			for _, directoryIndex := range testCase.populated {
				writeConfigurationFile(testInstance, directories[directoryIndex], "drupal:\n  version: "+versionsByDirectory[directoryIndex]+"\n")
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, directories)

			var loadedConfiguration drupalFixture
			metadata, loadError := loader.LoadConfiguration("", nil, &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedVersion, loadedConfiguration.Drupal.Version)
			require.Equal(testInstance, filepath.Join(directories[testCase.expectedDirectory], testConfigFileNameConstant), metadata.ConfigFileUsed)
		})
	}
}

func TestConfigurationLoaderExplicitFile(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeConfigurationFile(testInstance, searchDirectory, "drupal:\n  version: 8.9.20\n")
	explicitPath := writeConfigurationFile(testInstance, filepath.Join(testInstance.TempDir(), "explicit"), "drupal:\n  version: 9.5.11\n")

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{searchDirectory})

	var loadedConfiguration drupalFixture
	metadata, loadError := loader.LoadConfiguration(explicitPath, nil, &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "9.5.11", loadedConfiguration.Drupal.Version)
	require.Equal(testInstance, explicitPath, metadata.ConfigFileUsed)
}

func TestConfigurationLoaderErrors(testInstance *testing.T) {
	testCases := []struct {
		name         string
		prepare      func(testInstance *testing.T) (string, []string)
		target       any
		expectTarget bool
	}{
		{
			name: "missing explicit file",
			prepare: func(testInstance *testing.T) (string, []string) {
				return filepath.Join(testInstance.TempDir(), "absent.yaml"), nil
			},
			target: &drupalFixture{},
		},
		{
			name: "malformed search file",
			prepare: func(testInstance *testing.T) (string, []string) {
				searchDirectory := testInstance.TempDir()
				writeConfigurationFile(testInstance, searchDirectory, "drupal: [unterminated\n")
				return "", []string{searchDirectory}
			},
			target: &drupalFixture{},
		},
		{
			name: "nil target",
			prepare: func(testInstance *testing.T) (string, []string) {
				return "", nil
			},
			target:       nil,
			expectTarget: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			explicitPath, searchPaths := testCase.prepare(testInstance)
			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, searchPaths)

			_, loadError := loader.LoadConfiguration(explicitPath, nil, testCase.target)
			require.Error(testInstance, loadError)
			if testCase.expectTarget {
				require.ErrorIs(testInstance, loadError, utils.ErrConfigurationTargetMissing)
			}
		})
	}
}
