package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant           = "_"
	configurationKeySeparatorConstant         = "."
	embeddedConfigurationReadErrorTemplate    = "unable to read embedded configuration: %w"
	configurationFileReadErrorTemplate        = "unable to read configuration file %s: %w"
	configurationSearchErrorTemplate          = "unable to read configuration: %w"
	configurationDecodeErrorTemplate          = "unable to decode configuration: %w"
	configurationTargetMissingMessageConstant = "configuration target not provided"
	configurationTagNameConstant              = "mapstructure"
)

// ErrConfigurationTargetMissing indicates a nil decode target.
var ErrConfigurationTargetMissing = errors.New(configurationTargetMissingMessageConstant)

// LoadedConfiguration reports metadata about the configuration that was applied.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// ConfigurationLoader layers defaults, embedded configuration, a configuration file and environment overrides.
type ConfigurationLoader struct {
	configurationName  string
	configurationType  string
	environmentPrefix  string
	searchPaths        []string
	embeddedContent    []byte
	embeddedFormatType string
}

// NewConfigurationLoader constructs a loader searching the provided directories in order.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string{}, searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration content merged beneath any file configuration.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(content []byte, formatType string) {
	loader.embeddedContent = append([]byte{}, content...)
	loader.embeddedFormatType = formatType
}

// LoadConfiguration resolves configuration values into target.
// An explicit configuration file path takes precedence over the search paths.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, target any) (LoadedConfiguration, error) {
	if target == nil {
		return LoadedConfiguration{}, ErrConfigurationTargetMissing
	}

	configurationViper := viper.New()
	configurationViper.SetEnvPrefix(loader.environmentPrefix)
	configurationViper.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	configurationViper.AutomaticEnv()

	for key, value := range defaultValues {
		configurationViper.SetDefault(key, value)
	}

	if len(loader.embeddedContent) > 0 {
		formatType := loader.embeddedFormatType
		if len(formatType) == 0 {
			formatType = loader.configurationType
		}
		configurationViper.SetConfigType(formatType)
		if readError := configurationViper.ReadConfig(bytes.NewReader(loader.embeddedContent)); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationReadErrorTemplate, readError)
		}
	}

	configFileUsed := ""
	trimmedPath := strings.TrimSpace(configurationFilePath)
	if len(trimmedPath) > 0 {
		configurationViper.SetConfigFile(trimmedPath)
		if mergeError := configurationViper.MergeInConfig(); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(configurationFileReadErrorTemplate, trimmedPath, mergeError)
		}
		configFileUsed = configurationViper.ConfigFileUsed()
	} else if len(loader.searchPaths) > 0 {
		configurationViper.SetConfigName(loader.configurationName)
		configurationViper.SetConfigType(loader.configurationType)
		for _, searchPath := range loader.searchPaths {
			configurationViper.AddConfigPath(searchPath)
		}
		mergeError := configurationViper.MergeInConfig()
		var notFoundError viper.ConfigFileNotFoundError
		switch {
		case mergeError == nil:
			configFileUsed = configurationViper.ConfigFileUsed()
		case errors.As(mergeError, &notFoundError):
		default:
			return LoadedConfiguration{}, fmt.Errorf(configurationSearchErrorTemplate, mergeError)
		}
	}

	decodeError := configurationViper.Unmarshal(target, func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = configurationTagNameConstant
		decoderConfig.WeaklyTypedInput = true
		decoderConfig.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplate, decodeError)
	}

	return LoadedConfiguration{ConfigFileUsed: configFileUsed}, nil
}
