package cli

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"

	"github.com/tyemirov/drutask/internal/drupal"
	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	duplicateOperationConfigurationTemplateConstant = "duplicate configuration for operation %q"
	missingOperationConfigurationTemplateConstant   = "missing configuration for operation %q"
	unknownOperationConfigurationTemplateConstant   = "configuration references unknown operation %q"
	operationOptionsDecodeErrorTemplateConstant     = "unable to decode defaults for operation %q: %w"
	optionListSeparatorConstant                     = ","
)

// DuplicateOperationConfigurationError indicates that the configuration file defines the same operation multiple times.
type DuplicateOperationConfigurationError struct {
	OperationName string
}

// Error implements the error interface.
func (errorDetails DuplicateOperationConfigurationError) Error() string {
	return fmt.Sprintf(duplicateOperationConfigurationTemplateConstant, errorDetails.OperationName)
}

// MissingOperationConfigurationError indicates that no defaults were configured for the operation.
type MissingOperationConfigurationError struct {
	OperationName string
}

// Error implements the error interface.
func (errorDetails MissingOperationConfigurationError) Error() string {
	return fmt.Sprintf(missingOperationConfigurationTemplateConstant, errorDetails.OperationName)
}

// UnknownOperationConfigurationError indicates defaults configured for an operation drutask does not provide.
type UnknownOperationConfigurationError struct {
	OperationName string
}

// Error implements the error interface.
func (errorDetails UnknownOperationConfigurationError) Error() string {
	return fmt.Sprintf(unknownOperationConfigurationTemplateConstant, errorDetails.OperationName)
}

// ApplicationConfiguration describes the persisted configuration for the drutask CLI.
type ApplicationConfiguration struct {
	Common     ApplicationCommonConfiguration      `mapstructure:"common" yaml:"common"`
	Drupal     drupal.Configuration                `mapstructure:"drupal" yaml:"drupal"`
	Operations []ApplicationOperationConfiguration `mapstructure:"operations" yaml:"operations"`
}

// ApplicationCommonConfiguration stores logging defaults shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// ApplicationOperationConfiguration captures reusable operation defaults from the configuration file.
type ApplicationOperationConfiguration struct {
	Name    string         `mapstructure:"operation" yaml:"operation"`
	Options map[string]any `mapstructure:"with" yaml:"with"`
}

// OperationConfigurations stores reusable operation defaults indexed by normalized operation name.
type OperationConfigurations struct {
	entries map[string]map[string]any
}

func newOperationConfigurations(definitions []ApplicationOperationConfiguration) (OperationConfigurations, error) {
	entries := make(map[string]map[string]any)
	for definitionIndex := range definitions {
		normalizedName := normalizeOperationName(definitions[definitionIndex].Name)
		if len(normalizedName) == 0 {
			continue
		}
		if _, exists := entries[normalizedName]; exists {
			return OperationConfigurations{}, DuplicateOperationConfigurationError{OperationName: normalizedName}
		}

		options := make(map[string]any, len(definitions[definitionIndex].Options))
		for optionKey, optionValue := range definitions[definitionIndex].Options {
			options[optionKey] = optionValue
		}
		entries[normalizedName] = options
	}
	return OperationConfigurations{entries: entries}, nil
}

// Validate rejects defaults configured for operations outside knownOperations.
func (configurations OperationConfigurations) Validate(knownOperations []string) error {
	known := make(map[string]struct{}, len(knownOperations))
	for _, operationName := range knownOperations {
		known[normalizeOperationName(operationName)] = struct{}{}
	}

	configuredNames := make([]string, 0, len(configurations.entries))
	for operationName := range configurations.entries {
		configuredNames = append(configuredNames, operationName)
	}
	sort.Strings(configuredNames)

	for _, operationName := range configuredNames {
		if _, exists := known[operationName]; !exists {
			return UnknownOperationConfigurationError{OperationName: operationName}
		}
	}
	return nil
}

// Lookup returns the configuration options for the provided operation name or an error if the configuration is absent.
func (configurations OperationConfigurations) Lookup(operationName string) (map[string]any, error) {
	normalizedName := normalizeOperationName(operationName)
	options, exists := configurations.entries[normalizedName]
	if len(normalizedName) == 0 || !exists {
		return nil, MissingOperationConfigurationError{OperationName: normalizedName}
	}

	duplicatedOptions := make(map[string]any, len(options))
	for optionKey, optionValue := range options {
		duplicatedOptions[optionKey] = optionValue
	}
	return duplicatedOptions, nil
}

// Options decodes the configured defaults of an operation into string options.
// Lists are joined with commas; an operation without configured defaults yields empty options.
func (configurations OperationConfigurations) Options(operationName string) (orchestrator.Options, error) {
	rawOptions, lookupError := configurations.Lookup(operationName)
	if lookupError != nil {
		return orchestrator.Options{}, nil
	}

	decoded := make(map[string]string, len(rawOptions))
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		WeaklyTypedInput: true,
		DecodeHook:       joinListHookFunc(),
	})
	if decoderError != nil {
		return nil, fmt.Errorf(operationOptionsDecodeErrorTemplateConstant, normalizeOperationName(operationName), decoderError)
	}
	if decodeError := decoder.Decode(rawOptions); decodeError != nil {
		return nil, fmt.Errorf(operationOptionsDecodeErrorTemplateConstant, normalizeOperationName(operationName), decodeError)
	}
	return orchestrator.Options(decoded), nil
}

// joinListHookFunc renders YAML sequences as the comma separated form operations accept.
func joinListHookFunc() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType.Kind() != reflect.String {
			return data, nil
		}
		if sourceType.Kind() != reflect.Slice && sourceType.Kind() != reflect.Array {
			return data, nil
		}

		listValue := reflect.ValueOf(data)
		entries := make([]string, 0, listValue.Len())
		for index := 0; index < listValue.Len(); index++ {
			entry := strings.TrimSpace(fmt.Sprint(listValue.Index(index).Interface()))
			if len(entry) == 0 {
				continue
			}
			entries = append(entries, entry)
		}
		return strings.Join(entries, optionListSeparatorConstant), nil
	}
}

func normalizeOperationName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
