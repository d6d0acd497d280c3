package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/drutask/internal/execshell"
	"github.com/tyemirov/drutask/internal/orchestrator"
	"github.com/tyemirov/drutask/internal/utils"
	flagutils "github.com/tyemirov/drutask/internal/utils/flags"
	"github.com/tyemirov/drutask/internal/version"
)

const (
	applicationNameConstant                            = "drutask"
	applicationShortDescriptionConstant                = "Drupal project task runner"
	applicationLongDescriptionConstant                 = "drutask runs the maintenance tasks of a Drupal project (module toggling, sample data, test accounts, Backstop cookies, backups and QA tools) by orchestrating drush and related tools."
	commonConfigurationKeyConstant                     = "common"
	commonLogLevelConfigKeyConstant                    = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant                   = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant                          = "DRUTASK"
	configurationNameConstant                          = "config"
	configurationTypeConstant                          = "yaml"
	configurationFileNameConstant                      = configurationNameConstant + "." + configurationTypeConstant
	configurationInitializedMessageConstant            = "configuration initialized"
	configurationLogLevelFieldConstant                 = "log_level"
	configurationLogFormatFieldConstant                = "log_format"
	configurationFileFieldConstant                     = "config_file"
	drupalRootFieldConstant                            = "drupal_root"
	xdgConfigHomeEnvironmentVariableConstant           = "XDG_CONFIG_HOME"
	configurationLoadErrorTemplateConstant             = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant                    = "unable to flush logger: %w"
	configurationInitializedConsoleTemplateConstant    = "%s | log level=%s | log format=%s | config file=%s | drupal root=%s"
	defaultConfigurationSearchPathConstant             = "."
	userConfigurationDirectoryNameConstant             = "drutask"
	userHomeConfigurationDirectoryNameConstant         = ".drutask"
	configurationSearchPathEnvironmentVariableConstant = "DRUTASK_CONFIG_SEARCH_PATH"
	versionOutputTemplateConstant                      = "drutask version: %s\n"
	versionCommandUseNameConstant                      = "version"
	versionCommandShortDescriptionConstant             = "Print the drutask version"
	versionCommandLongDescriptionConstant              = "version prints the current drutask release identifier."
)

type loggerOutputsFactory interface {
	CreateLoggerOutputs(utils.LogLevel, utils.LogFormat) (utils.LoggerOutputs, error)
}

// executorFactory builds the command executor used by an operation run.
type executorFactory func(logger *zap.Logger, humanReadableLogging bool, standardOutput io.Writer, standardError io.Writer) (orchestrator.CommandExecutor, error)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand             *cobra.Command
	configurationLoader     *utils.ConfigurationLoader
	loggerFactory           loggerOutputsFactory
	logger                  *zap.Logger
	consoleLogger           *zap.Logger
	configuration           ApplicationConfiguration
	configurationMetadata   utils.LoadedConfiguration
	operationConfigurations OperationConfigurations
	globalFlagValues        *flagutils.GlobalFlagValues
	commandContextAccessor  utils.CommandContextAccessor
	createExecutor          executorFactory
	fileSystem              orchestrator.FileSystem
	versionResolver         func() string
	userHomeDirectory       func() (string, error)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		createExecutor:         newShellCommandExecutor,
		fileSystem:             orchestrator.NewOSFileSystem(),
		versionResolver:        version.Detect,
		userHomeDirectory:      os.UserHomeDir,
	}

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)
	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	cobraCommand.SetContext(context.Background())
	application.globalFlagValues = flagutils.BindGlobalFlags(cobraCommand, flagutils.GlobalFlagValues{})

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, printError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, application.versionResolver())
			return printError
		},
	}
	cobraCommand.AddCommand(versionCommand)
	cobraCommand.AddCommand(application.newDrupalCommand())
	cobraCommand.AddCommand(application.newConfigCommand())

	application.rootCommand = cobraCommand
	return application
}

// Execute runs the configured Cobra command hierarchy with the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with the provided arguments and flushes the loggers.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// ConfigFileUsed returns the configuration file path used during initialization.
func (application *Application) ConfigFileUsed() string {
	return application.configurationMetadata.ConfigFileUsed
}

func newShellCommandExecutor(logger *zap.Logger, humanReadableLogging bool, standardOutput io.Writer, standardError io.Writer) (orchestrator.CommandExecutor, error) {
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(standardOutput, standardError), humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	overrideValue := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentVariableConstant))
	if len(overrideValue) == 0 {
		return append([]string{defaultConfigurationSearchPathConstant}, application.resolveUserConfigurationDirectoryPaths()...)
	}

	overridePaths := strings.FieldsFunc(overrideValue, func(candidate rune) bool {
		return candidate == os.PathListSeparator
	})
	cleanedPaths := make([]string, 0, len(overridePaths))
	for _, pathCandidate := range overridePaths {
		trimmedCandidate := strings.TrimSpace(pathCandidate)
		if len(trimmedCandidate) == 0 {
			continue
		}
		cleanedPaths = append(cleanedPaths, trimmedCandidate)
	}
	if len(cleanedPaths) == 0 {
		return []string{defaultConfigurationSearchPathConstant}
	}
	return cleanedPaths
}

// resolveUserConfigurationDirectoryPaths lists $XDG_CONFIG_HOME/drutask, then ~/.drutask.
func (application *Application) resolveUserConfigurationDirectoryPaths() []string {
	directoryPaths := make([]string, 0, 2)

	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		directoryPaths = append(directoryPaths, filepath.Join(xdgConfigHome, userConfigurationDirectoryNameConstant))
	}

	homeDirectoryLookup := application.userHomeDirectory
	if homeDirectoryLookup == nil {
		homeDirectoryLookup = os.UserHomeDir
	}
	if userHomeDirectoryPath, userHomeDirectoryError := homeDirectoryLookup(); userHomeDirectoryError == nil && len(strings.TrimSpace(userHomeDirectoryPath)) > 0 {
		directoryPaths = append(directoryPaths, filepath.Join(userHomeDirectoryPath, userHomeConfigurationDirectoryNameConstant))
	}

	return directoryPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	application.configuration = ApplicationConfiguration{}
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.globalFlagValues.ConfigurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	operationConfigurations, configurationBuildError := newOperationConfigurations(application.configuration.Operations)
	if configurationBuildError != nil {
		return configurationBuildError
	}
	if validationError := operationConfigurations.Validate(operationNames()); validationError != nil {
		return validationError
	}
	application.operationConfigurations = operationConfigurations

	application.applyGlobalFlagOverrides(command)
	application.configuration.Drupal = application.configuration.Drupal.Sanitize()

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	if application.logger == nil {
		application.logger = zap.NewNop()
	}
	application.consoleLogger = loggerOutputs.ConsoleLogger
	if application.consoleLogger == nil {
		application.consoleLogger = zap.NewNop()
	}

	application.logConfigurationInitialization()

	if command != nil {
		parentContext := command.Context()
		if parentContext == nil {
			parentContext = context.Background()
		}
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(parentContext, application.configurationMetadata.ConfigFileUsed)
		updatedContext = application.commandContextAccessor.WithLogLevel(updatedContext, application.configuration.Common.LogLevel)
		updatedContext = application.commandContextAccessor.WithDrupalRoot(updatedContext, application.configuration.Drupal.Root)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) logConfigurationInitialization() {
	if !strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogLevel), string(utils.LogLevelDebug)) {
		return
	}

	if application.humanReadableLoggingEnabled() {
		application.consoleLogger.Debug(fmt.Sprintf(
			configurationInitializedConsoleTemplateConstant,
			configurationInitializedMessageConstant,
			application.configuration.Common.LogLevel,
			application.configuration.Common.LogFormat,
			application.configurationMetadata.ConfigFileUsed,
			application.configuration.Drupal.Root,
		))
		return
	}

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(drupalRootFieldConstant, application.configuration.Drupal.Root),
	)
}

func (application *Application) flushLogger() error {
	if syncError := syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return syncLoggerInstance(application.consoleLogger)
}

// benignSyncErrors are returned by Sync on terminals and pipes that cannot be flushed.
var benignSyncErrors = []error{syscall.ENOTSUP, syscall.EINVAL, syscall.EBADF, syscall.ENOTTY}

func syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	if syncError == nil {
		return nil
	}
	for _, benignError := range benignSyncErrors {
		if errors.Is(syncError, benignError) {
			return nil
		}
	}
	return syncError
}

// applyGlobalFlagOverrides copies explicitly set persistent flags over the loaded configuration.
func (application *Application) applyGlobalFlagOverrides(command *cobra.Command) {
	overrides := []struct {
		flagName string
		target   *string
	}{
		{flagName: flagutils.LogLevelFlagName, target: &application.configuration.Common.LogLevel},
		{flagName: flagutils.LogFormatFlagName, target: &application.configuration.Common.LogFormat},
		{flagName: flagutils.DrupalRootFlagName, target: &application.configuration.Drupal.Root},
	}
	for _, override := range overrides {
		if flagValue, changed, lookupError := flagutils.StringFlag(command, override.flagName); lookupError == nil && changed {
			*override.target = flagValue
		}
	}
}

func newNamespaceCommand(use string, shortDescription string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         shortDescription,
		Aliases:       aliases,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
}
