package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	configNamespaceUseNameConstant                                = "config"
	configNamespaceShortDescriptionConstant                       = "Configuration commands"
	configShowUseNameConstant                                     = "show"
	configShowShortDescriptionConstant                            = "Print the effective configuration as YAML"
	configInitUseNameConstant                                     = "init"
	configInitShortDescriptionConstant                            = "Write the default configuration file"
	configInitLongDescriptionConstant                             = "config init writes the embedded default configuration to ./config.yaml (scope local) or to the user configuration directory (scope user: $XDG_CONFIG_HOME/drutask/config.yaml, falling back to ~/.drutask/config.yaml)."
	configurationInitializationScopeFlagNameConstant              = "scope"
	configurationInitializationScopeFlagUsageConstant             = "Where to write the configuration file (local or user)"
	configurationInitializationForceFlagNameConstant              = "force"
	configurationInitializationForceFlagUsageConstant             = "Overwrite an existing configuration file"
	configurationInitializationScopeLocalConstant                 = "local"
	configurationInitializationScopeUserConstant                  = "user"
	configurationInitializationUnsupportedScopeTemplateConstant   = "unsupported initialization scope %q"
	configurationInitializationHomeDirectoryErrorTemplateConstant = "unable to determine user home directory: %w"
	configurationInitializationContentUnavailableErrorConstant    = "embedded configuration content is unavailable"
	configurationInitializationDirectoryErrorTemplateConstant     = "unable to ensure configuration directory %s: %w"
	configurationInitializationExistingFileTemplateConstant       = "configuration file already exists at %s (use --force to overwrite)"
	configurationInitializationWriteErrorTemplateConstant         = "unable to write configuration file %s: %w"
	configurationInitializationSuccessMessageConstant             = "configuration file created"
	configurationInitializationReportTemplateConstant             = "configuration written to %s\n"
	configurationRenderErrorTemplateConstant                      = "unable to render configuration: %w"
	configurationDirectoryPermissionConstant                      = os.FileMode(0o755)
	configurationFilePermissionConstant                           = os.FileMode(0o600)
)

type configurationInitializationPlan struct {
	DirectoryPath string
	FilePath      string
}

func (application *Application) newConfigCommand() *cobra.Command {
	namespaceCommand := newNamespaceCommand(configNamespaceUseNameConstant, configNamespaceShortDescriptionConstant)

	showCommand := &cobra.Command{
		Use:           configShowUseNameConstant,
		Short:         configShowShortDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			rendered, renderError := yaml.Marshal(application.configuration)
			if renderError != nil {
				return fmt.Errorf(configurationRenderErrorTemplateConstant, renderError)
			}
			_, writeError := command.OutOrStdout().Write(rendered)
			return writeError
		},
	}

	var initializationScope string
	var initializationForced bool
	initCommand := &cobra.Command{
		Use:           configInitUseNameConstant,
		Short:         configInitShortDescriptionConstant,
		Long:          configInitLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			initializationPlan, planError := application.resolveConfigurationInitializationPlan(initializationScope)
			if planError != nil {
				return planError
			}
			configurationContent, _ := EmbeddedDefaultConfiguration()
			if writeError := application.writeConfigurationFile(initializationPlan, configurationContent, initializationForced); writeError != nil {
				return writeError
			}
			application.logger.Info(configurationInitializationSuccessMessageConstant, zap.String(configurationFileFieldConstant, initializationPlan.FilePath))
			_, reportError := fmt.Fprintf(command.OutOrStdout(), configurationInitializationReportTemplateConstant, initializationPlan.FilePath)
			return reportError
		},
	}
	initCommand.Flags().StringVar(&initializationScope, configurationInitializationScopeFlagNameConstant, configurationInitializationScopeLocalConstant, configurationInitializationScopeFlagUsageConstant)
	initCommand.Flags().BoolVar(&initializationForced, configurationInitializationForceFlagNameConstant, false, configurationInitializationForceFlagUsageConstant)

	namespaceCommand.AddCommand(showCommand, initCommand)
	return namespaceCommand
}

func (application *Application) resolveConfigurationInitializationPlan(initializationScope string) (configurationInitializationPlan, error) {
	switch strings.ToLower(strings.TrimSpace(initializationScope)) {
	case "", configurationInitializationScopeLocalConstant:
		return configurationInitializationPlan{
			DirectoryPath: defaultConfigurationSearchPathConstant,
			FilePath:      configurationFileNameConstant,
		}, nil
	case configurationInitializationScopeUserConstant:
		userDirectoryPaths := application.resolveUserConfigurationDirectoryPaths()
		if len(userDirectoryPaths) == 0 {
			return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationHomeDirectoryErrorTemplateConstant, os.ErrNotExist)
		}
		return configurationInitializationPlan{
			DirectoryPath: userDirectoryPaths[0],
			FilePath:      filepath.Join(userDirectoryPaths[0], configurationFileNameConstant),
		}, nil
	default:
		return configurationInitializationPlan{}, fmt.Errorf(configurationInitializationUnsupportedScopeTemplateConstant, strings.TrimSpace(initializationScope))
	}
}

func (application *Application) writeConfigurationFile(initializationPlan configurationInitializationPlan, configurationContent []byte, forced bool) error {
	if len(configurationContent) == 0 {
		return errors.New(configurationInitializationContentUnavailableErrorConstant)
	}

	if directoryError := application.fileSystem.MkdirAll(initializationPlan.DirectoryPath, configurationDirectoryPermissionConstant); directoryError != nil {
		return fmt.Errorf(configurationInitializationDirectoryErrorTemplateConstant, initializationPlan.DirectoryPath, directoryError)
	}

	exists, existsError := application.fileSystem.Exists(initializationPlan.FilePath)
	if existsError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, existsError)
	}
	if exists && !forced {
		return fmt.Errorf(configurationInitializationExistingFileTemplateConstant, initializationPlan.FilePath)
	}

	if writeError := application.fileSystem.WriteFile(initializationPlan.FilePath, configurationContent, configurationFilePermissionConstant); writeError != nil {
		return fmt.Errorf(configurationInitializationWriteErrorTemplateConstant, initializationPlan.FilePath, writeError)
	}
	return nil
}
