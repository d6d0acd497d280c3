package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tyemirov/drutask/internal/drupal"
	"github.com/tyemirov/drutask/internal/orchestrator"
	flagutils "github.com/tyemirov/drutask/internal/utils/flags"
)

const (
	drupalNamespaceUseNameConstant          = "drupal"
	drupalNamespaceAliasConstant            = "d"
	drupalNamespaceShortDescriptionConstant = "Drupal project tasks"
	noticeReportTemplateConstant            = "NOTICE: %s\n"
	skippedReportTemplateConstant           = "SKIPPED: %s: %s\n"
	completedReportTemplateConstant         = "COMPLETED: %s (%d steps)\n"
	failedReportTemplateConstant            = "FAILED: %s: %s (%s)\n"
	operationFailedErrorTemplateConstant    = "%s failed: %w"
	runnerCreationErrorTemplateConstant     = "unable to prepare %s: %w"
)

// operationNames lists the operations exposed under the drupal namespace in registry order.
func operationNames() []string {
	operations := drupal.NewOperations(drupal.DefaultConfiguration())
	names := make([]string, 0, len(operations))
	for _, operation := range operations {
		names = append(names, operation.Name())
	}
	return names
}

func (application *Application) newDrupalCommand() *cobra.Command {
	namespaceCommand := newNamespaceCommand(drupalNamespaceUseNameConstant, drupalNamespaceShortDescriptionConstant, drupalNamespaceAliasConstant)
	for _, operation := range drupal.NewOperations(drupal.DefaultConfiguration()) {
		namespaceCommand.AddCommand(application.newOperationCommand(operation))
	}
	return namespaceCommand
}

func (application *Application) newOperationCommand(operation orchestrator.Operation) *cobra.Command {
	operationName := operation.Name()
	definitions := operation.Options()

	flagDefinitions := make([]flagutils.OptionFlagDefinition, 0, len(definitions))
	optionNames := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		flagDefinitions = append(flagDefinitions, flagutils.OptionFlagDefinition{Name: definition.Name, Usage: definition.Usage, Default: definition.Default})
		optionNames = append(optionNames, definition.Name)
	}

	command := &cobra.Command{
		Use:           operationName,
		Short:         operation.Description(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runOperation(command, operationName, optionNames)
		},
	}
	flagutils.BindOptionFlags(command, flagDefinitions)
	return command
}

// runOperation layers configured operation defaults beneath explicit flags and runs the operation.
func (application *Application) runOperation(command *cobra.Command, operationName string, optionNames []string) error {
	options, optionsError := application.operationConfigurations.Options(operationName)
	if optionsError != nil {
		return optionsError
	}
	flagValues, flagError := flagutils.ChangedOptionValues(command, optionNames)
	if flagError != nil {
		return flagError
	}
	for optionName, optionValue := range flagValues {
		options[optionName] = optionValue
	}

	configuration := application.configuration.Drupal
	if drupalRoot, available := application.commandContextAccessor.DrupalRoot(command.Context()); available {
		configuration.Root = drupalRoot
	}

	runner, runnerError := application.newRunner(command, configuration)
	if runnerError != nil {
		return fmt.Errorf(runnerCreationErrorTemplateConstant, operationName, runnerError)
	}

	outcome, runError := runner.Run(command.Context(), operationName, options)
	writeOutcomeReport(command.OutOrStdout(), command.ErrOrStderr(), outcome)
	if runError != nil {
		return fmt.Errorf(operationFailedErrorTemplateConstant, operationName, runError)
	}
	return nil
}

func (application *Application) newRunner(command *cobra.Command, configuration drupal.Configuration) (*orchestrator.Runner, error) {
	registry, registryError := drupal.NewRegistry(configuration)
	if registryError != nil {
		return nil, registryError
	}
	executor, executorError := application.createExecutor(application.logger, application.humanReadableLoggingEnabled(), command.OutOrStdout(), command.ErrOrStderr())
	if executorError != nil {
		return nil, executorError
	}
	return orchestrator.NewRunner(registry, executor, application.fileSystem, application.logger)
}

func writeOutcomeReport(standardOutput io.Writer, standardError io.Writer, outcome orchestrator.Outcome) {
	for _, notice := range outcome.Notices {
		fmt.Fprintf(standardOutput, noticeReportTemplateConstant, notice)
	}

	switch outcome.Status {
	case orchestrator.StatusSkipped:
		fmt.Fprintf(standardOutput, skippedReportTemplateConstant, outcome.Operation, outcome.SkipReason)
	case orchestrator.StatusSucceeded:
		fmt.Fprintf(standardOutput, completedReportTemplateConstant, outcome.Operation, len(outcome.Steps))
	case orchestrator.StatusFailed:
		fmt.Fprintf(standardError, failedReportTemplateConstant, outcome.Operation, outcome.FailedCommand, outcome.FailureKind)
	}
}
