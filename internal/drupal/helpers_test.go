package drupal_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/drutask/internal/drupal"
	"github.com/tyemirov/drutask/internal/execshell"
	"github.com/tyemirov/drutask/internal/orchestrator"
)

type commandRule struct {
	name       execshell.CommandName
	arguments  []string
	output     string
	exitCode   int
	sideEffect func(command execshell.ShellCommand)
	respond    func(command execshell.ShellCommand) string
}

type scriptedExecutor struct {
	rules            []commandRule
	recordedCommands []execshell.ShellCommand
}

func (executor *scriptedExecutor) on(name execshell.CommandName, output string, argumentsPrefix ...string) *scriptedExecutor {
	executor.rules = append(executor.rules, commandRule{name: name, arguments: argumentsPrefix, output: output})
	return executor
}

func (executor *scriptedExecutor) failOn(name execshell.CommandName, exitCode int, argumentsPrefix ...string) *scriptedExecutor {
	executor.rules = append(executor.rules, commandRule{name: name, arguments: argumentsPrefix, exitCode: exitCode})
	return executor
}

func (executor *scriptedExecutor) effectOn(name execshell.CommandName, sideEffect func(command execshell.ShellCommand), argumentsPrefix ...string) *scriptedExecutor {
	executor.rules = append(executor.rules, commandRule{name: name, arguments: argumentsPrefix, sideEffect: sideEffect})
	return executor
}

func (executor *scriptedExecutor) respondOn(name execshell.CommandName, respond func(command execshell.ShellCommand) string, argumentsPrefix ...string) *scriptedExecutor {
	executor.rules = append(executor.rules, commandRule{name: name, arguments: argumentsPrefix, respond: respond})
	return executor
}

func (executor *scriptedExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)
	for ruleIndex := len(executor.rules) - 1; ruleIndex >= 0; ruleIndex-- {
		rule := executor.rules[ruleIndex]
		if !rule.matches(command) {
			continue
		}
		if rule.sideEffect != nil {
			rule.sideEffect(command)
		}
		if rule.exitCode != 0 {
			result := execshell.ExecutionResult{StandardError: "failure", ExitCode: rule.exitCode}
			return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: result}
		}
		if rule.respond != nil {
			return execshell.ExecutionResult{StandardOutput: rule.respond(command)}, nil
		}
		return execshell.ExecutionResult{StandardOutput: rule.output}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (rule commandRule) matches(command execshell.ShellCommand) bool {
	if command.Name != rule.name {
		return false
	}
	if len(command.Details.Arguments) < len(rule.arguments) {
		return false
	}
	for argumentIndex, argument := range rule.arguments {
		if command.Details.Arguments[argumentIndex] != argument {
			return false
		}
	}
	return true
}

func (executor *scriptedExecutor) commandLines() []string {
	lines := make([]string, 0, len(executor.recordedCommands))
	for _, command := range executor.recordedCommands {
		lines = append(lines, command.String())
	}
	return lines
}

type operationHarness struct {
	executor   *scriptedExecutor
	memory     afero.Fs
	fileSystem *orchestrator.AferoFileSystem
	runner     *orchestrator.Runner
}

func newOperationHarness(testInstance *testing.T, configuration drupal.Configuration) *operationHarness {
	testInstance.Helper()
	memory := afero.NewMemMapFs()
	harness := &operationHarness{
		executor:   &scriptedExecutor{},
		memory:     memory,
		fileSystem: orchestrator.NewAferoFileSystem(memory),
	}
	registry, registryError := drupal.NewRegistry(configuration)
	require.NoError(testInstance, registryError)
	runner, runnerError := orchestrator.NewRunner(registry, harness.executor, harness.fileSystem, zap.NewNop())
	require.NoError(testInstance, runnerError)
	harness.runner = runner
	return harness
}

// stepCommands lists the rendered commands of the executed steps.
func stepCommands(outcome orchestrator.Outcome) []string {
	commands := make([]string, 0, len(outcome.Steps))
	for _, step := range outcome.Steps {
		commands = append(commands, step.Command)
	}
	return commands
}

func versionedConfiguration(version string) drupal.Configuration {
	configuration := drupal.DefaultConfiguration()
	configuration.Version = version
	return configuration
}
