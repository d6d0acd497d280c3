package execshell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	drushCommandNameStringConstant    = "vendor/bin/drush"
	curlCommandNameStringConstant     = "curl"
	commandStartMessageConstant       = "command execution starting"
	commandSuccessMessageConstant     = "command execution completed"
	commandFailureMessageConstant     = "command returned non-zero status"
	commandRunnerErrorMessageConstant = "command execution error"
	commandNameFieldNameConstant      = "command"
	commandArgumentsFieldNameConstant = "arguments"
	exitCodeFieldNameConstant         = "exit_code"
	standardErrorFieldNameConstant    = "stderr"
	elapsedFieldNameConstant          = "elapsed"
	quotedArgumentCharactersConstant  = " \t\n\"'"
)

// CommandName identifies an executable, either a bare name resolved through PATH or a project-relative path.
type CommandName string

// Default executables.
const (
	CommandDrush CommandName = CommandName(drushCommandNameStringConstant)
	CommandCurl  CommandName = CommandName(curlCommandNameStringConstant)
)

// CommandDetails describes command invocation properties.
type CommandDetails struct {
	Arguments []string
	// StandardInput is fed to the process and never rendered in logs or reports.
	StandardInput []byte
	// EchoOutput mirrors the process output to the controlling terminal.
	EchoOutput bool
}

// ShellCommand is one executable invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line for reports; arguments containing whitespace or quotes are quoted.
func (command ShellCommand) String() string {
	var builder strings.Builder
	builder.WriteString(string(command.Name))
	for _, argument := range command.Details.Arguments {
		builder.WriteByte(' ')
		if len(argument) == 0 || strings.ContainsAny(argument, quotedArgumentCharactersConstant) {
			builder.WriteString(fmt.Sprintf("%q", argument))
			continue
		}
		builder.WriteString(argument)
	}
	return builder.String()
}

// ExecutionResult captures observable command results.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor runs commands through a CommandRunner and logs each invocation.
// A non-zero exit becomes a CommandFailedError so callers only inspect successful output.
type ShellExecutor struct {
	commandRunner        CommandRunner
	logger               *zap.Logger
	humanReadableLogging bool
	messageFormatter     CommandMessageFormatter
	clock                func() time.Time
}

// NewShellExecutor builds an executor for the provided runner and logger.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner, humanReadableLogging bool) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		commandRunner:        commandRunner,
		logger:               logger,
		humanReadableLogging: humanReadableLogging,
		messageFormatter:     CommandMessageFormatter{},
		clock:                time.Now,
	}, nil
}

// Execute runs the command and returns its output when it exits with code zero.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(strings.TrimSpace(string(command.Name))) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	executor.logStarted(command)
	startedAt := executor.clock()
	executionResult, runnerError := executor.commandRunner.Run(executionContext, command)
	elapsed := executor.clock().Sub(startedAt)

	switch {
	case runnerError != nil:
		executor.logRunnerError(command, runnerError, elapsed)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runnerError}
	case executionResult.ExitCode != 0:
		executor.logNonZeroExit(command, executionResult, elapsed)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	default:
		executor.logCompleted(command, elapsed)
		return executionResult, nil
	}
}

func (executor *ShellExecutor) logStarted(command ShellCommand) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildStartedMessage(command))
		return
	}
	executor.logger.Info(commandStartMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Strings(commandArgumentsFieldNameConstant, command.Details.Arguments),
	)
}

func (executor *ShellExecutor) logRunnerError(command ShellCommand, runnerError error, elapsed time.Duration) {
	if executor.humanReadableLogging {
		executor.logger.Error(executor.messageFormatter.BuildExecutionFailureMessage(command, runnerError))
		return
	}
	executor.logger.Error(commandRunnerErrorMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Duration(elapsedFieldNameConstant, elapsed),
		zap.Error(runnerError),
	)
}

func (executor *ShellExecutor) logNonZeroExit(command ShellCommand, executionResult ExecutionResult, elapsed time.Duration) {
	if executor.humanReadableLogging {
		executor.logger.Warn(executor.messageFormatter.BuildFailureMessage(command, executionResult))
		return
	}
	executor.logger.Warn(commandFailureMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
		zap.Duration(elapsedFieldNameConstant, elapsed),
		zap.String(standardErrorFieldNameConstant, executionResult.StandardError),
	)
}

func (executor *ShellExecutor) logCompleted(command ShellCommand, elapsed time.Duration) {
	if executor.humanReadableLogging {
		executor.logger.Info(executor.messageFormatter.BuildSuccessMessage(command))
		return
	}
	executor.logger.Info(commandSuccessMessageConstant,
		zap.String(commandNameFieldNameConstant, string(command.Name)),
		zap.Duration(elapsedFieldNameConstant, elapsed),
	)
}
