package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant           = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant    = "shell executor command runner not configured"
	commandNameMissingMessageConstant            = "shell command name not provided"
	commandFailureErrorMessageTemplateConstant   = "%s command exited with code %d"
	commandFailureArgumentsTemplateConstant      = "%s (%s)"
	commandFailureDetailTemplateConstant         = "%s: %s"
	commandFailureDetailSeparatorConstant        = " | "
	commandExecutionErrorMessageTemplateConstant = "%s command execution failed"
	maximumFailureDetailLinesConstant            = 3
)

var (
	// ErrLoggerNotConfigured indicates the logger dependency was missing.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the command runner dependency was missing.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandNameMissing indicates the command name was not provided.
	ErrCommandNameMissing = errors.New(commandNameMissingMessageConstant)
)

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the executable, exit code, arguments and the first lines of diagnostic output.
func (commandError CommandFailedError) Error() string {
	message := fmt.Sprintf(commandFailureErrorMessageTemplateConstant, commandError.Command.Name, commandError.Result.ExitCode)
	if len(commandError.Command.Details.Arguments) > 0 {
		message = fmt.Sprintf(commandFailureArgumentsTemplateConstant, message, strings.Join(commandError.Command.Details.Arguments, " "))
	}

	detailLines := leadingOutputLines(commandError.Result.StandardError, maximumFailureDetailLinesConstant)
	if len(detailLines) == 0 {
		detailLines = leadingOutputLines(commandError.Result.StandardOutput, maximumFailureDetailLinesConstant)
	}
	if len(detailLines) == 0 {
		return message
	}
	return fmt.Sprintf(commandFailureDetailTemplateConstant, message, strings.Join(detailLines, commandFailureDetailSeparatorConstant))
}

// CommandExecutionError wraps a command the runner could not start or wait for.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error names the command that could not run.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorMessageTemplateConstant, executionError.Command.Name)
}

// Unwrap exposes the underlying error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// leadingOutputLines returns the non-blank trimmed lines found within the first limit lines of output.
func leadingOutputLines(output string, limit int) []string {
	trimmedOutput := strings.TrimSpace(output)
	if len(trimmedOutput) == 0 {
		return nil
	}
	lines := strings.Split(trimmedOutput, "\n")
	if len(lines) > limit {
		lines = lines[:limit]
	}
	nonBlankLines := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmedLine := strings.TrimSpace(line); len(trimmedLine) > 0 {
			nonBlankLines = append(nonBlankLines, trimmedLine)
		}
	}
	return nonBlankLines
}
