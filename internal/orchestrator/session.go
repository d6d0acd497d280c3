package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tyemirov/drutask/internal/execshell"
)

const (
	gateFailureReasonTemplateConstant = "%s: %s"
	probeDescriptionConstant          = "probe"
	gateDescriptionConstant           = "gate"
)

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Session is the planning-time capability handed to an operation. It runs probes and
// gating commands, records notices, and exposes read access to the file system.
type Session struct {
	executor   CommandExecutor
	fileSystem FileSystem
	notices    []string
	probes     []StepResult
}

// NewSession constructs a Session. Runner builds one per run; tests may build their own.
func NewSession(executor CommandExecutor, fileSystem FileSystem) *Session {
	return &Session{executor: executor, fileSystem: fileSystem}
}

// Capture runs a silent probe and returns its standard output.
// A non-zero exit is returned as a *StepFailedError with index -1.
func (session *Session) Capture(executionContext context.Context, command execshell.ShellCommand) (string, error) {
	command.Details.EchoOutput = false
	result, executionError := session.run(executionContext, probeDescriptionConstant, command)
	if executionError != nil {
		return "", newStepFailedError(probeStepIndexConstant, Step{Description: probeDescriptionConstant, Kind: StepKindCommand, Command: command}, executionError)
	}
	return result.StandardOutput, nil
}

// Prepare runs a gating side-effect command. A failure is reported as a *PreconditionError.
func (session *Session) Prepare(executionContext context.Context, command execshell.ShellCommand) error {
	command.Details.EchoOutput = true
	_, executionError := session.run(executionContext, gateDescriptionConstant, command)
	if executionError == nil {
		return nil
	}
	detail := executionError.Error()
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		detail = commandFailure.Error()
	} else if unwrapped := errors.Unwrap(executionError); unwrapped != nil {
		detail = fmt.Sprintf(gateFailureReasonTemplateConstant, executionError.Error(), unwrapped.Error())
	}
	return &PreconditionError{Reason: detail}
}

// Notice records a unit of work that was already satisfied.
func (session *Session) Notice(messageTemplate string, arguments ...any) {
	session.notices = append(session.notices, fmt.Sprintf(messageTemplate, arguments...))
}

// Exists reports whether path exists.
func (session *Session) Exists(path string) (bool, error) {
	if session.fileSystem == nil {
		return false, ErrFileSystemNotConfigured
	}
	return session.fileSystem.Exists(path)
}

// ReadLines returns the lines of the file at path.
func (session *Session) ReadLines(path string) ([]string, error) {
	if session.fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return session.fileSystem.ReadLines(path)
}

// Notices returns the recorded notices in order.
func (session *Session) Notices() []string {
	return append([]string{}, session.notices...)
}

// Probes returns the recorded probe results in order.
func (session *Session) Probes() []StepResult {
	return append([]StepResult{}, session.probes...)
}

func (session *Session) run(executionContext context.Context, description string, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	if session.executor == nil {
		return execshell.ExecutionResult{}, ErrExecutorNotConfigured
	}
	startTime := time.Now()
	result, executionError := session.executor.Execute(executionContext, command)
	probeResult := StepResult{
		Index:       len(session.probes),
		Description: description,
		Command:     command.String(),
		ExitCode:    result.ExitCode,
		Output:      strings.TrimRight(result.StandardOutput, "\n"),
		Elapsed:     time.Since(startTime),
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		probeResult.ExitCode = commandFailure.Result.ExitCode
	}
	session.probes = append(session.probes, probeResult)
	return result, executionError
}
