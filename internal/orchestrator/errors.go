package orchestrator

import (
	"errors"
	"fmt"

	"github.com/tyemirov/drutask/internal/execshell"
)

const (
	unknownOperationMessageConstant          = "unknown operation"
	unknownOperationTemplateConstant         = "%w %q"
	duplicateOperationTemplateConstant       = "operation %q registered more than once"
	preconditionMessageTemplateConstant      = "%s skipped: %s"
	anonymousPreconditionTemplateConstant    = "skipped: %s"
	stepFailedMessageTemplateConstant        = "step %d (%s) failed: %v"
	probeFailedMessageTemplateConstant       = "probe (%s) failed: %v"
	outputParseMessageTemplateConstant       = "unable to parse %s output: %s"
	outputParseCauseMessageTemplateConstant  = "unable to parse %s output: %s: %v"
	executorNotConfiguredMessageConstant     = "command executor not configured"
	fileSystemNotConfiguredMessageConstant   = "file system not configured"
	registryNotConfiguredMessageConstant     = "operation registry not configured"
	probeStepIndexConstant                   = -1
	unsupportedStepKindMessageConstant       = "unsupported step kind"
	unsupportedFilesystemKindMessageConstant = "unsupported file system operation"
)

var (
	// ErrUnknownOperation indicates the requested operation is not registered.
	ErrUnknownOperation = errors.New(unknownOperationMessageConstant)
	// ErrExecutorNotConfigured indicates the command executor dependency was missing.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates the file system dependency was missing.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrRegistryNotConfigured indicates the operation registry was missing.
	ErrRegistryNotConfigured = errors.New(registryNotConfiguredMessageConstant)
	// ErrUnsupportedStepKind indicates a step carried no executable payload.
	ErrUnsupportedStepKind = errors.New(unsupportedStepKindMessageConstant)
	// ErrUnsupportedFilesystemOperation indicates an unknown file system operation kind.
	ErrUnsupportedFilesystemOperation = errors.New(unsupportedFilesystemKindMessageConstant)
)

// PreconditionError reports a gating condition that does not hold. It is never an error exit.
// Runner fills Operation when the skip surfaces from a run.
type PreconditionError struct {
	Operation string
	Reason    string
}

// Error implements the error interface.
func (preconditionError *PreconditionError) Error() string {
	if len(preconditionError.Operation) == 0 {
		return fmt.Sprintf(anonymousPreconditionTemplateConstant, preconditionError.Reason)
	}
	return fmt.Sprintf(preconditionMessageTemplateConstant, preconditionError.Operation, preconditionError.Reason)
}

// Skip builds a PreconditionError carrying the formatted reason.
func Skip(reasonTemplate string, arguments ...any) error {
	return &PreconditionError{Reason: fmt.Sprintf(reasonTemplate, arguments...)}
}

// StepFailedError reports an external invocation that exited non-zero or could not start.
// Index is -1 for probes executed while planning.
type StepFailedError struct {
	Index       int
	Description string
	Command     string
	ExitCode    int
	Cause       error
}

// Error implements the error interface.
func (stepError *StepFailedError) Error() string {
	if stepError.Index == probeStepIndexConstant {
		return fmt.Sprintf(probeFailedMessageTemplateConstant, stepError.Command, stepError.Cause)
	}
	return fmt.Sprintf(stepFailedMessageTemplateConstant, stepError.Index, stepError.Description, stepError.Cause)
}

// Unwrap exposes the underlying execution error.
func (stepError *StepFailedError) Unwrap() error {
	return stepError.Cause
}

// OutputParseError reports captured output that did not match the expected shape.
type OutputParseError struct {
	Shape  string
	Detail string
	Cause  error
}

// Error implements the error interface.
func (parseError *OutputParseError) Error() string {
	if parseError.Cause != nil {
		return fmt.Sprintf(outputParseCauseMessageTemplateConstant, parseError.Shape, parseError.Detail, parseError.Cause)
	}
	return fmt.Sprintf(outputParseMessageTemplateConstant, parseError.Shape, parseError.Detail)
}

// Unwrap exposes the underlying decoding error when present.
func (parseError *OutputParseError) Unwrap() error {
	return parseError.Cause
}

func newStepFailedError(index int, step Step, cause error) *StepFailedError {
	stepError := &StepFailedError{
		Index:       index,
		Description: step.Description,
		Command:     step.Render(),
		Cause:       cause,
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(cause, &commandFailure) {
		stepError.ExitCode = commandFailure.Result.ExitCode
	}
	return stepError
}
