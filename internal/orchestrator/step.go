package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/tyemirov/drutask/internal/execshell"
)

// StepKind identifies the payload carried by a Step.
type StepKind int

// Supported step kinds.
const (
	StepKindCommand StepKind = iota + 1
	StepKindFilesystem
	StepKindAction
)

// FilesystemOperationKind identifies a file system mutation.
type FilesystemOperationKind string

// Supported file system operations.
const (
	FilesystemMkdir  FilesystemOperationKind = "mkdir"
	FilesystemTouch  FilesystemOperationKind = "touch"
	FilesystemCopy   FilesystemOperationKind = "copy"
	FilesystemChmod  FilesystemOperationKind = "chmod"
	FilesystemAppend FilesystemOperationKind = "append"
	FilesystemWrite  FilesystemOperationKind = "write"
)

const (
	defaultDirectoryModeConstant = os.FileMode(0o755)
	defaultFileModeConstant      = os.FileMode(0o644)
)

// FilesystemOperation describes one file system mutation.
type FilesystemOperation struct {
	Kind       FilesystemOperationKind
	Path       string
	SourcePath string
	Mode       os.FileMode
	Content    []byte
}

// String renders the operation for reports.
func (operation FilesystemOperation) String() string {
	switch operation.Kind {
	case FilesystemCopy:
		return fmt.Sprintf("copy %s %s", operation.SourcePath, operation.Path)
	case FilesystemChmod:
		return fmt.Sprintf("%s %#o %s", operation.Kind, operation.Mode, operation.Path)
	case FilesystemMkdir:
		if operation.Mode == 0 {
			return fmt.Sprintf("%s %s", operation.Kind, operation.Path)
		}
		return fmt.Sprintf("%s %#o %s", operation.Kind, operation.Mode, operation.Path)
	default:
		return fmt.Sprintf("%s %s", operation.Kind, operation.Path)
	}
}

// StepContext exposes what an in-process action may consume: the file system and
// the output captured by earlier steps of the same list.
type StepContext struct {
	FileSystem FileSystem
	captured   map[int]string
}

// CapturedOutput returns the standard output captured by the step at index, when that step captured.
func (stepContext StepContext) CapturedOutput(index int) (string, bool) {
	output, exists := stepContext.captured[index]
	return output, exists
}

// StepAction is an in-process step body.
type StepAction func(executionContext context.Context, stepContext StepContext) error

// Step is one unit of an operation's execution plan.
type Step struct {
	Description string
	Kind        StepKind
	Command     execshell.ShellCommand
	Capture     bool
	Filesystem  FilesystemOperation
	Action      StepAction
}

// CommandStep builds a step that runs an external command and echoes its output.
func CommandStep(description string, command execshell.ShellCommand) Step {
	command.Details.EchoOutput = true
	return Step{Description: description, Kind: StepKindCommand, Command: command}
}

// CapturingStep builds a step whose standard output is retained for later steps and the report.
func CapturingStep(description string, command execshell.ShellCommand) Step {
	command.Details.EchoOutput = false
	return Step{Description: description, Kind: StepKindCommand, Command: command, Capture: true}
}

// FilesystemStep builds a step that mutates the file system.
func FilesystemStep(description string, operation FilesystemOperation) Step {
	return Step{Description: description, Kind: StepKindFilesystem, Filesystem: operation}
}

// ActionStep builds an in-process step.
func ActionStep(description string, action StepAction) Step {
	return Step{Description: description, Kind: StepKindAction, Action: action}
}

// Render describes the step's invocation for reports and errors.
func (step Step) Render() string {
	switch step.Kind {
	case StepKindCommand:
		return step.Command.String()
	case StepKindFilesystem:
		return step.Filesystem.String()
	default:
		return step.Description
	}
}

// StepList is an ordered, immutable sequence of steps.
type StepList struct {
	steps []Step
}

// NewStepList copies the provided steps into an immutable list.
func NewStepList(steps ...Step) StepList {
	if len(steps) == 0 {
		return StepList{}
	}
	copied := make([]Step, len(steps))
	copy(copied, steps)
	return StepList{steps: copied}
}

// Len reports the number of steps.
func (list StepList) Len() int {
	return len(list.steps)
}

// Step returns the step at index.
func (list StepList) Step(index int) Step {
	return list.steps[index]
}

// Steps returns a copy of the steps in execution order.
func (list StepList) Steps() []Step {
	copied := make([]Step, len(list.steps))
	copy(copied, list.steps)
	return copied
}

// StepListBuilder accumulates steps before freezing them into a StepList.
type StepListBuilder struct {
	steps []Step
}

// Add appends steps in order.
func (builder *StepListBuilder) Add(steps ...Step) {
	builder.steps = append(builder.steps, steps...)
}

// Len reports the number of accumulated steps.
func (builder *StepListBuilder) Len() int {
	return len(builder.steps)
}

// Build freezes the accumulated steps.
func (builder *StepListBuilder) Build() StepList {
	return NewStepList(builder.steps...)
}
