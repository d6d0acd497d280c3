package orchestrator

import (
	"errors"
	"time"

	"github.com/tyemirov/drutask/internal/execshell"
)

// Status summarizes how an operation ended.
type Status string

// Supported statuses.
const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FailureKind classifies the error that failed an operation.
type FailureKind string

// Supported failure kinds.
const (
	FailureKindNone            FailureKind = ""
	FailureKindExternalCommand FailureKind = "external_command_failed"
	FailureKindOutputParse     FailureKind = "output_parse_failed"
	FailureKindExecution       FailureKind = "execution_error"
)

const noFailedStepIndexConstant = -1

// StepResult records one executed step or planning probe.
type StepResult struct {
	Index       int
	Description string
	Command     string
	ExitCode    int
	Output      string
	Elapsed     time.Duration
}

// Outcome reports the result of running one operation.
type Outcome struct {
	Operation       string
	Status          Status
	SkipReason      string
	Notices         []string
	Probes          []StepResult
	Steps           []StepResult
	FailedStepIndex int
	FailedCommand   string
	FailureKind     FailureKind
	Duration        time.Duration
}

func newOutcome(operationName string) Outcome {
	return Outcome{
		Operation:       operationName,
		FailedStepIndex: noFailedStepIndexConstant,
		Notices:         []string{},
		Probes:          []StepResult{},
		Steps:           []StepResult{},
	}
}

func classifyFailure(failure error) FailureKind {
	var parseError *OutputParseError
	if errors.As(failure, &parseError) {
		return FailureKindOutputParse
	}
	var commandFailure execshell.CommandFailedError
	if errors.As(failure, &commandFailure) {
		return FailureKindExternalCommand
	}
	var executionFailure execshell.CommandExecutionError
	if errors.As(failure, &executionFailure) {
		return FailureKindExternalCommand
	}
	return FailureKindExecution
}
