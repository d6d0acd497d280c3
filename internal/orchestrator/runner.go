package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant    = "orchestrator logger not configured"
	missingRequiredOptionTemplateConstant = "missing required option --%s"
	operationStartMessageConstant         = "operation starting"
	operationSkippedMessageConstant       = "operation skipped"
	operationFailedMessageConstant        = "operation failed"
	operationCompletedMessageConstant     = "operation completed"
	stepStartMessageConstant              = "step starting"
	operationFieldNameConstant            = "operation"
	reasonFieldNameConstant               = "reason"
	stepIndexFieldNameConstant            = "step_index"
	stepDescriptionFieldNameConstant      = "step"
	stepCountFieldNameConstant            = "steps"
	noticeCountFieldNameConstant          = "notices"
	failureKindFieldNameConstant          = "failure_kind"
	durationFieldNameConstant             = "duration"
)

// ErrLoggerNotConfigured indicates the runner logger dependency was missing.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// Runner resolves operations by name, plans them and executes their steps in order.
type Runner struct {
	registry   *Registry
	executor   CommandExecutor
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewRunner validates dependencies and constructs a Runner.
func NewRunner(registry *Registry, executor CommandExecutor, fileSystem FileSystem, logger *zap.Logger) (*Runner, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return &Runner{registry: registry, executor: executor, fileSystem: fileSystem, logger: logger}, nil
}

// Run plans and executes the named operation.
// A skipped operation returns a nil error; a failed one returns the outcome together with the typed error.
func (runner *Runner) Run(executionContext context.Context, operationName string, options Options) (Outcome, error) {
	operation, lookupError := runner.registry.Lookup(operationName)
	if lookupError != nil {
		return Outcome{}, lookupError
	}

	startTime := time.Now()
	outcome := newOutcome(operation.Name())
	runner.logger.Info(operationStartMessageConstant, zap.String(operationFieldNameConstant, operation.Name()))

	resolvedOptions, missingOption := resolveOptions(operation.Options(), options)
	if len(missingOption) > 0 {
		return runner.skip(outcome, &PreconditionError{Reason: fmt.Sprintf(missingRequiredOptionTemplateConstant, missingOption)}, startTime), nil
	}

	session := NewSession(runner.executor, runner.fileSystem)
	stepList, planError := operation.Plan(executionContext, session, resolvedOptions)
	outcome.Notices = session.Notices()
	outcome.Probes = session.Probes()

	if planError != nil {
		var preconditionError *PreconditionError
		if errors.As(planError, &preconditionError) {
			return runner.skip(outcome, preconditionError, startTime), nil
		}
		var stepError *StepFailedError
		if errors.As(planError, &stepError) {
			outcome.FailedCommand = stepError.Command
		}
		return runner.fail(outcome, planError, startTime), planError
	}

	stepContext := StepContext{FileSystem: runner.fileSystem, captured: make(map[int]string)}
	for index, step := range stepList.Steps() {
		runner.logger.Debug(stepStartMessageConstant,
			zap.String(operationFieldNameConstant, operation.Name()),
			zap.Int(stepIndexFieldNameConstant, index),
			zap.String(stepDescriptionFieldNameConstant, step.Description),
		)
		stepResult, stepError := runner.executeStep(executionContext, index, step, stepContext)
		outcome.Steps = append(outcome.Steps, stepResult)
		if stepError != nil {
			failure := newStepFailedError(index, step, stepError)
			outcome.FailedStepIndex = index
			outcome.FailedCommand = failure.Command
			return runner.fail(outcome, failure, startTime), failure
		}
	}

	outcome.Status = StatusSucceeded
	outcome.Duration = time.Since(startTime)
	runner.logger.Info(operationCompletedMessageConstant,
		zap.String(operationFieldNameConstant, outcome.Operation),
		zap.Int(stepCountFieldNameConstant, len(outcome.Steps)),
		zap.Int(noticeCountFieldNameConstant, len(outcome.Notices)),
		zap.Duration(durationFieldNameConstant, outcome.Duration),
	)
	return outcome, nil
}

func (runner *Runner) executeStep(executionContext context.Context, index int, step Step, stepContext StepContext) (StepResult, error) {
	startTime := time.Now()
	stepResult := StepResult{Index: index, Description: step.Description, Command: step.Render()}

	var stepError error
	switch step.Kind {
	case StepKindCommand:
		executionResult, executionError := runner.executor.Execute(executionContext, step.Command)
		stepResult.ExitCode = executionResult.ExitCode
		if executionError != nil {
			stepError = executionError
			stepResult.ExitCode = newStepFailedError(index, step, executionError).ExitCode
		} else if step.Capture {
			stepContext.captured[index] = executionResult.StandardOutput
			stepResult.Output = executionResult.StandardOutput
		}
	case StepKindFilesystem:
		stepError = applyFilesystemOperation(runner.fileSystem, step.Filesystem)
	case StepKindAction:
		if step.Action == nil {
			stepError = ErrUnsupportedStepKind
		} else {
			stepError = step.Action(executionContext, stepContext)
		}
	default:
		stepError = ErrUnsupportedStepKind
	}

	stepResult.Elapsed = time.Since(startTime)
	return stepResult, stepError
}

func (runner *Runner) skip(outcome Outcome, preconditionError *PreconditionError, startTime time.Time) Outcome {
	preconditionError.Operation = outcome.Operation
	outcome.Status = StatusSkipped
	outcome.SkipReason = preconditionError.Reason
	outcome.Duration = time.Since(startTime)
	runner.logger.Info(operationSkippedMessageConstant,
		zap.String(operationFieldNameConstant, outcome.Operation),
		zap.String(reasonFieldNameConstant, preconditionError.Reason),
		zap.Error(preconditionError),
	)
	return outcome
}

func (runner *Runner) fail(outcome Outcome, failure error, startTime time.Time) Outcome {
	outcome.Status = StatusFailed
	outcome.FailureKind = classifyFailure(failure)
	outcome.Duration = time.Since(startTime)
	runner.logger.Warn(operationFailedMessageConstant,
		zap.String(operationFieldNameConstant, outcome.Operation),
		zap.Int(stepIndexFieldNameConstant, outcome.FailedStepIndex),
		zap.String(failureKindFieldNameConstant, string(outcome.FailureKind)),
		zap.Error(failure),
	)
	return outcome
}
