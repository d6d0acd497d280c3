package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// OSCommandRunner executes commands as operating system processes.
type OSCommandRunner struct {
	echoOutput io.Writer
	echoErrors io.Writer
}

// NewOSCommandRunner constructs a runner that mirrors echoed commands to the provided writers.
// Nil writers fall back to the process standard streams.
func NewOSCommandRunner(echoOutput io.Writer, echoErrors io.Writer) *OSCommandRunner {
	if echoOutput == nil {
		echoOutput = os.Stdout
	}
	if echoErrors == nil {
		echoErrors = os.Stderr
	}
	return &OSCommandRunner{echoOutput: echoOutput, echoErrors: echoErrors}
}

// Run starts the process, waits for it and reports its exit status.
// A non-zero exit is reported through ExecutionResult.ExitCode rather than an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if len(command.Name) == 0 {
		return ExecutionResult{}, ErrCommandNameMissing
	}

	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	if command.Details.EchoOutput {
		process.Stdout = io.MultiWriter(&standardOutput, runner.echoOutput)
		process.Stderr = io.MultiWriter(&standardError, runner.echoErrors)
	} else {
		process.Stdout = &standardOutput
		process.Stderr = &standardError
	}

	runError := process.Run()
	result := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	return ExecutionResult{}, runError
}
