package utils_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/drutask/internal/utils"
)

const (
	testDiagnosticMessageConstant = "operation planned"
	testConsoleMessageConstant    = "COMPLETED: grumphp (1 steps)"
	testDebugMessageConstant      = "probe output"
)

// captureStandardError redirects os.Stderr while create builds loggers and emit writes through them.
func captureStandardError(testInstance *testing.T, create func() (utils.LoggerOutputs, error), emit func(utils.LoggerOutputs)) (string, error) {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStandardError := os.Stderr
	os.Stderr = pipeWriter
	loggerOutputs, creationError := create()
	os.Stderr = originalStandardError

	if creationError == nil {
		emit(loggerOutputs)
		_ = loggerOutputs.DiagnosticLogger.Sync()
		_ = loggerOutputs.ConsoleLogger.Sync()
	}

	require.NoError(testInstance, pipeWriter.Close())
	capturedOutput, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())
	return string(bytes.TrimSpace(capturedOutput)), creationError
}

func TestLoggerFactoryCreateLoggerOutputs(testInstance *testing.T) {
	testCases := []struct {
		name              string
		level             utils.LogLevel
		format            utils.LogFormat
		expectJSON        bool
		expectConsole     bool
		expectDebugOutput bool
	}{
		{name: "structured debug", level: utils.LogLevelDebug, format: utils.LogFormatStructured, expectJSON: true, expectDebugOutput: true},
		{name: "structured info", level: utils.LogLevelInfo, format: utils.LogFormatStructured, expectJSON: true},
		{name: "console info", level: utils.LogLevelInfo, format: utils.LogFormatConsole, expectConsole: true},
		{name: "console debug", level: utils.LogLevelDebug, format: utils.LogFormatConsole, expectConsole: true, expectDebugOutput: true},
		{name: "mixed case input", level: utils.LogLevel(" INFO "), format: utils.LogFormat("Console"), expectConsole: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			capturedOutput, creationError := captureStandardError(
				testInstance,
				func() (utils.LoggerOutputs, error) {
					return utils.NewLoggerFactory().CreateLoggerOutputs(testCase.level, testCase.format)
				},
				func(loggerOutputs utils.LoggerOutputs) {
					loggerOutputs.DiagnosticLogger.Debug(testDebugMessageConstant)
					loggerOutputs.DiagnosticLogger.Info(testDiagnosticMessageConstant)
					loggerOutputs.ConsoleLogger.Info(testConsoleMessageConstant)
				},
			)
			require.NoError(testInstance, creationError)
			require.Contains(testInstance, capturedOutput, testDiagnosticMessageConstant)

			if testCase.expectConsole {
				require.Contains(testInstance, capturedOutput, testConsoleMessageConstant)
			} else {
				require.NotContains(testInstance, capturedOutput, testConsoleMessageConstant)
			}
			if testCase.expectDebugOutput {
				require.Contains(testInstance, capturedOutput, testDebugMessageConstant)
			} else {
				require.NotContains(testInstance, capturedOutput, testDebugMessageConstant)
			}

			firstLine := []byte(capturedOutput)
			if newlineIndex := bytes.IndexByte(firstLine, '\n'); newlineIndex >= 0 {
				firstLine = firstLine[:newlineIndex]
			}
			require.Equal(testInstance, testCase.expectJSON, json.Valid(firstLine))
		})
	}
}

func TestLoggerFactoryErrorLevelSuppressesInfo(testInstance *testing.T) {
	capturedOutput, creationError := captureStandardError(
		testInstance,
		func() (utils.LoggerOutputs, error) {
			return utils.NewLoggerFactory().CreateLoggerOutputs(utils.LogLevelError, utils.LogFormatStructured)
		},
		func(loggerOutputs utils.LoggerOutputs) {
			loggerOutputs.DiagnosticLogger.Info(testDiagnosticMessageConstant)
		},
	)
	require.NoError(testInstance, creationError)
	require.Empty(testInstance, capturedOutput)
}

func TestLoggerFactoryRejectsUnsupportedInputs(testInstance *testing.T) {
	testCases := []struct {
		name          string
		level         utils.LogLevel
		format        utils.LogFormat
		expectedError string
	}{
		{name: "level", level: utils.LogLevel("verbose"), format: utils.LogFormatStructured, expectedError: `unsupported log level "verbose"`},
		{name: "format", level: utils.LogLevelInfo, format: utils.LogFormat("xml"), expectedError: `unsupported log format "xml"`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loggerOutputs, creationError := utils.NewLoggerFactory().CreateLoggerOutputs(testCase.level, testCase.format)
			require.EqualError(testInstance, creationError, testCase.expectedError)
			require.Zero(testInstance, loggerOutputs)
		})
	}
}
