package drupal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/mod/semver"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	versionShapeConstant               = "drupal version"
	versionEmptyDetailConstant         = "empty version string"
	versionMalformedDetailTemplate     = "%q does not start with a major version"
	versionProbeFailedReasonTemplate   = "unable to determine the Drupal version: %v"
	versionMismatchReasonTemplate      = "only available for Drupal %d (found %s)"
	versionUnrecognizedReasonTemplate  = "only available for Drupal %d (unrecognized version %q)"
	semverPrefixConstant               = "v"
	statusArgumentConstant             = "status"
	drupalVersionFieldArgumentConstant = "--field=drupal-version"
)

// ParseMajorVersion extracts the major version from a reported Drupal version string.
// Canonical semantic versions are read with semver; anything else falls back to its leading digits.
func ParseMajorVersion(version string) (int, error) {
	trimmed := strings.TrimSpace(version)
	if len(trimmed) == 0 {
		return 0, &orchestrator.OutputParseError{Shape: versionShapeConstant, Detail: versionEmptyDetailConstant}
	}

	candidate := trimmed
	if !strings.HasPrefix(candidate, semverPrefixConstant) {
		candidate = semverPrefixConstant + candidate
	}
	if semver.IsValid(candidate) {
		major, conversionError := strconv.Atoi(strings.TrimPrefix(semver.Major(candidate), semverPrefixConstant))
		if conversionError == nil {
			return major, nil
		}
	}

	digits := strings.TrimSpace(strings.TrimPrefix(trimmed, semverPrefixConstant))
	endIndex := strings.IndexFunc(digits, func(character rune) bool { return !unicode.IsDigit(character) })
	if endIndex == -1 {
		endIndex = len(digits)
	}
	major, conversionError := strconv.Atoi(digits[:endIndex])
	if conversionError != nil {
		return 0, &orchestrator.OutputParseError{Shape: versionShapeConstant, Detail: fmt.Sprintf(versionMalformedDetailTemplate, trimmed), Cause: conversionError}
	}
	return major, nil
}

// versionResolver applies the canonical version rule: the configured version wins, otherwise drush is asked.
type versionResolver struct {
	configuration Configuration
	commands      commandFactory
}

func (resolver versionResolver) reportedVersion(executionContext context.Context, session *orchestrator.Session) (string, error) {
	if len(resolver.configuration.Version) > 0 {
		return resolver.configuration.Version, nil
	}
	output, captureError := session.Capture(executionContext, resolver.commands.drush(statusArgumentConstant, drupalVersionFieldArgumentConstant))
	if captureError != nil {
		return "", orchestrator.Skip(versionProbeFailedReasonTemplate, captureError)
	}
	return strings.TrimSpace(output), nil
}

// requireMajor returns a precondition error unless the site runs the expected major version.
func (resolver versionResolver) requireMajor(executionContext context.Context, session *orchestrator.Session, expectedMajor int) error {
	version, versionError := resolver.reportedVersion(executionContext, session)
	if versionError != nil {
		return versionError
	}
	major, parseError := ParseMajorVersion(version)
	if parseError != nil {
		return orchestrator.Skip(versionUnrecognizedReasonTemplate, expectedMajor, version)
	}
	if major != expectedMajor {
		return orchestrator.Skip(versionMismatchReasonTemplate, expectedMajor, version)
	}
	return nil
}
