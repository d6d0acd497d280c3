package drupal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	generateCookieNameConstant          = "generate-cookie"
	generateCookieDescriptionConstant   = "Log in and write the Backstop cookie artifact"
	userOptionNameConstant              = "user"
	userOptionUsageConstant             = "Account to log in as"
	userOptionDefaultConstant           = "admin"
	passOptionNameConstant              = "pass"
	passOptionUsageConstant             = "Password for the account; a one-time login link is used when omitted"
	loginPathConstant                   = "/user/login?_format=json"
	loginURLSchemeConstant              = "http://"
	loginLinkShapeConstant              = "one-time login link"
	loginLinkEmptyDetailConstant        = "drush uli returned no link"
	contentTypeHeaderConstant           = "Content-type: application/json"
	standardInputDataConstant           = "@-"
	httpStatusFormatConstant            = "%{http_code}"
	loginResponseShapeConstant          = "login response"
	loginStatusDetailTemplate           = "HTTP status %q"
	firstRejectedStatusConstant         = 400
	uliArgumentConstant                 = "uli"
	noBrowserArgumentConstant           = "--no-browser"
	generateCookieRequiredMajorConstant = 8
	cookieArtifactFileMode              = os.FileMode(0o644)
	cookieJarFileMode                   = os.FileMode(0o600)
)

type loginRequest struct {
	Name string `json:"name"`
	Pass string `json:"pass"`
}

type generateCookieOperation struct {
	configuration Configuration
	commands      commandFactory
	versions      versionResolver
}

func (operation generateCookieOperation) Name() string {
	return generateCookieNameConstant
}

func (operation generateCookieOperation) Description() string {
	return generateCookieDescriptionConstant
}

func (operation generateCookieOperation) Options() []orchestrator.OptionDefinition {
	return []orchestrator.OptionDefinition{
		{Name: userOptionNameConstant, Usage: userOptionUsageConstant, Default: userOptionDefaultConstant},
		{Name: passOptionNameConstant, Usage: passOptionUsageConstant},
	}
}

func (operation generateCookieOperation) Plan(executionContext context.Context, session *orchestrator.Session, options orchestrator.Options) (orchestrator.StepList, error) {
	if versionError := operation.versions.requireMajor(executionContext, session, generateCookieRequiredMajorConstant); versionError != nil {
		return orchestrator.StepList{}, versionError
	}

	backstop := operation.configuration.Backstop
	user := options.Value(userOptionNameConstant)
	password := options.Value(passOptionNameConstant)

	builder := orchestrator.StepListBuilder{}
	jarDirectory := filepath.Dir(backstop.CookieJar)
	builder.Add(orchestrator.FilesystemStep("create cookie directory", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemMkdir, Path: jarDirectory}))
	if artifactDirectory := filepath.Dir(backstop.CookieFile); artifactDirectory != jarDirectory {
		builder.Add(orchestrator.FilesystemStep("create artifact directory", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemMkdir, Path: artifactDirectory}))
	}

	loginStepIndex := builder.Len()
	if len(password) > 0 {
		body, marshalError := json.Marshal(loginRequest{Name: user, Pass: password})
		if marshalError != nil {
			return orchestrator.StepList{}, marshalError
		}
		login := operation.commands.curl(
			"--cookie-jar", backstop.CookieJar,
			"-sk",
			"--output", os.DevNull,
			"--write-out", httpStatusFormatConstant,
			"--header", contentTypeHeaderConstant,
			"--request", "POST",
			"--data", standardInputDataConstant,
			operation.loginURL(),
		)
		login.Details.StandardInput = body
		builder.Add(orchestrator.CapturingStep("log in with password", login))
	} else {
		uliArguments := []string{uliArgumentConstant, "--name=" + user, noBrowserArgumentConstant}
		if len(backstop.BaseURL) > 0 {
			uliArguments = append(uliArguments, "--uri="+backstop.BaseURL)
		}
		linkOutput, linkError := session.Capture(executionContext, operation.commands.drush(uliArguments...))
		if linkError != nil {
			return orchestrator.StepList{}, linkError
		}
		link := strings.TrimSpace(linkOutput)
		if len(link) == 0 {
			return orchestrator.StepList{}, &orchestrator.OutputParseError{Shape: loginLinkShapeConstant, Detail: loginLinkEmptyDetailConstant}
		}
		builder.Add(orchestrator.CapturingStep("log in with one-time link", operation.commands.curl(
			"--cookie-jar", backstop.CookieJar,
			"-skL",
			"--output", os.DevNull,
			"--write-out", httpStatusFormatConstant,
			link,
		)))
	}

	builder.Add(orchestrator.ActionStep("write cookie artifact", func(executionContext context.Context, stepContext orchestrator.StepContext) error {
		statusOutput, _ := stepContext.CapturedOutput(loginStepIndex)
		if statusError := checkLoginStatus(statusOutput); statusError != nil {
			return statusError
		}
		return operation.writeArtifact(executionContext, stepContext)
	}))
	return builder.Build(), nil
}

// checkLoginStatus accepts the final HTTP status written by curl when it is below 400.
func checkLoginStatus(output string) error {
	status := strings.TrimSpace(output)
	code, conversionError := strconv.Atoi(status)
	if conversionError != nil || code <= 0 || code >= firstRejectedStatusConstant {
		return &orchestrator.OutputParseError{Shape: loginResponseShapeConstant, Detail: fmt.Sprintf(loginStatusDetailTemplate, status)}
	}
	return nil
}

func (operation generateCookieOperation) loginURL() string {
	baseURL := strings.TrimRight(operation.configuration.Backstop.BaseURL, "/")
	if len(baseURL) == 0 {
		baseURL = loginURLSchemeConstant + operation.configuration.Backstop.CookieDomain
	}
	return baseURL + loginPathConstant
}

// writeArtifact strips the header block from the cookie jar in place and converts the remaining lines.
func (operation generateCookieOperation) writeArtifact(_ context.Context, stepContext orchestrator.StepContext) error {
	backstop := operation.configuration.Backstop
	lines, readError := stepContext.FileSystem.ReadLines(backstop.CookieJar)
	if readError != nil {
		return readError
	}

	dataLines := StripCookieJarHeader(lines)
	strippedContent := strings.Join(dataLines, "\n")
	if len(dataLines) > 0 {
		strippedContent += "\n"
	}
	if writeError := stepContext.FileSystem.WriteFile(backstop.CookieJar, []byte(strippedContent), cookieJarFileMode); writeError != nil {
		return writeError
	}

	cookies, parseError := ParseCookieJar(dataLines, backstop.CookieDomain)
	if parseError != nil {
		return parseError
	}
	artifact, renderError := RenderCookieArtifact(cookies)
	if renderError != nil {
		return renderError
	}
	return stepContext.FileSystem.WriteFile(backstop.CookieFile, artifact, cookieArtifactFileMode)
}
