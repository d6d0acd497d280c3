package drupal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	moduleListShapeConstant         = "module list"
	roleListShapeConstant           = "role list"
	cookieJarShapeConstant          = "cookie jar"
	invalidJSONDetailConstant       = "invalid JSON"
	nonObjectDetailTemplate         = "expected a JSON object, found %s"
	cookieFieldCountDetailTemplate  = "line %d has %d fields, expected at least %d"
	cookieJarEmptyDetailConstant    = "no cookies found"
	cookieJarCommentPrefixConstant  = "#"
	cookieJarHTTPOnlyPrefixConstant = "#HttpOnly_"
	cookieJarFieldSeparatorConstant = "\t"
	cookieMinimumFieldCountConstant = 7
	cookieExpiryFieldIndexConstant  = 4
	cookieNameFieldIndexConstant    = 5
	cookieValueFieldIndexConstant   = 6
	cookiePathConstant              = "/"
	cookieSameSiteConstant          = "no_restriction"
	cookieArtifactIndentConstant    = "    "
	emptyJSONArrayConstant          = "[]"
)

// BackstopCookie is one entry of the cookie artifact consumed by the visual regression suite.
type BackstopCookie struct {
	Domain         string `json:"domain"`
	Path           string `json:"path"`
	Name           string `json:"name"`
	Value          string `json:"value"`
	ExpirationDate string `json:"expirationDate"`
	HostOnly       bool   `json:"hostOnly"`
	HTTPOnly       bool   `json:"httpOnly"`
	Secure         bool   `json:"secure"`
	Session        bool   `json:"session"`
	SameSite       string `json:"sameSite"`
}

// ParseModuleList returns the module names of a `pm:list --format=json` listing in document order.
func ParseModuleList(output string) ([]string, error) {
	return parseObjectKeys(output, moduleListShapeConstant)
}

// ParseRoleList returns the role ids of a `role:list --format=json` listing in document order.
func ParseRoleList(output string) ([]string, error) {
	return parseObjectKeys(output, roleListShapeConstant)
}

// drush prints [] instead of {} for an empty listing.
func parseObjectKeys(output string, shape string) ([]string, error) {
	trimmed := strings.TrimSpace(output)
	keys := make([]string, 0)
	if len(trimmed) == 0 || trimmed == emptyJSONArrayConstant {
		return keys, nil
	}
	if !gjson.Valid(trimmed) {
		return nil, &orchestrator.OutputParseError{Shape: shape, Detail: invalidJSONDetailConstant}
	}

	parsed := gjson.Parse(trimmed)
	if parsed.IsArray() && len(parsed.Array()) == 0 {
		return keys, nil
	}
	if !parsed.IsObject() {
		return nil, &orchestrator.OutputParseError{Shape: shape, Detail: fmt.Sprintf(nonObjectDetailTemplate, parsed.Type.String())}
	}

	seen := make(map[string]struct{})
	parsed.ForEach(func(key gjson.Result, _ gjson.Result) bool {
		name := key.String()
		if _, duplicate := seen[name]; !duplicate {
			seen[name] = struct{}{}
			keys = append(keys, name)
		}
		return true
	})
	return keys, nil
}

// StripCookieJarHeader removes the response header block that precedes the cookie data:
// every line up to and including the first blank line. Without a blank line only
// comment lines are removed; #HttpOnly_ lines carry cookies and are kept.
func StripCookieJarHeader(lines []string) []string {
	for index, line := range lines {
		if len(strings.TrimSpace(line)) == 0 {
			return append([]string{}, lines[index+1:]...)
		}
	}

	remaining := make([]string, 0, len(lines))
	for _, line := range lines {
		if isCookieJarComment(line) {
			continue
		}
		remaining = append(remaining, line)
	}
	return remaining
}

// ParseCookieJar converts Netscape cookie jar data lines into artifact entries for the given domain.
func ParseCookieJar(lines []string, domain string) ([]BackstopCookie, error) {
	cookies := make([]BackstopCookie, 0, len(lines))
	for lineIndex, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || isCookieJarComment(trimmed) {
			continue
		}
		fields := cookieJarFields(line)
		if len(fields) < cookieMinimumFieldCountConstant {
			return nil, &orchestrator.OutputParseError{
				Shape:  cookieJarShapeConstant,
				Detail: fmt.Sprintf(cookieFieldCountDetailTemplate, lineIndex+1, len(fields), cookieMinimumFieldCountConstant),
			}
		}
		cookies = append(cookies, BackstopCookie{
			Domain:         domain,
			Path:           cookiePathConstant,
			Name:           fields[cookieNameFieldIndexConstant],
			Value:          fields[cookieValueFieldIndexConstant],
			ExpirationDate: fields[cookieExpiryFieldIndexConstant],
			SameSite:       cookieSameSiteConstant,
		})
	}
	if len(cookies) == 0 {
		return nil, &orchestrator.OutputParseError{Shape: cookieJarShapeConstant, Detail: cookieJarEmptyDetailConstant}
	}
	return cookies, nil
}

// RenderCookieArtifact encodes cookies as an indented JSON array without escaping slashes or HTML.
func RenderCookieArtifact(cookies []BackstopCookie) ([]byte, error) {
	if cookies == nil {
		cookies = []BackstopCookie{}
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", cookieArtifactIndentConstant)
	if encodeError := encoder.Encode(cookies); encodeError != nil {
		return nil, encodeError
	}
	return buffer.Bytes(), nil
}

// cookieJarFields splits a data line on tabs so an empty trailing value is kept as a field.
// Lines without tabs are split on whitespace.
func cookieJarFields(line string) []string {
	if !strings.Contains(line, cookieJarFieldSeparatorConstant) {
		return strings.Fields(line)
	}
	return strings.Split(strings.Trim(line, " \r\n"), cookieJarFieldSeparatorConstant)
}

func isCookieJarComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, cookieJarCommentPrefixConstant) && !strings.HasPrefix(trimmed, cookieJarHTTPOnlyPrefixConstant)
}
