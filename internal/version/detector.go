package version

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersionFallbackConstant = "unknown"
	buildInfoDevelVersionValue     = "devel"
	buildInfoModuleDevelConstant   = "(devel)"
	revisionSettingKeyConstant     = "vcs.revision"
	modifiedSettingKeyConstant     = "vcs.modified"
	modifiedSettingTrueConstant    = "true"
	revisionDisplayLengthConstant  = 12
	revisionVersionPrefixConstant  = "devel+"
	dirtyRevisionSuffixConstant    = "-dirty"
)

// linkedVersion is injected at link time with -ldflags "-X github.com/tyemirov/drutask/internal/version.linkedVersion=v1.2.3".
var linkedVersion string

// BuildInfoProvider exposes runtime build metadata.
type BuildInfoProvider interface {
	Read() (*debug.BuildInfo, bool)
}

// Detector resolves the drutask version string.
type Detector struct {
	buildInfoProvider BuildInfoProvider
	linkedVersion     string
}

// Dependencies describes the collaborators required for version detection.
type Dependencies struct {
	BuildInfoProvider BuildInfoProvider
	LinkedVersion     string
}

// NewDetector constructs a Detector with the supplied dependencies or the runtime defaults.
func NewDetector(dependencies Dependencies) *Detector {
	provider := dependencies.BuildInfoProvider
	if provider == nil {
		provider = runtimeBuildInfoProvider{}
	}
	linked := strings.TrimSpace(dependencies.LinkedVersion)
	if len(linked) == 0 {
		linked = strings.TrimSpace(linkedVersion)
	}
	return &Detector{buildInfoProvider: provider, linkedVersion: linked}
}

// Detect resolves the version using the runtime defaults.
func Detect() string {
	return NewDetector(Dependencies{}).Version()
}

// Version prefers the link-time version, then the module version, then the VCS revision.
func (detector *Detector) Version() string {
	if detector == nil {
		return unknownVersionFallbackConstant
	}
	if len(detector.linkedVersion) > 0 {
		return detector.linkedVersion
	}
	if detector.buildInfoProvider == nil {
		return unknownVersionFallbackConstant
	}

	buildInfo, available := detector.buildInfoProvider.Read()
	if !available || buildInfo == nil {
		return unknownVersionFallbackConstant
	}

	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) > 0 && !strings.EqualFold(moduleVersion, buildInfoDevelVersionValue) && moduleVersion != buildInfoModuleDevelConstant {
		return moduleVersion
	}

	if revision := revisionVersion(buildInfo.Settings); len(revision) > 0 {
		return revision
	}
	return unknownVersionFallbackConstant
}

func revisionVersion(settings []debug.BuildSetting) string {
	revision := ""
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case revisionSettingKeyConstant:
			revision = strings.TrimSpace(setting.Value)
		case modifiedSettingKeyConstant:
			modified = setting.Value == modifiedSettingTrueConstant
		}
	}
	if len(revision) == 0 {
		return ""
	}
	if len(revision) > revisionDisplayLengthConstant {
		revision = revision[:revisionDisplayLengthConstant]
	}
	if modified {
		revision += dirtyRevisionSuffixConstant
	}
	return revisionVersionPrefixConstant + revision
}

type runtimeBuildInfoProvider struct{}

func (runtimeBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
