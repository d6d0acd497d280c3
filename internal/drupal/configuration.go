package drupal

import (
	"path/filepath"
	"strings"

	"github.com/tyemirov/drutask/internal/execshell"
)

const (
	defaultRootConstant                = "web"
	defaultProfileConstant             = "standard"
	defaultSitesSubdirectoryConstant   = "default"
	defaultConfigSyncDirectoryConstant = "../config/sync"
	defaultBehatBinaryConstant         = "vendor/bin/behat"
	defaultBehatConfigurationConstant  = "tests/behat/behat.yml"
	defaultGrumphpBinaryConstant       = "vendor/bin/grumphp"
	defaultCookieDomainConstant        = "web"
	defaultCookieJarPathConstant       = "tests/backstop/backstop_data/engine_scripts/cookie.txt"
	defaultCookieFilePathConstant      = "tests/backstop/backstop_data/engine_scripts/cookies.json"
	defaultDumpFileConstant            = "../docker/data/mysql/dump.sql"
	defaultSanitizedDumpFileConstant   = "../docker/data/mysql/dump-sanitized.sql"
	sitesDirectoryNameConstant         = "sites"
)

// Configuration is the read-only Drupal project description consulted by every operation.
type Configuration struct {
	Root     string                `mapstructure:"root" yaml:"root"`
	Profile  string                `mapstructure:"profile" yaml:"profile"`
	Version  string                `mapstructure:"version" yaml:"version"`
	Site     SiteConfiguration     `mapstructure:"site" yaml:"site"`
	Drush    DrushConfiguration    `mapstructure:"drush" yaml:"drush"`
	Tools    ToolsConfiguration    `mapstructure:"tools" yaml:"tools"`
	Backstop BackstopConfiguration `mapstructure:"backstop" yaml:"backstop"`
	Backup   BackupConfiguration   `mapstructure:"backup" yaml:"backup"`
}

// SiteConfiguration describes the multisite directory and site-level defaults.
type SiteConfiguration struct {
	SitesSubdirectory   string   `mapstructure:"sites_subdir" yaml:"sites_subdir"`
	EnableAllExclude    []string `mapstructure:"enable_all_exclude" yaml:"enable_all_exclude"`
	ConfigSyncDirectory string   `mapstructure:"config_sync_directory" yaml:"config_sync_directory"`
}

// DrushConfiguration locates drush and the optional site alias prepended to every invocation.
type DrushConfiguration struct {
	Binary string `mapstructure:"binary" yaml:"binary"`
	Alias  string `mapstructure:"alias" yaml:"alias"`
}

// ToolsConfiguration locates the auxiliary tools.
type ToolsConfiguration struct {
	Behat       string `mapstructure:"behat" yaml:"behat"`
	BehatConfig string `mapstructure:"behat_config" yaml:"behat_config"`
	Grumphp     string `mapstructure:"grumphp" yaml:"grumphp"`
	Curl        string `mapstructure:"curl" yaml:"curl"`
}

// BackstopConfiguration describes the cookie artifact consumed by the visual regression suite.
type BackstopConfiguration struct {
	CookieDomain string `mapstructure:"cookie_domain" yaml:"cookie_domain"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	CookieJar    string `mapstructure:"cookie_jar" yaml:"cookie_jar"`
	CookieFile   string `mapstructure:"cookie_file" yaml:"cookie_file"`
}

// BackupConfiguration locates the database dump targets.
type BackupConfiguration struct {
	DumpFile          string `mapstructure:"dump_file" yaml:"dump_file"`
	SanitizedDumpFile string `mapstructure:"sanitized_dump_file" yaml:"sanitized_dump_file"`
}

// DefaultConfiguration returns the configuration used when nothing is supplied.
func DefaultConfiguration() Configuration {
	return Configuration{
		Root:    defaultRootConstant,
		Profile: defaultProfileConstant,
		Site: SiteConfiguration{
			SitesSubdirectory:   defaultSitesSubdirectoryConstant,
			EnableAllExclude:    []string{},
			ConfigSyncDirectory: defaultConfigSyncDirectoryConstant,
		},
		Drush: DrushConfiguration{Binary: string(execshell.CommandDrush)},
		Tools: ToolsConfiguration{
			Behat:       defaultBehatBinaryConstant,
			BehatConfig: defaultBehatConfigurationConstant,
			Grumphp:     defaultGrumphpBinaryConstant,
			Curl:        string(execshell.CommandCurl),
		},
		Backstop: BackstopConfiguration{
			CookieDomain: defaultCookieDomainConstant,
			CookieJar:    defaultCookieJarPathConstant,
			CookieFile:   defaultCookieFilePathConstant,
		},
		Backup: BackupConfiguration{
			DumpFile:          defaultDumpFileConstant,
			SanitizedDumpFile: defaultSanitizedDumpFileConstant,
		},
	}
}

// Sanitize trims every value and fills blanks with defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		Root:    valueOrDefault(configuration.Root, defaults.Root),
		Profile: valueOrDefault(configuration.Profile, defaults.Profile),
		Version: strings.TrimSpace(configuration.Version),
		Site: SiteConfiguration{
			SitesSubdirectory:   valueOrDefault(configuration.Site.SitesSubdirectory, defaults.Site.SitesSubdirectory),
			EnableAllExclude:    trimmedEntries(configuration.Site.EnableAllExclude),
			ConfigSyncDirectory: valueOrDefault(configuration.Site.ConfigSyncDirectory, defaults.Site.ConfigSyncDirectory),
		},
		Drush: DrushConfiguration{
			Binary: valueOrDefault(configuration.Drush.Binary, defaults.Drush.Binary),
			Alias:  strings.TrimSpace(configuration.Drush.Alias),
		},
		Tools: ToolsConfiguration{
			Behat:       valueOrDefault(configuration.Tools.Behat, defaults.Tools.Behat),
			BehatConfig: valueOrDefault(configuration.Tools.BehatConfig, defaults.Tools.BehatConfig),
			Grumphp:     valueOrDefault(configuration.Tools.Grumphp, defaults.Tools.Grumphp),
			Curl:        valueOrDefault(configuration.Tools.Curl, defaults.Tools.Curl),
		},
		Backstop: BackstopConfiguration{
			CookieDomain: valueOrDefault(configuration.Backstop.CookieDomain, defaults.Backstop.CookieDomain),
			BaseURL:      strings.TrimSpace(configuration.Backstop.BaseURL),
			CookieJar:    valueOrDefault(configuration.Backstop.CookieJar, defaults.Backstop.CookieJar),
			CookieFile:   valueOrDefault(configuration.Backstop.CookieFile, defaults.Backstop.CookieFile),
		},
		Backup: BackupConfiguration{
			DumpFile:          valueOrDefault(configuration.Backup.DumpFile, defaults.Backup.DumpFile),
			SanitizedDumpFile: valueOrDefault(configuration.Backup.SanitizedDumpFile, defaults.Backup.SanitizedDumpFile),
		},
	}
	return sanitized
}

// RootPath joins elements below the Drupal root.
func (configuration Configuration) RootPath(elements ...string) string {
	return filepath.Join(append([]string{configuration.Root}, elements...)...)
}

// SitePath joins elements below the configured site directory.
func (configuration Configuration) SitePath(elements ...string) string {
	return configuration.RootPath(append([]string{sitesDirectoryNameConstant, configuration.Site.SitesSubdirectory}, elements...)...)
}

func valueOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallback
	}
	return trimmed
}

func trimmedEntries(values []string) []string {
	entries := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if len(trimmed) == 0 {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}
