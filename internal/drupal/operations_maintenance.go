package drupal

import (
	"context"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	backupProjectNameConstant         = "backup-project"
	backupProjectDescriptionConstant  = "Export configuration and dump the database, raw and sanitized"
	coreBehatNameConstant             = "core-behat"
	coreBehatDescriptionConstant      = "Run the Behat suite against the standard profile"
	drushSmokeNameConstant            = "drush-smoke"
	drushSmokeDescriptionConstant     = "Run the drush watchdog smoke test"
	grumphpNameConstant               = "grumphp"
	grumphpDescriptionConstant        = "Run the GrumPHP coding standards checks"
	standardProfileConstant           = "standard"
	standardProfileOnlyReasonTemplate = "only available on the standard profile (profile is %s)"
	backupRequiredMajorConstant       = 8
	drushSmokeRequiredMajorConstant   = 7
	resultFileArgumentPrefixConstant  = "--result-file="
)

type backupProjectOperation struct {
	configuration Configuration
	commands      commandFactory
	versions      versionResolver
}

func (operation backupProjectOperation) Name() string {
	return backupProjectNameConstant
}

func (operation backupProjectOperation) Description() string {
	return backupProjectDescriptionConstant
}

func (operation backupProjectOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation backupProjectOperation) Plan(executionContext context.Context, session *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	if versionError := operation.versions.requireMajor(executionContext, session, backupRequiredMajorConstant); versionError != nil {
		return orchestrator.StepList{}, versionError
	}
	backup := operation.configuration.Backup
	return orchestrator.NewStepList(
		orchestrator.CommandStep("export configuration", operation.commands.drush("config-export", yesFlagConstant)),
		orchestrator.CommandStep("dump database", operation.commands.drush("sql:dump", resultFileArgumentPrefixConstant+backup.DumpFile)),
		orchestrator.CommandStep("dump sanitized database", operation.commands.drush("gdpr:sql:dump", resultFileArgumentPrefixConstant+backup.SanitizedDumpFile)),
	), nil
}

type coreBehatOperation struct {
	configuration Configuration
	commands      commandFactory
}

func (operation coreBehatOperation) Name() string {
	return coreBehatNameConstant
}

func (operation coreBehatOperation) Description() string {
	return coreBehatDescriptionConstant
}

func (operation coreBehatOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation coreBehatOperation) Plan(_ context.Context, _ *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	if operation.configuration.Profile != standardProfileConstant {
		return orchestrator.StepList{}, orchestrator.Skip(standardProfileOnlyReasonTemplate, operation.configuration.Profile)
	}
	tools := operation.configuration.Tools
	return orchestrator.NewStepList(
		orchestrator.CommandStep("run behat", operation.commands.tool(tools.Behat, "-c", tools.BehatConfig)),
	), nil
}

type drushSmokeOperation struct {
	commands commandFactory
	versions versionResolver
}

func (operation drushSmokeOperation) Name() string {
	return drushSmokeNameConstant
}

func (operation drushSmokeOperation) Description() string {
	return drushSmokeDescriptionConstant
}

func (operation drushSmokeOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation drushSmokeOperation) Plan(executionContext context.Context, session *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	if versionError := operation.versions.requireMajor(executionContext, session, drushSmokeRequiredMajorConstant); versionError != nil {
		return orchestrator.StepList{}, versionError
	}
	return orchestrator.NewStepList(
		orchestrator.CommandStep("enable database logging", operation.commands.drush(pmEnableArgumentConstant, "dblog", yesFlagConstant)),
		orchestrator.CommandStep("run watchdog smoke test", operation.commands.drush("watchdog-smoketest")),
	), nil
}

type grumphpOperation struct {
	configuration Configuration
	commands      commandFactory
}

func (operation grumphpOperation) Name() string {
	return grumphpNameConstant
}

func (operation grumphpOperation) Description() string {
	return grumphpDescriptionConstant
}

func (operation grumphpOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation grumphpOperation) Plan(_ context.Context, _ *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	return orchestrator.NewStepList(
		orchestrator.CommandStep("run grumphp", operation.commands.tool(operation.configuration.Tools.Grumphp, "run")),
	), nil
}
