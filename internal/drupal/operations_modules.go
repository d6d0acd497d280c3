package drupal

import (
	"context"
	"strings"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	enableAllNameConstant               = "enable-all"
	enableAllDescriptionConstant        = "Enable every available module except examples and excluded modules"
	switchModeNameConstant              = "switch-mode"
	switchModeDescriptionConstant       = "Switch modules and user accounts on or off"
	excludeOptionNameConstant           = "exclude"
	excludeOptionUsageConstant          = "Comma separated modules never to enable (defaults to site.enable_all_exclude)"
	modeOptionNameConstant              = "mode"
	modeOptionUsageConstant             = "Target mode: on or off"
	modulesOptionNameConstant           = "modules"
	modulesOptionUsageConstant          = "Comma separated modules to enable (on) or uninstall (off)"
	usersOptionNameConstant             = "users"
	usersOptionUsageConstant            = "Comma separated users to unblock (on) or block (off)"
	modeOnConstant                      = "on"
	modeOffConstant                     = "off"
	exampleModuleMarkerConstant         = "_example"
	modulesAlreadyEnabledReasonConstant = "all available modules are already enabled"
	invalidModeReasonTemplate           = "mode must be %q or %q, got %q"
	nothingToSwitchReasonConstant       = "No modules or users to perform switch on."
	listSeparatorConstant               = ","
	pmListArgumentConstant              = "pm:list"
	moduleTypeArgumentConstant          = "--type=module"
	jsonFormatArgumentConstant          = "--format=json"
	enabledStatusArgumentConstant       = "--status=enabled"
	pmEnableArgumentConstant            = "pm:enable"
	pmUninstallArgumentConstant         = "pm:uninstall"
	userBlockArgumentConstant           = "user:block"
	userUnblockArgumentConstant         = "user:unblock"
)

// moduleDenylist names modules never enabled automatically.
var moduleDenylist = []string{"webprofiler"}

// ModulesToEnable computes (catalog − enabled) − exclusions in catalog order without duplicates.
// Exclusions cover any name containing "_example", the fixed denylist and the caller's list.
func ModulesToEnable(catalog []string, enabled []string, exclusions []string) []string {
	excluded := make(map[string]struct{}, len(moduleDenylist)+len(exclusions))
	for _, name := range moduleDenylist {
		excluded[name] = struct{}{}
	}
	for _, name := range exclusions {
		excluded[strings.TrimSpace(name)] = struct{}{}
	}
	enabledSet := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(catalog))
	toEnable := make([]string, 0, len(catalog))
	for _, name := range catalog {
		if _, duplicate := seen[name]; duplicate {
			continue
		}
		seen[name] = struct{}{}
		if _, isEnabled := enabledSet[name]; isEnabled {
			continue
		}
		if strings.Contains(name, exampleModuleMarkerConstant) {
			continue
		}
		if _, isExcluded := excluded[name]; isExcluded {
			continue
		}
		toEnable = append(toEnable, name)
	}
	return toEnable
}

type enableAllOperation struct {
	configuration Configuration
	commands      commandFactory
}

func (operation enableAllOperation) Name() string {
	return enableAllNameConstant
}

func (operation enableAllOperation) Description() string {
	return enableAllDescriptionConstant
}

func (operation enableAllOperation) Options() []orchestrator.OptionDefinition {
	return []orchestrator.OptionDefinition{{Name: excludeOptionNameConstant, Usage: excludeOptionUsageConstant}}
}

func (operation enableAllOperation) Plan(executionContext context.Context, session *orchestrator.Session, options orchestrator.Options) (orchestrator.StepList, error) {
	catalogOutput, catalogError := session.Capture(executionContext, operation.commands.drush(pmListArgumentConstant, moduleTypeArgumentConstant, jsonFormatArgumentConstant))
	if catalogError != nil {
		return orchestrator.StepList{}, catalogError
	}
	catalog, catalogParseError := ParseModuleList(catalogOutput)
	if catalogParseError != nil {
		return orchestrator.StepList{}, catalogParseError
	}

	enabledOutput, enabledError := session.Capture(executionContext, operation.commands.drush(pmListArgumentConstant, moduleTypeArgumentConstant, jsonFormatArgumentConstant, enabledStatusArgumentConstant))
	if enabledError != nil {
		return orchestrator.StepList{}, enabledError
	}
	enabled, enabledParseError := ParseModuleList(enabledOutput)
	if enabledParseError != nil {
		return orchestrator.StepList{}, enabledParseError
	}

	exclusions := options.List(excludeOptionNameConstant)
	if len(exclusions) == 0 {
		exclusions = operation.configuration.Site.EnableAllExclude
	}

	toEnable := ModulesToEnable(catalog, enabled, exclusions)
	if len(toEnable) == 0 {
		return orchestrator.StepList{}, orchestrator.Skip(modulesAlreadyEnabledReasonConstant)
	}

	return orchestrator.NewStepList(
		orchestrator.CommandStep("enable modules", operation.commands.drush(pmEnableArgumentConstant, strings.Join(toEnable, listSeparatorConstant), yesFlagConstant)),
	), nil
}

type switchModeOperation struct {
	commands commandFactory
}

func (operation switchModeOperation) Name() string {
	return switchModeNameConstant
}

func (operation switchModeOperation) Description() string {
	return switchModeDescriptionConstant
}

func (operation switchModeOperation) Options() []orchestrator.OptionDefinition {
	return []orchestrator.OptionDefinition{
		{Name: modeOptionNameConstant, Usage: modeOptionUsageConstant, Required: true},
		{Name: modulesOptionNameConstant, Usage: modulesOptionUsageConstant},
		{Name: usersOptionNameConstant, Usage: usersOptionUsageConstant},
	}
}

func (operation switchModeOperation) Plan(_ context.Context, _ *orchestrator.Session, options orchestrator.Options) (orchestrator.StepList, error) {
	mode := strings.ToLower(options.Value(modeOptionNameConstant))
	if mode != modeOnConstant && mode != modeOffConstant {
		return orchestrator.StepList{}, orchestrator.Skip(invalidModeReasonTemplate, modeOnConstant, modeOffConstant, options.Value(modeOptionNameConstant))
	}

	userAction, moduleAction := userBlockArgumentConstant, pmUninstallArgumentConstant
	if mode == modeOnConstant {
		userAction, moduleAction = userUnblockArgumentConstant, pmEnableArgumentConstant
	}

	builder := orchestrator.StepListBuilder{}
	if users := options.List(usersOptionNameConstant); len(users) > 0 {
		builder.Add(orchestrator.CommandStep("switch users "+mode, operation.commands.drush(userAction, strings.Join(users, listSeparatorConstant))))
	}
	if modules := options.List(modulesOptionNameConstant); len(modules) > 0 {
		builder.Add(orchestrator.CommandStep("switch modules "+mode, operation.commands.drush(moduleAction, strings.Join(modules, listSeparatorConstant), yesFlagConstant)))
	}

	if builder.Len() == 0 {
		return orchestrator.StepList{}, orchestrator.Skip(nothingToSwitchReasonConstant)
	}
	return builder.Build(), nil
}
