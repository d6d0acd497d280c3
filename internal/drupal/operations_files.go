package drupal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tyemirov/drutask/internal/orchestrator"
)

const (
	createRequiredFilesNameConstant        = "create-required-files"
	createRequiredFilesDescriptionConstant = "Create the directories and settings files a fresh Drupal checkout needs"
	gitkeepFileNameConstant                = ".gitkeep"
	settingsFileNameConstant               = "settings.php"
	defaultSettingsFileNameConstant        = "default.settings.php"
	filesDirectoryNameConstant             = "files"
	configSyncDirectiveTemplate            = "\n$settings['config_sync_directory'] = '%s';\n"
	requiredFilesPresentReasonConstant     = "required files already exist"
	settingsFileMode                       = os.FileMode(0o666)
	filesDirectoryMode                     = os.FileMode(0o777)
)

var requiredExtensionDirectories = []string{"modules", "profiles", "themes"}

type createRequiredFilesOperation struct {
	configuration Configuration
}

func (operation createRequiredFilesOperation) Name() string {
	return createRequiredFilesNameConstant
}

func (operation createRequiredFilesOperation) Description() string {
	return createRequiredFilesDescriptionConstant
}

func (operation createRequiredFilesOperation) Options() []orchestrator.OptionDefinition {
	return nil
}

func (operation createRequiredFilesOperation) Plan(_ context.Context, session *orchestrator.Session, _ orchestrator.Options) (orchestrator.StepList, error) {
	builder := orchestrator.StepListBuilder{}

	for _, directoryName := range requiredExtensionDirectories {
		directoryPath := operation.configuration.RootPath(directoryName)
		exists, existsError := session.Exists(directoryPath)
		if existsError != nil {
			return orchestrator.StepList{}, existsError
		}
		if exists {
			continue
		}
		builder.Add(
			orchestrator.FilesystemStep("create "+directoryName+" directory", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemMkdir, Path: directoryPath}),
			orchestrator.FilesystemStep("keep "+directoryName+" directory in git", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemTouch, Path: filepath.Join(directoryPath, gitkeepFileNameConstant)}),
		)
	}

	settingsPath := operation.configuration.SitePath(settingsFileNameConstant)
	defaultSettingsPath := operation.configuration.SitePath(defaultSettingsFileNameConstant)
	settingsExists, settingsError := session.Exists(settingsPath)
	if settingsError != nil {
		return orchestrator.StepList{}, settingsError
	}
	defaultSettingsExists, defaultSettingsError := session.Exists(defaultSettingsPath)
	if defaultSettingsError != nil {
		return orchestrator.StepList{}, defaultSettingsError
	}
	if !settingsExists && defaultSettingsExists {
		directive := fmt.Sprintf(configSyncDirectiveTemplate, operation.configuration.Site.ConfigSyncDirectory)
		builder.Add(
			orchestrator.FilesystemStep("copy default settings", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemCopy, SourcePath: defaultSettingsPath, Path: settingsPath}),
			orchestrator.FilesystemStep("set config sync directory", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemAppend, Path: settingsPath, Content: []byte(directive)}),
			orchestrator.FilesystemStep("make settings writable for the installer", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemChmod, Path: settingsPath, Mode: settingsFileMode}),
		)
	}

	filesPath := operation.configuration.SitePath(filesDirectoryNameConstant)
	filesExists, filesError := session.Exists(filesPath)
	if filesError != nil {
		return orchestrator.StepList{}, filesError
	}
	if !filesExists {
		builder.Add(
			orchestrator.FilesystemStep("create files directory", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemMkdir, Path: filesPath, Mode: filesDirectoryMode}),
			orchestrator.FilesystemStep("open files directory permissions", orchestrator.FilesystemOperation{Kind: orchestrator.FilesystemChmod, Path: filesPath, Mode: filesDirectoryMode}),
		)
	}

	if builder.Len() == 0 {
		return orchestrator.StepList{}, orchestrator.Skip(requiredFilesPresentReasonConstant)
	}
	return builder.Build(), nil
}
