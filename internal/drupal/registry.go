package drupal

import (
	"github.com/tyemirov/drutask/internal/orchestrator"
)

// NewOperations returns every Drupal operation bound to the sanitized configuration, in command table order.
func NewOperations(configuration Configuration) []orchestrator.Operation {
	sanitized := configuration.Sanitize()
	commands := newCommandFactory(sanitized)
	versions := versionResolver{configuration: sanitized, commands: commands}

	return []orchestrator.Operation{
		createRequiredFilesOperation{configuration: sanitized},
		enableAllOperation{configuration: sanitized, commands: commands},
		switchModeOperation{commands: commands},
		generateDataOperation{commands: commands},
		generateUsersOperation{commands: commands, versions: versions},
		generateCookieOperation{configuration: sanitized, commands: commands, versions: versions},
		backupProjectOperation{configuration: sanitized, commands: commands, versions: versions},
		coreBehatOperation{configuration: sanitized, commands: commands},
		drushSmokeOperation{commands: commands, versions: versions},
		grumphpOperation{configuration: sanitized, commands: commands},
	}
}

// NewRegistry builds the command table of Drupal operations.
func NewRegistry(configuration Configuration) (*orchestrator.Registry, error) {
	return orchestrator.NewRegistry(NewOperations(configuration)...)
}
