package drupal

import (
	"github.com/tyemirov/drutask/internal/execshell"
)

const (
	yesFlagConstant          = "-y"
	rootOptionPrefixConstant = "--root="
)

// commandFactory renders structured invocations of drush and the auxiliary tools.
type commandFactory struct {
	configuration Configuration
}

func newCommandFactory(configuration Configuration) commandFactory {
	return commandFactory{configuration: configuration}
}

// drush builds a drush invocation. A configured site alias is prepended and selects the site;
// without one, --root points drush at the configured Drupal root.
func (factory commandFactory) drush(arguments ...string) execshell.ShellCommand {
	fullArguments := make([]string, 0, len(arguments)+1)
	alias := factory.configuration.Drush.Alias
	if len(alias) > 0 {
		fullArguments = append(fullArguments, alias)
	}
	fullArguments = append(fullArguments, arguments...)
	if len(alias) == 0 {
		fullArguments = append(fullArguments, rootOptionPrefixConstant+factory.configuration.Root)
	}
	return execshell.ShellCommand{
		Name:    execshell.CommandName(factory.configuration.Drush.Binary),
		Details: execshell.CommandDetails{Arguments: fullArguments},
	}
}

func (factory commandFactory) tool(binary string, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandName(binary),
		Details: execshell.CommandDetails{Arguments: append([]string{}, arguments...)},
	}
}

func (factory commandFactory) curl(arguments ...string) execshell.ShellCommand {
	return factory.tool(factory.configuration.Tools.Curl, arguments...)
}
