package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

// OptionFlagDefinition captures a string option exposed as a command flag.
type OptionFlagDefinition struct {
	Name    string
	Usage   string
	Default string
}

// BindOptionFlags attaches one local string flag per definition, skipping names already bound.
func BindOptionFlags(command *cobra.Command, definitions []OptionFlagDefinition) {
	if command == nil {
		return
	}
	flagSet := command.Flags()
	for _, definition := range definitions {
		flagName := strings.TrimSpace(definition.Name)
		if len(flagName) == 0 || flagSet.Lookup(flagName) != nil {
			continue
		}
		flagSet.String(flagName, definition.Default, definition.Usage)
	}
}

// ChangedOptionValues returns the values of the named flags the user set explicitly.
func ChangedOptionValues(command *cobra.Command, names []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, name := range names {
		value, changed, lookupError := StringFlag(command, name)
		if lookupError != nil {
			return nil, lookupError
		}
		if changed {
			values[name] = value
		}
	}
	return values, nil
}
