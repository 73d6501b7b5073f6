package cli

import (
	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/placeholder"
)

// propertyFlags are the property sources shared by run and inspect.
type propertyFlags struct {
	properties    []string
	propertyFiles []string
	envProperties bool
}

func (p *propertyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.properties, "property", "p", nil, "Property override as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&p.propertyFiles, "property-file", nil, "Java .properties file (repeatable)")
	cmd.Flags().BoolVar(&p.envProperties, "env-properties", false, "Resolve placeholders from the environment as a last resort")
}

// values parses the -p pairs.
func (p *propertyFlags) values() (map[string]string, error) {
	props, err := placeholder.ParsePairs(p.properties)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return props, nil
}
