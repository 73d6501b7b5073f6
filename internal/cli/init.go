package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/dsl"
	"github.com/vk/kamelrun/internal/kamel"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init FILE",
		Short: "Create a starter integration source, e.g. 'init Routes.java'",
		Long: `init writes a starter timer route in the language given by the file
extension (.java, .groovy, .kts, .js, .yaml, .yml or .xml). Java and Groovy
file names must be valid class names. Existing files are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			err := kamel.Init(path)
			switch {
			case errors.Is(err, dsl.ErrUnsupportedLanguage),
				errors.Is(err, kamel.ErrInvalidName),
				errors.Is(err, kamel.ErrInvalidFileName):
				return usageError("%v", err)
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
