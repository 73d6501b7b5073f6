package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/app"
	"github.com/vk/kamelrun/internal/config"
)

func newInspectCmd(g *globalOptions) *cobra.Command {
	var props propertyFlags
	cmd := &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Load integrations and print their resolved routes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := props.values()
			if err != nil {
				return err
			}
			cfg := app.Config{
				Paths:         args,
				Properties:    values,
				PropertyFiles: props.propertyFiles,
				EnvProperties: props.envProperties,
			}
			g.apply(&cfg)
			appConfig, err := app.NewConfig(cfg)
			if err != nil {
				return usageError("%v", err)
			}

			a, err := app.Load(cmd.ErrOrStderr(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()
			printModel(cmd.OutOrStdout(), a.Model())
			return nil
		},
	}
	props.register(cmd)
	return cmd
}

func printModel(w io.Writer, model *config.Model) {
	for _, in := range model.Integrations {
		fmt.Fprintf(w, "integration %s (%s) %s\n", in.Name, in.Language, in.SourcePath)
		if len(in.Dependencies) > 0 {
			deps := make([]string, 0, len(in.Dependencies))
			for _, d := range in.Dependencies {
				deps = append(deps, d.Coordinates())
			}
			fmt.Fprintf(w, "  dependencies: %s\n", strings.Join(deps, ", "))
		}
		if len(in.Traits) > 0 {
			fmt.Fprintf(w, "  traits: %s\n", strings.Join(in.Traits, ", "))
		}
		for _, r := range in.Routes {
			fmt.Fprintf(w, "  route %s\n", r)
		}
	}
}
