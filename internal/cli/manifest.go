package cli

import (
	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/kamel"
	"github.com/vk/kamelrun/internal/source"
)

func newManifestCmd() *cobra.Command {
	var (
		output    string
		namespace string
	)
	cmd := &cobra.Command{
		Use:   "manifest FILE",
		Short: "Print the Integration resource a source would be deployed as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := kamel.Format(output)
			if format != kamel.FormatYAML && format != kamel.FormatJSON {
				return usageError("invalid output format %q: must be 'yaml' or 'json'", output)
			}
			in, err := source.ReadHeader(args[0])
			if err != nil {
				return err
			}
			m, err := kamel.Manifest(in, namespace)
			if err != nil {
				return err
			}
			out, err := m.Encode(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (yaml, json)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Override the modeline namespace")
	return cmd
}
