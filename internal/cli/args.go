package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/kamel"
	"github.com/vk/kamelrun/internal/task"
)

func newArgsCmd() *cobra.Command {
	var (
		opts      kamel.RunOptions
		taskName  string
		tasksFile string
		binary    string
	)
	cmd := &cobra.Command{
		Use:   "args [FILE]",
		Short: "Print the 'kamel run' command line for a source or task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case taskName != "" && len(args) > 0:
				return usageError("pass either FILE or --task, not both")
			case taskName != "":
				tasks, err := task.Load(tasksFile)
				if err != nil {
					return usageError("%v", err)
				}
				t, err := tasks.Find(taskName)
				if err != nil {
					return usageError("%v", err)
				}
				opts = overlayFlags(t.RunOptions(), opts, cmd.Flags().Changed)
			case len(args) == 1:
				opts.File = args[0]
			default:
				return usageError("no source given: pass FILE or --task")
			}
			fmt.Fprintln(cmd.OutOrStdout(), kamel.CommandLine(binary, kamel.ComputeArgs(opts)))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.Dev, "dev", false, "Add --dev")
	f.BoolVar(&opts.Compression, "compression", false, "Add --compression")
	f.StringVar(&opts.ConfigMap, "configmap", "", "ConfigMap to mount as configuration")
	f.StringVar(&opts.Secret, "secret", "", "Secret to mount as configuration")
	f.StringVar(&opts.Profile, "profile", "", "Trait profile")
	f.StringArrayVar(&opts.Resources, "resource", nil, "Resource file (repeatable)")
	f.StringArrayVar(&opts.Dependencies, "dependency", nil, "Dependency (repeatable)")
	f.StringArrayVarP(&opts.Properties, "property", "p", nil, "Property as key=value (repeatable)")
	f.StringArrayVarP(&opts.Traits, "trait", "t", nil, "Trait as trait.key=value (repeatable)")
	f.StringArrayVarP(&opts.EnvironmentVariables, "env", "e", nil, "Environment variable (repeatable)")
	f.StringArrayVarP(&opts.Volumes, "volume", "v", nil, "Volume (repeatable)")
	f.StringVar(&opts.Namespace, "namespace", "", "Target namespace")
	f.StringVar(&taskName, "task", "", "Use the named task from the tasks file")
	f.StringVar(&tasksFile, "tasks-file", task.DefaultFile, "HCL file with task definitions")
	f.StringVar(&binary, "binary", "kamel", "Name of the kamel binary")
	return cmd
}

// overlayFlags applies the flags set on the command line over a task's
// options: single-valued flags replace the task value, repeatable flags
// are appended after the task's entries.
func overlayFlags(base, flags kamel.RunOptions, changed func(name string) bool) kamel.RunOptions {
	merged := base
	if changed("dev") {
		merged.Dev = flags.Dev
	}
	if changed("compression") {
		merged.Compression = flags.Compression
	}
	if changed("configmap") {
		merged.ConfigMap = flags.ConfigMap
	}
	if changed("secret") {
		merged.Secret = flags.Secret
	}
	if changed("profile") {
		merged.Profile = flags.Profile
	}
	if changed("namespace") {
		merged.Namespace = flags.Namespace
	}
	merged.Resources = appendChanged(base.Resources, flags.Resources, changed("resource"))
	merged.Dependencies = appendChanged(base.Dependencies, flags.Dependencies, changed("dependency"))
	merged.Properties = appendChanged(base.Properties, flags.Properties, changed("property"))
	merged.Traits = appendChanged(base.Traits, flags.Traits, changed("trait"))
	merged.EnvironmentVariables = appendChanged(base.EnvironmentVariables, flags.EnvironmentVariables, changed("env"))
	merged.Volumes = appendChanged(base.Volumes, flags.Volumes, changed("volume"))
	return merged
}

func appendChanged(base, extra []string, changed bool) []string {
	if !changed || len(extra) == 0 {
		return base
	}
	return append(append([]string(nil), base...), extra...)
}
