package cli

import (
	"fmt"
	"maps"
	"time"

	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/app"
	"github.com/vk/kamelrun/internal/task"
	"github.com/vk/kamelrun/internal/watch"
)

type runOptions struct {
	props           propertyFlags
	dev             bool
	devDebounce     time.Duration
	duration        time.Duration
	taskName        string
	tasksFile       string
	healthcheckPort int
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [PATH...]",
		Short: "Run integrations locally",
		Long: `Load every integration source under the given files or directories and run
its routes until interrupted. With --task the source and options come from
a task in the tasks file.`,
		Example: `  kamelrun run HelloWorld.java
  kamelrun run routes/ -p time=500 --property-file app.properties
  kamelrun run --task hello --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(g, args)
			if err != nil {
				return err
			}
			a := app.NewApp(cmd.OutOrStdout(), cfg)
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
	o.props.register(cmd)
	cmd.Flags().BoolVar(&o.dev, "dev", false, "Watch sources and reload on change")
	cmd.Flags().DurationVar(&o.devDebounce, "dev-debounce", watch.DefaultDebounce, "Quiet period before a dev reload")
	cmd.Flags().DurationVar(&o.duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().StringVar(&o.taskName, "task", "", "Run the named task from the tasks file")
	cmd.Flags().StringVar(&o.tasksFile, "tasks-file", task.DefaultFile, "HCL file with task definitions")
	cmd.Flags().IntVar(&o.healthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	return cmd
}

// config merges task, flag and argument input into an app.Config. Flag
// properties win over task properties.
func (o *runOptions) config(g *globalOptions, paths []string) (*app.Config, error) {
	props, err := o.props.values()
	if err != nil {
		return nil, err
	}

	dev := o.dev
	if o.taskName != "" {
		tasks, err := task.Load(o.tasksFile)
		if err != nil {
			return nil, usageError("%v", err)
		}
		t, err := tasks.Find(o.taskName)
		if err != nil {
			return nil, usageError("%v", err)
		}
		merged := t.PropertyMap()
		maps.Copy(merged, props)
		props = merged
		paths = append(paths, t.File)
		dev = dev || t.Dev
	}
	if len(paths) == 0 {
		return nil, usageError("no integration sources given: pass a PATH or --task")
	}

	cfg := app.Config{
		Paths:           paths,
		Properties:      props,
		PropertyFiles:   o.props.propertyFiles,
		EnvProperties:   o.props.envProperties,
		Dev:             dev,
		DevDebounce:     o.devDebounce,
		Duration:        o.duration,
		HealthcheckPort: o.healthcheckPort,
	}
	g.apply(&cfg)

	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", fmt.Errorf("invalid configuration: %w", err))
	}
	return appConfig, nil
}
