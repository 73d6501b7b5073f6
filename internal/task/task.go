// Package task reads predefined `kamel run` tasks from HCL files.
//
//	task "hello" {
//	  file         = "HelloWorld.java"
//	  dev          = true
//	  properties   = ["time=500"]
//	  dependencies = ["camel:jackson"]
//	  traits       = ["logging.level=DEBUG"]
//	  namespace    = env.KAMEL_NAMESPACE
//	}
//
// The `env` object exposes the process environment to expressions.
package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/kamelrun/internal/kamel"
	"github.com/vk/kamelrun/internal/modeline"
	"github.com/vk/kamelrun/internal/placeholder"
)

// DefaultFile is the task file looked up when none is given.
const DefaultFile = "kamelrun.hcl"

// Task is one predefined run.
type Task struct {
	Label                string   `hcl:"label,label"`
	File                 string   `hcl:"file"`
	Dev                  bool     `hcl:"dev,optional"`
	ConfigMap            string   `hcl:"configmap,optional"`
	Secret               string   `hcl:"secret,optional"`
	Resources            []string `hcl:"resources,optional"`
	Dependencies         []string `hcl:"dependencies,optional"`
	Properties           []string `hcl:"properties,optional"`
	Traits               []string `hcl:"traits,optional"`
	EnvironmentVariables []string `hcl:"environment_variables,optional"`
	Volumes              []string `hcl:"volumes,optional"`
	Compression          bool     `hcl:"compression,optional"`
	Profile              string   `hcl:"profile,optional"`
	Namespace            string   `hcl:"namespace,optional"`
}

type fileRoot struct {
	Tasks []*Task `hcl:"task,block"`
}

// File is a loaded task file.
type File struct {
	Path  string
	Tasks []*Task
}

// Load parses and validates a task file. Task `file` attributes are made
// relative to the task file's directory.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode task file %s: %w", path, diags)
	}

	seen := make(map[string]struct{}, len(root.Tasks))
	for _, t := range root.Tasks {
		if _, dup := seen[t.Label]; dup {
			return nil, fmt.Errorf("task file %s: duplicate task '%s'", path, t.Label)
		}
		seen[t.Label] = struct{}{}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("task file %s: task '%s': %w", path, t.Label, err)
		}
		if !filepath.IsAbs(t.File) {
			t.File = filepath.Join(filepath.Dir(path), t.File)
		}
	}
	return &File{Path: path, Tasks: root.Tasks}, nil
}

// Find returns the task with the given label.
func (f *File) Find(label string) (*Task, error) {
	for _, t := range f.Tasks {
		if t.Label == label {
			return t, nil
		}
	}
	labels := make([]string, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		labels = append(labels, t.Label)
	}
	return nil, fmt.Errorf("no task '%s' in %s (have: %s)", label, f.Path, strings.Join(labels, ", "))
}

func (t *Task) validate() error {
	if strings.TrimSpace(t.File) == "" {
		return fmt.Errorf("file must not be empty")
	}
	for _, d := range t.Dependencies {
		if _, err := modeline.ParseDependency(d); err != nil {
			return err
		}
	}
	if _, err := placeholder.ParsePairs(t.Properties); err != nil {
		return err
	}
	return nil
}

// RunOptions converts the task into `kamel run` options.
func (t *Task) RunOptions() kamel.RunOptions {
	return kamel.RunOptions{
		File:                 t.File,
		Dev:                  t.Dev,
		Compression:          t.Compression,
		ConfigMap:            t.ConfigMap,
		Secret:               t.Secret,
		Profile:              t.Profile,
		Resources:            t.Resources,
		Dependencies:         t.Dependencies,
		Properties:           t.Properties,
		Traits:               t.Traits,
		EnvironmentVariables: t.EnvironmentVariables,
		Volumes:              t.Volumes,
		Namespace:            t.Namespace,
	}
}

// PropertyMap returns the task properties as a map for local runs.
func (t *Task) PropertyMap() map[string]string {
	props, _ := placeholder.ParsePairs(t.Properties)
	return props
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			env[k] = cty.StringVal(v)
		}
	}
	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": envVal},
	}
}
