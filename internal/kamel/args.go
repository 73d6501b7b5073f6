package kamel

import (
	"fmt"
	"strings"
)

// RunOptions are the inputs of a `kamel run` invocation.
type RunOptions struct {
	File                 string
	Dev                  bool
	Compression          bool
	ConfigMap            string
	Secret               string
	Profile              string
	Resources            []string
	Dependencies         []string
	Properties           []string
	Traits               []string
	EnvironmentVariables []string
	Volumes              []string
	Namespace            string
}

// ComputeArgs returns the `kamel` arguments for opts. Every flag value is a
// separate element so the result can be passed to exec as-is.
func ComputeArgs(opts RunOptions) []string {
	args := []string{"run", opts.File}
	if opts.Dev {
		args = append(args, "--dev")
	}
	if opts.Compression {
		args = append(args, "--compression")
	}
	if strings.TrimSpace(opts.ConfigMap) != "" {
		args = append(args, "--config=configmap:"+opts.ConfigMap)
	}
	if strings.TrimSpace(opts.Secret) != "" {
		args = append(args, "--config=secret:"+opts.Secret)
	}
	if strings.TrimSpace(opts.Profile) != "" {
		args = append(args, "--profile="+opts.Profile)
	}
	for _, r := range opts.Resources {
		args = append(args, "--resource=file:"+r)
	}
	for _, d := range opts.Dependencies {
		args = append(args, "--dependency="+d)
	}
	for _, p := range opts.Properties {
		args = append(args, "-p", p)
	}
	for _, t := range opts.Traits {
		args = append(args, "-t", t)
	}
	for _, e := range opts.EnvironmentVariables {
		args = append(args, "-e", e)
	}
	for _, v := range opts.Volumes {
		args = append(args, "-v", v)
	}
	if strings.TrimSpace(opts.Namespace) != "" {
		args = append(args, "--namespace="+opts.Namespace)
	}
	return args
}

// CommandLine renders args after the binary name, quoting arguments that
// contain whitespace or quotes.
func CommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, binary)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
