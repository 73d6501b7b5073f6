// Package config defines the format-agnostic model of loaded integrations,
// along with the Loader interface that turns source files into that model.
//
// The `config.Model` is the single source of truth for the `engine`
// package and for the deployment helpers in `kamel`. Concrete source
// parsing lives in the `dsl` and `source` packages.
package config
