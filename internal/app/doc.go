// Package app wires the loader, the component registry, the engine and the
// health server into a runnable application, decoupled from the CLI.
package app
