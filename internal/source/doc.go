// Package source implements config.Loader for Camel K integration source
// files.
//
// Loading a file reads its modeline, detects the DSL, parses the declared
// routes and then resolves every `{{name:default}}` placeholder in their
// URIs and expressions against the layered property set. Resolution
// happens once per Load call, so a run sees one consistent set of values
// until the next activation. Any unresolved placeholder, unknown component
// or malformed route fails the whole load before a route can start.
package source
