// Package registry provides the central "glue" for the component system.
//
// The Registry maps the component names used in endpoint URIs (e.g. the
// "timer" in "timer:tick?period=1000") to the compiled Go triggers and
// sinks that implement them. Modules populate it during startup, and the
// loader validates every route against it so that a route referencing an
// unknown or misused component fails before anything runs.
package registry
