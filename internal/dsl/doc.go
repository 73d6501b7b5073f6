// Package dsl parses the route definitions of an integration source file.
//
// Java, Groovy, Kotlin and JavaScript sources share the fluent builder
// syntax `from(uri).routeId(id).setBody().simple(text).to(uri)`. Their
// route chains are evaluated in an embedded JavaScript VM that records
// each builder call. YAML and XML sources are decoded structurally. Every
// language produces the same []*Route shape, validated to have exactly one
// trigger and one sink.
package dsl
