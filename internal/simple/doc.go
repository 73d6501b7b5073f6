// Package simple compiles and evaluates message body expressions.
//
// A `simple` expression is literal text with `${...}` references to the
// current exchange, for example "Hello Camel K from ${routeId}". References
// are parsed and evaluated as HCL templates, so the exchange is exposed to
// them as cty values. A `constant` expression is emitted as written.
package simple
