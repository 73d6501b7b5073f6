// Package placeholder resolves `{{name:default}}` property placeholders
// against a layered, immutable property set.
package placeholder
