// Package kamel computes what deploying an integration to a Camel K
// cluster would look like: the `kamel run` command line and the
// Integration custom resource. Nothing here talks to a cluster.
package kamel
