// Package engine runs loaded integrations.
//
// Every route gets a Runner that owns the route's trigger and sink. The
// trigger calls back into the Runner once per tick; the Runner moves from
// Idle to Emit, builds an exchange, renders the body, hands it to the sink
// and returns to Idle. Rendering and delivery failures are logged and
// counted but never stop the route. Routes run until the context ends or
// their trigger is exhausted.
package engine
