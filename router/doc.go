// Package router wires every endpoint to its handler using the Go 1.22
// method-and-path ServeMux patterns. Authorization is not decided here: each
// handler enforces its own user or admin gate.
package router
