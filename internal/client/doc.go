// Package client implements the tracker client application runtime.
//
// It wires the local offline store, the server adapter, the connectivity
// monitor, the sync engine and the status TUI into a single process
// lifecycle.
package client
