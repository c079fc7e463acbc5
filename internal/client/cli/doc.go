// Package cli provides the interactive journal command-line client.
//
// It wires configuration, the local session store, the gRPC backend, the
// live entry list and the entry form into a line-oriented REPL. The REPL
// only calls their public operations and prints what they report; entry
// changes show up in the list once the live query delivers them.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
