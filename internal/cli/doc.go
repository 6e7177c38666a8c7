// Package cli implements the interactive FileVault shell.
//
// The shell is a small REPL (see runREPL) dispatching to command
// handlers on App. Handlers prompt for whatever input they need,
// call the application services, and print results; transient
// backend failures are retried with backoff before being reported.
//
// Secrets hygiene: passwords are read without echo and wiped after
// key derivation; the derived master key lives only inside the
// current session and is wiped on logout and exit.
package cli
