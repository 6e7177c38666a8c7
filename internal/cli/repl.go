package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Put(ctx context.Context, path string) error
	Get(ctx context.Context, id string) error
	Thumb(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the FileVault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — open a session
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - ls | list      — list stored files
//	  - put <path>     — encrypt and store a local file
//	  - get <id>       — download and decrypt a file
//	  - thumb <id>     — download a file's preview image
//	  - rm <id>        — remove a file and its blobs
//	  - logout         — close the session
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)s, put <path>, get <id>, thumb <id>, rm <id>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "ls", "list":
			_ = a.List(ctx)

		case "put":
			if len(args) == 0 {
				printlnFn("Usage: put <file path>")
				continue
			}
			_ = a.Put(ctx, args[0])

		case "get":
			if len(args) == 0 {
				printlnFn("Usage: get <id>")
				continue
			}
			_ = a.Get(ctx, args[0])

		case "thumb":
			if len(args) == 0 {
				printlnFn("Usage: thumb <id>")
				continue
			}
			_ = a.Thumb(ctx, args[0])

		case "rm":
			if len(args) == 0 {
				printlnFn("Usage: rm <id>")
				continue
			}
			_ = a.Remove(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
