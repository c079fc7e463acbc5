package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Export(ctx context.Context) error
	Retry(ctx context.Context) error
	Ack(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to
// a until EOF, "exit" or "quit".
//
//	Not logged in:
//	  help, register, login, list, exit | quit
//
//	Logged in:
//	  help, (l)ist, add, edit <n|id>, delete <n|id>, export,
//	  retry, ack, logout, exit | quit
//
// Entries are referenced by their number in the last list or by id.
// Errors returned by handlers are ignored here; handlers report them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("journal %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, edit <n|id>, delete <n|id>, export, retry, ack, logout, exit")
			} else {
				printlnFn("Available commands: register, login, list, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <number|id>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <number|id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "export":
			_ = a.Export(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "ack":
			_ = a.Ack(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
