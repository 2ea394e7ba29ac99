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
	List(ctx context.Context) error
	History(ctx context.Context) error
	Add(ctx context.Context) error
	Scan(ctx context.Context) error
	Buy(ctx context.Context) error
	Undo(ctx context.Context) error
	Edit(ctx context.Context) error
	Remove(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Categories(ctx context.Context, args []string) error
	Code(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the restock CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The prompt shows the current sync status (from statusFn) and accepts:
//
//	list | l         - restock list
//	history | h      - already-bought items
//	scan             - resolve a barcode and confirm a new item
//	add              - manual item entry
//	buy              - mark a listed item as bought
//	undo             - put a history item back on the list
//	edit             - edit a listed item
//	delete           - remove an item
//	search <term>    - filter the restock list by name
//	cats [add|rm]    - manage categories
//	code [set|clear] - manage the sync code
//	sync             - manual refresh against the mirror
//	exit | quit      - leave the program
//
// Any errors returned by command handlers are printed here; handlers keep
// their own state. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("restock %s> ", statusFn()))
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

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, (h)istory, scan, add, buy, undo, edit, delete, search, cats, code, sync, exit")

		case "l", "list":
			err = a.List(ctx)

		case "h", "history":
			err = a.History(ctx)

		case "scan":
			err = a.Scan(ctx)

		case "add":
			err = a.Add(ctx)

		case "buy":
			err = a.Buy(ctx)

		case "undo":
			err = a.Undo(ctx)

		case "edit":
			err = a.Edit(ctx)

		case "delete":
			err = a.Remove(ctx)

		case "search":
			err = a.Search(ctx, args)

		case "cats":
			err = a.Categories(ctx, args)

		case "code":
			err = a.Code(ctx, args)

		case "sync":
			err = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
