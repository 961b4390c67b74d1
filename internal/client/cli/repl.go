package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errOut receives command errors.
var errOut io.Writer = os.Stdout

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Perms(ctx context.Context) error
	Can(ctx context.Context, args []string) error
	Button(ctx context.Context, args []string) error
	Call(ctx context.Context, method string, args []string) error
	Upload(ctx context.Context, args []string) error
	Fingerprint(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, can, fingerprint, help, exit"
	helpLoggedIn  = "Available commands: whoami, perms, can, button, get, post, put, patch, delete, upload, fingerprint, logout, help, exit"
)

// runREPL starts a simple read-eval-print loop for the botadmin CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Errors returned by a command are printed and
// the loop continues. The loop exits on EOF or when the user types "exit" or
// "quit".
//
//	Not logged in:
//	  - login                  sign in
//	  - can <route>            show the guard decision for a route
//	  - fingerprint [file]     write the license request file
//
//	Logged in, additionally:
//	  - whoami | perms         show the session user or permission set
//	  - button <key>           show whether a secured button is visible
//	  - get <path> [k=v ...]   raw API call, likewise delete
//	  - post|put|patch <path> [json]
//	  - upload <kb> <ds> <files...>
//	  - logout
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		fmt.Printf("botadmin %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "perms":
			cmdErr = a.Perms(ctx)

		case "can":
			cmdErr = a.Can(ctx, args)

		case "button":
			cmdErr = a.Button(ctx, args)

		case "get", "post", "put", "patch", "delete":
			cmdErr = a.Call(ctx, strings.ToUpper(cmd), args)

		case "upload":
			cmdErr = a.Upload(ctx, args)

		case "fingerprint":
			cmdErr = a.Fingerprint(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printErr(errOut, "Error: "+cmdErr.Error())
		}
	}
}
