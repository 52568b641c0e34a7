package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errUsage marks a command called with the wrong arguments.
var errUsage = errors.New("usage")

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	printError(err error)

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	CheckPassword(ctx context.Context, args []string) error

	Upload(ctx context.Context, args []string) error
	Files(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	DeleteFile(ctx context.Context, args []string) error

	Share(ctx context.Context, args []string) error
	UpdateShare(ctx context.Context, args []string) error
	Shares(ctx context.Context, args []string) error
	Shared(ctx context.Context, args []string) error
	DeleteShare(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
	Logs(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Access(ctx context.Context, args []string) error
}

const helpAnonymous = `Available commands:
  register [username]              create an account
  login [username]                 log in
  info <token|link>                show what a share link points to
  access <token|link> [dir]        download a shared file
  check-password                   test a share password against the policy
  status                           show session and server parameters
  exit`

const helpLoggedIn = `Available commands:
  upload <path>...                 encrypt and upload files
  files                            list your files
  download <file-id> [dir]         download and decrypt one of your files
  delete-file <file-id>            delete a file
  share <file-id> [-n max] [-e 24h|7d|RFC3339] [-u alice,bob]
                                   create a password-protected share
  update-share <share-id> [-p] [-n max] [-e ...] [-u ...]
                                   change limits, -p sets a new password
  shares                           list your shares
  shared                           files others shared with you
  delete-share <share-id>          revoke a share
  stats <share-id>                 access statistics
  logs <share-id> [limit]          recent access attempts
  info <token|link>                show what a share link points to
  access <token|link> [dir]        download a shared file
  check-password                   test a share password against the policy
  status                           show session and server parameters
  logout
  exit`

// dispatch runs one command. quit reports whether the REPL should stop.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) (quit bool, err error) {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpAnonymous)
		}
	case "register":
		err = a.Register(ctx, args)
	case "login":
		err = a.Login(ctx, args)
	case "logout":
		err = a.Logout(ctx, args)
	case "status":
		err = a.Status(ctx, args)
	case "check-password":
		err = a.CheckPassword(ctx, args)
	case "upload":
		err = a.Upload(ctx, args)
	case "l", "files", "list":
		err = a.Files(ctx, args)
	case "download":
		err = a.Download(ctx, args)
	case "delete-file":
		err = a.DeleteFile(ctx, args)
	case "share":
		err = a.Share(ctx, args)
	case "update-share":
		err = a.UpdateShare(ctx, args)
	case "shares":
		err = a.Shares(ctx, args)
	case "shared":
		err = a.Shared(ctx, args)
	case "delete-share":
		err = a.DeleteShare(ctx, args)
	case "stats":
		err = a.Stats(ctx, args)
	case "logs":
		err = a.Logs(ctx, args)
	case "info":
		err = a.Info(ctx, args)
	case "access":
		err = a.Access(ctx, args)
	case "exit", "quit":
		printlnFn("Bye!")
		return true, nil
	default:
		printlnFn("Unknown command:", cmd)
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, err
}

// runREPL reads commands line by line from reader until EOF, "exit" or
// "quit". Command errors are reported and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vs (%s)> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		quit, cmdErr := dispatch(ctx, a, parts[0], parts[1:])
		if quit {
			return
		}
		if cmdErr != nil && !strings.HasPrefix(cmdErr.Error(), "unknown command") {
			a.printError(cmdErr)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
