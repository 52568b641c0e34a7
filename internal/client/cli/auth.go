package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultshare/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register creates an account. The username may be given as the first
// argument, otherwise it is prompted for.
func (a *App) Register(ctx context.Context, args []string) error {
	userName, err := a.userNameArg(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.auth.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can now login.")
	return nil
}

// Login authenticates and stores the session locally so later runs start
// logged in.
func (a *App) Login(ctx context.Context, args []string) error {
	userName, err := a.userNameArg(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.auth.Login(ctx, userName, password); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Status prints the session and the server's encryption parameters.
func (a *App) Status(ctx context.Context, _ []string) error {
	fmt.Fprintf(a.out, "User:   %s\n", a.status())
	if a.config != nil {
		fmt.Fprintf(a.out, "Server: %s\n", a.config.ServerEndpointAddr)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	params, err := a.auth.Ping(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Status: unreachable")
		return err
	}
	fmt.Fprintf(a.out, "Status: online (cipher %s, %d-byte keys)\n", params.FileCipher, params.KeyLength)
	return nil
}

// CheckPassword tests a candidate share password against the local policy
// and lists every rule it breaks.
func (a *App) CheckPassword(_ context.Context, _ []string) error {
	password, err := getPassword(a.reader, "Password to check", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.shares.CheckPassword(string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password meets the policy")
	return nil
}

func (a *App) userNameArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	name, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	return name, nil
}
