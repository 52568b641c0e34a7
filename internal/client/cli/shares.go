package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
)

// shareFlags parses the option flags shared by share and update-share.
type shareFlags struct {
	maxDownloads int
	expires      string
	users        string
	rotate       bool
}

func parseShareFlags(name string, args []string, withRotate bool) (*shareFlags, pb.ShareOptions, error) {
	var sf shareFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&sf.maxDownloads, "n", 0, "maximum number of downloads")
	fs.StringVar(&sf.expires, "e", "", "expiry: duration (24h), days (7d) or RFC3339 time")
	fs.StringVar(&sf.users, "u", "", "comma-separated usernames allowed to access")
	if withRotate {
		fs.BoolVar(&sf.rotate, "p", false, "set a new share password")
	}

	var opts pb.ShareOptions
	if err := fs.Parse(args); err != nil {
		return nil, opts, fmt.Errorf("%w: %v", errUsage, err)
	}

	if sf.maxDownloads < 0 {
		return nil, opts, fmt.Errorf("%w: -n must not be negative", common.ErrValidation)
	}
	if sf.maxDownloads > 0 {
		n := sf.maxDownloads
		opts.MaxDownloads = &n
	}
	if sf.expires != "" {
		t, err := parseExpiry(sf.expires, now())
		if err != nil {
			return nil, opts, err
		}
		opts.ExpiresAt = &t
	}
	if sf.users != "" {
		opts.AllowedUsernames = strings.Split(sf.users, ",")
	}
	return &sf, opts, nil
}

// Share creates a password-protected share for one of the user's files and
// prints its link.
func (a *App) Share(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: share <file-id> [-n max] [-e expiry] [-u users]", errUsage)
	}
	_, opts, err := parseShareFlags("share", args[1:], false)
	if err != nil {
		return err
	}

	password, err := a.newSharePassword()
	if err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	share, err := a.shares.Create(ctx, args[0], password, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Share %s created\n", share.ID)
	fmt.Fprintf(a.out, "Link:  %s\n", shareLink(share))
	fmt.Fprintf(a.out, "Limit: %s, expires %s\n", limitText(share.MaxDownloads), expiryText(share.ExpiresAt))
	fmt.Fprintln(a.out, "Send the password to the recipient separately.")
	return nil
}

func (a *App) UpdateShare(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: update-share <share-id> [-p] [-n max] [-e expiry] [-u users]", errUsage)
	}
	sf, opts, err := parseShareFlags("update-share", args[1:], true)
	if err != nil {
		return err
	}

	var password string
	if sf.rotate {
		if password, err = a.newSharePassword(); err != nil {
			return err
		}
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	share, err := a.shares.Update(ctx, args[0], password, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Share %s updated: %s, expires %s\n", share.ID, limitText(share.MaxDownloads), expiryText(share.ExpiresAt))
	return nil
}

func (a *App) Shares(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	shares, err := a.shares.List(ctx)
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		fmt.Fprintln(a.out, "No shares")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILE\tSTATUS\tDOWNLOADS\tEXPIRES\tLINK")
	for _, s := range shares {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%s\t%s\t%s\n",
			s.ID, s.UserFileID, s.Status, s.DownloadCount, limitText(s.MaxDownloads), expiryText(s.ExpiresAt), shareLink(&s))
	}
	return w.Flush()
}

// Shared lists files other users shared that this account has already
// downloaded.
func (a *App) Shared(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	files, err := a.shares.SharedWithMe(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "Nothing shared with you")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OWNER\tFILE\tSIZE\tLEFT\tEXPIRES\tLAST ACCESS\tLINK")
	for _, f := range files {
		link := f.Link
		if link == "" {
			link = f.Token
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.OwnerUsername, f.Filename, humanSize(f.SizeBytes), limitText(f.RemainingDownloads),
			expiryText(f.ExpiresAt), formatTime(f.LastAccessedAt), link)
	}
	return w.Flush()
}

func (a *App) DeleteShare(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: delete-share <share-id>", errUsage)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.shares.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Share revoked")
	return nil
}

func (a *App) Stats(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: stats <share-id>", errUsage)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	st, err := a.shares.Stats(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Total attempts:\t%d\n", st.TotalAttempts)
	fmt.Fprintf(w, "Successful:\t%d\n", st.SuccessfulAttempts)
	fmt.Fprintf(w, "Failed:\t%d\n", st.FailedAttempts)
	fmt.Fprintf(w, "Last 24h:\t%d\n", st.RecentAttempts)
	fmt.Fprintf(w, "Unique sources:\t%d\n", st.UniqueIPs)
	return w.Flush()
}

// Logs prints the most recent access attempts, newest first.
func (a *App) Logs(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: logs <share-id> [limit]", errUsage)
	}
	limit := 0
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limit must be a positive number", common.ErrValidation)
		}
		limit = n
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	entries, err := a.shares.Logs(ctx, args[0], limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No access attempts")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSOURCE\tOUTCOME\tREASON\tAGENT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", formatTime(e.OccurredAt), e.SourceIdentifier, e.Outcome, e.Reason, e.UserAgent)
	}
	return w.Flush()
}

// Info shows what a share link points to without redeeming it.
func (a *App) Info(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: info <token|link>", errUsage)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	md, err := a.shares.Metadata(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", md.Filename)
	fmt.Fprintf(w, "Size:\t%s\n", humanSize(md.SizeBytes))
	fmt.Fprintf(w, "Type:\t%s\n", md.MimeType)
	fmt.Fprintf(w, "Status:\t%s\n", md.Status)
	fmt.Fprintf(w, "Downloads:\t%d/%s\n", md.DownloadCount, limitText(md.MaxDownloads))
	fmt.Fprintf(w, "Expires:\t%s\n", expiryText(md.ExpiresAt))
	if md.RequiresLogin {
		fmt.Fprintln(w, "Access:\trestricted to named users, login required")
	}
	return w.Flush()
}

// Access redeems a share with its password and saves the decrypted file.
func (a *App) Access(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: access <token|link> [dir]", errUsage)
	}

	password, err := getPassword(a.reader, "Share password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	res, err := a.shares.Access(ctx, args[0], string(password), a.downloadDir(args, 1))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved %s to %s\n", humanSize(res.Grant.SizeBytes), res.Path)
	if res.Grant.RemainingDownloads != nil {
		fmt.Fprintf(a.out, "Downloads remaining: %d\n", *res.Grant.RemainingDownloads)
	}
	return nil
}

// newSharePassword prompts twice and checks the policy before any round trip.
func (a *App) newSharePassword() (string, error) {
	first, err := getPassword(a.reader, "Share password", a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	if err := a.shares.CheckPassword(string(first)); err != nil {
		return "", err
	}

	second, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	return string(first), nil
}

func shareLink(s *pb.Share) string {
	if s.Link != "" {
		return s.Link
	}
	return s.Token
}
