package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// Upload encrypts and uploads every path given. It stops at the first
// failure.
func (a *App) Upload(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: upload <path>...", errUsage)
	}

	for _, p := range args {
		cctx, cancel := a.callCtx(ctx)
		res, err := a.files.Upload(cctx, p)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		note := ""
		if res.Deduplicated {
			note = " (deduplicated)"
		}
		fmt.Fprintf(a.out, "Uploaded %s as %s, %s%s\n", res.File.Filename, res.File.ID, humanSize(res.File.SizeBytes), note)
	}
	return nil
}

func (a *App) Files(ctx context.Context, _ []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	files, err := a.files.List(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tTYPE\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Filename, humanSize(f.SizeBytes), f.MimeType, formatTime(f.CreatedAt))
	}
	return w.Flush()
}

// Download fetches, decrypts and verifies one of the user's own files.
func (a *App) Download(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: download <file-id> [dir]", errUsage)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	p, err := a.files.Download(ctx, args[0], a.downloadDir(args, 1))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", p)
	return nil
}

func (a *App) DeleteFile(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: delete-file <file-id>", errUsage)
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()
	if err := a.files.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
