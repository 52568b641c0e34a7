package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/client/services"
	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/timex"
)

// now is a test seam for expiry parsing.
var now = time.Now

// printError reports a command failure in terms the user can act on.
func (a *App) printError(err error) {
	var pe *cryptox.PolicyError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintln(a.out, "Password rejected:")
		for _, m := range pe.Messages() {
			fmt.Fprintln(a.out, "  -", m)
		}
	case errors.Is(err, client.ErrNotLoggedIn):
		// requireLogin already said so
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Session expired or invalid, please login again")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, common.ErrInvalidCredentials):
		fmt.Fprintln(a.out, "Wrong link or password")
	case errors.Is(err, common.ErrRateLimited):
		fmt.Fprintln(a.out, "Too many failed attempts, wait a while and try again")
	case errors.Is(err, common.ErrShareExpired):
		fmt.Fprintln(a.out, "This share has expired")
	case errors.Is(err, common.ErrShareExhausted):
		fmt.Fprintln(a.out, "This share has no downloads left")
	case errors.Is(err, services.ErrIntegrity):
		fmt.Fprintln(a.out, "Downloaded file failed the integrity check and was not saved")
	case errors.Is(err, common.ErrorNotFound):
		fmt.Fprintln(a.out, "Not found")
	case errors.Is(err, common.ErrorForbidden):
		fmt.Fprintln(a.out, "Access denied")
	case errors.Is(err, errUsage):
		fmt.Fprintln(a.out, "Usage:", strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}

// parseExpiry accepts a relative duration ("36h", "7d") or an absolute
// RFC 3339 time. The result must lie in the future.
func parseExpiry(s string, from time.Time) (time.Time, error) {
	var t time.Time
	if d, err := timex.ParseDuration(s); err == nil {
		t = from.Add(d)
	} else if abs, err := time.Parse(time.RFC3339, s); err == nil {
		t = abs
	} else {
		return time.Time{}, fmt.Errorf("%w: cannot parse expiry %q", common.ErrValidation, s)
	}
	if !t.After(from) {
		return time.Time{}, fmt.Errorf("%w: expiry must be in the future", common.ErrValidation)
	}
	return t.UTC(), nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func limitText(limit *int) string {
	if limit == nil {
		return "unlimited"
	}
	return fmt.Sprint(*limit)
}

func expiryText(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return formatTime(*t)
}
