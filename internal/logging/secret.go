package logging

import (
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// Secret marks a value that must never reach a log sink. It always renders
// as [REDACTED], whether logged through slog or formatted with %s/%v.
type Secret string

func (Secret) LogValue() slog.Value { return slog.StringValue(redacted) }

func (Secret) String() string { return redacted }

func (s Secret) GoString() string { return redacted }

// sensitiveKeys are attribute names whose values are always redacted, even
// when the caller forgot to wrap them in Secret.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"new_password":  true,
	"token":         true,
	"access_token":  true,
	"content_key":   true,
	"encrypted_key": true,
	"verifier":      true,
	"kek":           true,
	"secret":        true,
}

func redactKeys(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redacted)
	}
	return a
}
