package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultshare/internal/common"
)

// Share tokens are 32 random bytes in unpadded base64url: exactly 43
// characters from [A-Za-z0-9_-].
const (
	shareTokenBytes  = 32
	ShareTokenLength = 43
)

func NewShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateTokenFormat reports whether token could have been produced by
// NewShareToken.
func ValidateTokenFormat(token string) bool {
	if len(token) != ShareTokenLength {
		return false
	}
	b, err := base64.RawURLEncoding.Strict().DecodeString(token)
	return err == nil && len(b) == shareTokenBytes
}

// ShareLink builds the public URL recipients open.
func ShareLink(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/share/" + token
}

// TokenFromShareLink extracts the token from a link built by ShareLink.
func TokenFromShareLink(baseURL, link string) (string, error) {
	prefix := strings.TrimSuffix(baseURL, "/") + "/share/"
	token, ok := strings.CutPrefix(strings.TrimSpace(link), prefix)
	if !ok || !ValidateTokenFormat(token) {
		return "", common.NewValidationError([]string{"not a share link"})
	}
	return token, nil
}
