package cryptox

import (
	"context"
	"crypto/sha256"
)

// AccountKDFParams are fixed so any client can re-derive the same master
// key from a password and the salt the server hands back.
func AccountKDFParams() KDFParams {
	return DefaultKDFParams()
}

// DeriveMasterKey derives the account master key. The caller wipes it.
func DeriveMasterKey(ctx context.Context, password, salt []byte) ([]byte, error) {
	d, err := NewKeyDeriver(AccountKDFParams(), 1)
	if err != nil {
		return nil, err
	}
	return d.Derive(ctx, password, salt)
}

// MakeVerifier turns an account master key into the value the server stores
// for login checks. The master key itself never leaves the client.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
