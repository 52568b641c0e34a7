// Package cryptox holds every cryptographic primitive VaultShare uses:
// password key derivation, file content encryption, envelope wrapping of
// content keys, password policy checks and the per-user keyring.
//
// Callers above this package go through Manager and Keyring and never touch
// cipher primitives directly.
package cryptox

import "errors"

var (
	// ErrKeyDerivation is returned only for misconfigured parameters or
	// missing inputs. A wrong password never fails derivation.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrDecryption means the authentication tag did not verify. No
	// plaintext is ever returned alongside it.
	ErrDecryption = errors.New("decryption failed")

	// ErrEnvelope means a wrapped key could not be unwrapped, either
	// because the wrapping key is wrong or the envelope was modified.
	ErrEnvelope = errors.New("envelope unwrap failed")

	ErrInvalidKey = errors.New("invalid key length")
)
