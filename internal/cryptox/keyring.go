package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"golang.org/x/crypto/hkdf"
)

const keyringInfo = "vaultshare/user-master-key/v1"

// Keyring seals content keys under a per-user master key. The master key is
// derived with HKDF-SHA256 from the server key-encryption key and the user
// ID, so it is never stored.
type Keyring struct {
	kek []byte
}

func NewKeyring(kek []byte) (*Keyring, error) {
	if len(kek) != 32 {
		return nil, fmt.Errorf("%w: key-encryption key must be 32 bytes, got %d", ErrInvalidKey, len(kek))
	}
	k := make([]byte, len(kek))
	copy(k, kek)
	return &Keyring{kek: k}, nil
}

func (k *Keyring) masterKey(userID string) ([]byte, error) {
	r := hkdf.New(sha256.New, k.kek, []byte(userID), []byte(keyringInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal returns nonce || AES-GCM(contentKey) bound to userID.
func (k *Keyring) Seal(userID string, contentKey []byte) ([]byte, error) {
	mk, err := k.masterKey(userID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(mk)

	ct, nonce, err := sealGCM(mk, contentKey, []byte(userID))
	if err != nil {
		return nil, err
	}
	return append(nonce, ct...), nil
}

// Open reverses Seal. A key sealed for one user never opens for another.
func (k *Keyring) Open(userID string, sealed []byte) ([]byte, error) {
	if len(sealed) <= gcmNonceSize {
		return nil, ErrDecryption
	}
	mk, err := k.masterKey(userID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(mk)

	return openGCM(mk, sealed[:gcmNonceSize], sealed[gcmNonceSize:], []byte(userID))
}
