package cryptox

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

type CipherAlgorithm string

const (
	CipherSecretbox CipherAlgorithm = "nacl-secretbox"
	CipherAESGCM    CipherAlgorithm = "aes-gcm"
)

// ContentCipher is authenticated encryption of file bytes. Decrypt either
// returns the full plaintext or ErrDecryption, never partial output.
type ContentCipher interface {
	Algorithm() CipherAlgorithm
	NonceSize() int
	Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error)
	Decrypt(ciphertext, nonce, key []byte) ([]byte, error)
}

func NewContentCipher(alg CipherAlgorithm) (ContentCipher, error) {
	switch alg {
	case CipherSecretbox:
		return secretboxCipher{}, nil
	case CipherAESGCM:
		return gcmCipher{}, nil
	default:
		return nil, fmt.Errorf("unknown cipher %q", alg)
	}
}

type secretboxCipher struct{}

func (secretboxCipher) Algorithm() CipherAlgorithm { return CipherSecretbox }
func (secretboxCipher) NonceSize() int             { return 24 }

func (secretboxCipher) Encrypt(plaintext, key []byte) ([]byte, []byte, error) {
	k, err := secretboxKey(key)
	if err != nil {
		return nil, nil, err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, nil, err
	}
	return secretbox.Seal(nil, plaintext, &nonce, k), nonce[:], nil
}

func (secretboxCipher) Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	k, err := secretboxKey(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != 24 {
		return nil, ErrDecryption
	}
	var n [24]byte
	copy(n[:], nonce)
	plaintext, ok := secretbox.Open(nil, ciphertext, &n, k)
	if !ok {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

func secretboxKey(key []byte) (*[32]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: secretbox needs 32 bytes, got %d", ErrInvalidKey, len(key))
	}
	var k [32]byte
	copy(k[:], key)
	return &k, nil
}

type gcmCipher struct{}

func (gcmCipher) Algorithm() CipherAlgorithm { return CipherAESGCM }
func (gcmCipher) NonceSize() int             { return gcmNonceSize }

func (gcmCipher) Encrypt(plaintext, key []byte) ([]byte, []byte, error) {
	return sealGCM(key, plaintext, nil)
}

func (gcmCipher) Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	return openGCM(key, nonce, ciphertext, nil)
}
