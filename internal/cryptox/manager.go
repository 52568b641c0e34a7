package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/vaultshare/internal/common"
)

// Config centralises every algorithm and parameter choice.
type Config struct {
	KDF              KDFParams
	FileCipher       CipherAlgorithm
	Policy           PasswordPolicy
	MaxConcurrentKDF int
}

func DefaultConfig() Config {
	return Config{
		KDF:        DefaultKDFParams(),
		FileCipher: CipherSecretbox,
		Policy:     DefaultPasswordPolicy(),
	}
}

// Manager is the single entry point for file encryption, password key
// derivation, envelope wrapping and password validation.
type Manager struct {
	deriver  *KeyDeriver
	cipher   ContentCipher
	envelope EnvelopeCipher
	policy   PasswordPolicy
}

func NewManager(cfg Config) (*Manager, error) {
	deriver, err := NewKeyDeriver(cfg.KDF, cfg.MaxConcurrentKDF)
	if err != nil {
		return nil, err
	}
	c, err := NewContentCipher(cfg.FileCipher)
	if err != nil {
		return nil, err
	}
	if c.Algorithm() == CipherSecretbox && cfg.KDF.KeyLength != 32 {
		return nil, fmt.Errorf("%w: %s requires 32-byte keys", ErrInvalidKey, CipherSecretbox)
	}
	return &Manager{deriver: deriver, cipher: c, policy: cfg.Policy}, nil
}

// KeyLength is the size in bytes of content keys and derived keys.
func (m *Manager) KeyLength() int { return m.deriver.Params().KeyLength }

// FileCipher names the algorithm EncryptFile uses.
func (m *Manager) FileCipher() CipherAlgorithm { return m.cipher.Algorithm() }

// PasswordPolicy returns the policy ValidatePassword applies.
func (m *Manager) PasswordPolicy() PasswordPolicy { return m.policy }

// EncryptedFile is the output of EncryptFile. Key is the fresh content key
// and must be wiped by the caller once it has been sealed or wrapped.
type EncryptedFile struct {
	Ciphertext []byte
	Nonce      []byte
	Key        []byte
}

// Blob returns nonce || ciphertext, the form written to the blob store.
func (f *EncryptedFile) Blob() []byte {
	out := make([]byte, 0, len(f.Nonce)+len(f.Ciphertext))
	out = append(out, f.Nonce...)
	return append(out, f.Ciphertext...)
}

// GenerateContentKey returns KeyLength random bytes. The caller wipes the
// key when done with it.
func (m *Manager) GenerateContentKey() ([]byte, error) {
	key := make([]byte, m.KeyLength())
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateSalt returns a fresh random salt for DeriveKey.
func (m *Manager) GenerateSalt() ([]byte, error) {
	return m.deriver.NewSalt()
}

// EncryptFile encrypts plaintext under a newly generated content key.
func (m *Manager) EncryptFile(plaintext []byte) (*EncryptedFile, error) {
	key, err := m.GenerateContentKey()
	if err != nil {
		return nil, err
	}
	ct, nonce, err := m.cipher.Encrypt(plaintext, key)
	if err != nil {
		common.WipeByteArray(key)
		return nil, err
	}
	return &EncryptedFile{Ciphertext: ct, Nonce: nonce, Key: key}, nil
}

// DecryptFile reverses EncryptFile. It returns ErrDecryption for a wrong
// key, a wrong nonce or tampered ciphertext, and never partial plaintext.
func (m *Manager) DecryptFile(ciphertext, nonce, key []byte) ([]byte, error) {
	return m.cipher.Decrypt(ciphertext, nonce, key)
}

// DecryptFileWithNoncePrefix decrypts a stored blob laid out as
// nonce || ciphertext.
func (m *Manager) DecryptFileWithNoncePrefix(blob, key []byte) ([]byte, error) {
	n := m.cipher.NonceSize()
	if len(blob) < n {
		return nil, ErrDecryption
	}
	return m.cipher.Decrypt(blob[n:], blob[:n], key)
}

// DeriveKey runs the configured KDF. The result is the same for the same
// password and salt, and the caller wipes it.
func (m *Manager) DeriveKey(ctx context.Context, password, salt []byte) ([]byte, error) {
	return m.deriver.Derive(ctx, password, salt)
}

// Envelope is a content key wrapped under a password-derived key.
type Envelope struct {
	WrappedKey []byte
	Salt       []byte
}

// WrapKey encrypts contentKey under wrappingKey. The output is
// nonce || ciphertext and differs on every call.
func (m *Manager) WrapKey(contentKey, wrappingKey []byte) ([]byte, error) {
	return m.envelope.Wrap(contentKey, wrappingKey)
}

// UnwrapKey reverses WrapKey. Any failure is reported as ErrEnvelope.
func (m *Manager) UnwrapKey(wrapped, wrappingKey []byte) ([]byte, error) {
	return m.envelope.Unwrap(wrapped, wrappingKey)
}

// GenerateEnvelope derives a wrapping key from password under a fresh salt
// and wraps contentKey with it.
func (m *Manager) GenerateEnvelope(ctx context.Context, contentKey []byte, password string) (*Envelope, error) {
	salt, err := m.GenerateSalt()
	if err != nil {
		return nil, err
	}
	wk, err := m.DeriveKey(ctx, []byte(password), salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(wk)

	wrapped, err := m.WrapKey(contentKey, wk)
	if err != nil {
		return nil, err
	}
	return &Envelope{WrappedKey: wrapped, Salt: salt}, nil
}

// OpenEnvelope re-derives the wrapping key and unwraps the content key.
// A wrong password and a damaged envelope both yield ErrEnvelope.
func (m *Manager) OpenEnvelope(ctx context.Context, env Envelope, password string) ([]byte, error) {
	wk, err := m.DeriveKey(ctx, []byte(password), env.Salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(wk)
	return m.UnwrapKey(env.WrappedKey, wk)
}

// BurnDerivation performs one derivation against a random salt and throws
// the result away, so rejected attempts cost the same as a wrong password.
func (m *Manager) BurnDerivation(ctx context.Context, password string) error {
	if password == "" {
		password = "\x00"
	}
	salt, err := m.GenerateSalt()
	if err != nil {
		return err
	}
	wk, err := m.DeriveKey(ctx, []byte(password), salt)
	common.WipeByteArray(wk)
	return err
}

// ValidatePassword checks password against the configured policy and
// returns nil or a *PolicyError.
func (m *Manager) ValidatePassword(password string) error {
	return m.policy.Validate(password)
}

// ContentHash is the hex SHA-256 of plaintext, used for deduplication.
func ContentHash(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}
