package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

type KDFAlgorithm string

const (
	KDFPBKDF2SHA256 KDFAlgorithm = "pbkdf2-sha256"
	KDFArgon2ID     KDFAlgorithm = "argon2id"
)

// KDFParams configures password key derivation. Iterations applies to
// PBKDF2; the Argon2 fields apply to argon2id.
type KDFParams struct {
	Algorithm  KDFAlgorithm
	Iterations int
	KeyLength  int
	SaltLength int

	Argon2Time    uint32
	Argon2Memory  uint32
	Argon2Threads uint8
}

func DefaultKDFParams() KDFParams {
	return KDFParams{
		Algorithm:     KDFPBKDF2SHA256,
		Iterations:    100000,
		KeyLength:     32,
		SaltLength:    32,
		Argon2Time:    1,
		Argon2Memory:  64 * 1024,
		Argon2Threads: 4,
	}
}

func (p KDFParams) validate() error {
	switch p.KeyLength {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: key length %d", ErrKeyDerivation, p.KeyLength)
	}
	if p.SaltLength <= 0 {
		return fmt.Errorf("%w: salt length %d", ErrKeyDerivation, p.SaltLength)
	}
	switch p.Algorithm {
	case KDFPBKDF2SHA256:
		if p.Iterations <= 0 {
			return fmt.Errorf("%w: iterations %d", ErrKeyDerivation, p.Iterations)
		}
	case KDFArgon2ID:
		if p.Argon2Time == 0 || p.Argon2Memory == 0 || p.Argon2Threads == 0 {
			return fmt.Errorf("%w: argon2 parameters must be positive", ErrKeyDerivation)
		}
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrKeyDerivation, p.Algorithm)
	}
	return nil
}

// KeyDeriver turns a password and salt into a symmetric key. The number of
// derivations running at once is capped so a burst of share redemptions
// cannot starve the rest of the process of CPU.
type KeyDeriver struct {
	params KDFParams
	sem    *semaphore.Weighted
}

// NewKeyDeriver validates params. maxConcurrent <= 0 means GOMAXPROCS.
func NewKeyDeriver(params KDFParams, maxConcurrent int) (*KeyDeriver, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &KeyDeriver{params: params, sem: semaphore.NewWeighted(int64(maxConcurrent))}, nil
}

// Params returns the parameters the deriver was built with.
func (d *KeyDeriver) Params() KDFParams { return d.params }

// NewSalt returns SaltLength fresh random bytes.
func (d *KeyDeriver) NewSalt() ([]byte, error) {
	salt := make([]byte, d.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return salt, nil
}

// Derive is deterministic for a given password, salt and parameter set. It
// waits for a free derivation slot and returns ctx.Err() if the caller gives
// up first.
func (d *KeyDeriver) Derive(ctx context.Context, password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("%w: empty password", ErrKeyDerivation)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrKeyDerivation)
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)

	switch d.params.Algorithm {
	case KDFArgon2ID:
		return argon2.IDKey(password, salt, d.params.Argon2Time, d.params.Argon2Memory,
			d.params.Argon2Threads, uint32(d.params.KeyLength)), nil
	default:
		return pbkdf2.Key(password, salt, d.params.Iterations, d.params.KeyLength, sha256.New), nil
	}
}
