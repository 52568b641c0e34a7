package cryptox

// EnvelopeCipher wraps a content key under a password-derived key. The
// wrapped form is nonce(12) || AES-GCM(contentKey); the salt used to derive
// the wrapping key is stored separately by the caller.
type EnvelopeCipher struct{}

func (EnvelopeCipher) Wrap(contentKey, wrappingKey []byte) ([]byte, error) {
	ct, nonce, err := sealGCM(wrappingKey, contentKey, nil)
	if err != nil {
		return nil, err
	}
	return append(nonce, ct...), nil
}

// Unwrap returns ErrEnvelope for a wrong key, a truncated envelope or any
// modified byte.
func (EnvelopeCipher) Unwrap(wrapped, wrappingKey []byte) ([]byte, error) {
	if len(wrapped) <= gcmNonceSize {
		return nil, ErrEnvelope
	}
	key, err := openGCM(wrappingKey, wrapped[:gcmNonceSize], wrapped[gcmNonceSize:], nil)
	if err != nil {
		return nil, ErrEnvelope
	}
	return key, nil
}
