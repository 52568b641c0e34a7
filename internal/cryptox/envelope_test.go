package cryptox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for _, pw := range []string{"ValidPassword123!", "a", "пароль-Ü9", string(make([]byte, 300))} {
		ck, err := m.GenerateContentKey()
		require.NoError(t, err)

		env, err := m.GenerateEnvelope(ctx, ck, pw)
		require.NoError(t, err)
		assert.Len(t, env.Salt, 32)
		assert.NotContains(t, string(env.WrappedKey), string(ck))

		got, err := m.OpenEnvelope(ctx, *env, pw)
		require.NoError(t, err)
		assert.Equal(t, ck, got)
	}
}

func TestEnvelope_WrongPassword(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ck, _ := m.GenerateContentKey()
	env, err := m.GenerateEnvelope(ctx, ck, "ValidPassword123!")
	require.NoError(t, err)

	for _, pw := range []string{"ValidPassword123", "validPassword123!", "ValidPassword123!!", " "} {
		got, err := m.OpenEnvelope(ctx, *env, pw)
		assert.ErrorIs(t, err, ErrEnvelope, pw)
		assert.Nil(t, got)
	}
}

func TestEnvelope_SaltsAreUnique(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	ck, _ := m.GenerateContentKey()

	a, err := m.GenerateEnvelope(ctx, ck, "ValidPassword123!")
	require.NoError(t, err)
	b, err := m.GenerateEnvelope(ctx, ck, "ValidPassword123!")
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.WrappedKey, b.WrappedKey)
}

func TestEnvelope_TamperDetection(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	ck, _ := m.GenerateContentKey()

	salt, _ := m.GenerateSalt()
	wk, err := m.DeriveKey(ctx, []byte("ValidPassword123!"), salt)
	require.NoError(t, err)

	wrapped, err := m.WrapKey(ck, wk)
	require.NoError(t, err)
	assert.Len(t, wrapped, 12+32+16)

	for bit := 0; bit < len(wrapped)*8; bit++ {
		got, err := m.UnwrapKey(flipBit(wrapped, bit), wk)
		require.ErrorIs(t, err, ErrEnvelope, "bit %d", bit)
		require.Nil(t, got)
	}

	_, err = m.UnwrapKey(wrapped[:12], wk)
	assert.ErrorIs(t, err, ErrEnvelope)
	_, err = m.UnwrapKey(nil, wk)
	assert.ErrorIs(t, err, ErrEnvelope)
}
