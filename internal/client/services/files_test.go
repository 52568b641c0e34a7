package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/filex"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, alg cryptox.CipherAlgorithm) *cryptox.Manager {
	t.Helper()
	cfg := cryptox.DefaultConfig()
	cfg.FileCipher = alg
	m, err := cryptox.NewManager(cfg)
	require.NoError(t, err)
	return m
}

// staticFetch serves blob for url and records the limit it was asked for.
func staticFetch(url string, blob []byte, gotLimit *int64) FetchFunc {
	return func(_ context.Context, u string, maxBytes int64) ([]byte, error) {
		if gotLimit != nil {
			*gotLimit = maxBytes
		}
		if u != url {
			return nil, errors.New("unexpected url " + u)
		}
		return blob, nil
	}
}

func TestFileService_Upload(t *testing.T) {
	for _, alg := range []cryptox.CipherAlgorithm{cryptox.CipherSecretbox, cryptox.CipherAESGCM} {
		t.Run(string(alg), func(t *testing.T) {
			plain := []byte("quarterly numbers")
			path := filepath.Join(t.TempDir(), "report.txt")
			require.NoError(t, os.WriteFile(path, plain, 0o600))

			fc := &fakeClient{params: &client.ServerParams{FileCipher: string(alg), KeyLength: 32}}
			s := NewFileService(fc, 1<<20, nil)

			res, err := s.Upload(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "uf-1", res.File.ID)

			req := fc.lastUpload
			assert.Equal(t, "report.txt", req.Filename)
			assert.Equal(t, cryptox.ContentHash(plain), req.ContentHash)
			assert.Equal(t, int64(len(req.FileData)), req.SizeBytes)
			assert.Contains(t, req.MimeType, "text/plain")
			assert.NotContains(t, string(req.FileData), "quarterly")

			got, err := newManager(t, alg).DecryptFileWithNoncePrefix(req.FileData, req.EncryptedKey)
			require.NoError(t, err)
			assert.Equal(t, plain, got)
		})
	}
}

func TestFileService_UploadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

	fc := &fakeClient{}
	_, err := NewFileService(fc, 16, nil).Upload(context.Background(), path)
	assert.ErrorIs(t, err, filex.ErrTooLarge)
	assert.NotContains(t, fc.calls, "UploadFile")

	fc = &fakeClient{params: &client.ServerParams{FileCipher: "rot13", KeyLength: 32}}
	_, err = NewFileService(fc, 0, nil).Upload(context.Background(), path)
	assert.ErrorContains(t, err, "unknown cipher")

	fc = &fakeClient{err: client.ErrUnavailable}
	_, err = NewFileService(fc, 0, nil).Upload(context.Background(), path)
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

func TestFileService_Download(t *testing.T) {
	m := newManager(t, cryptox.CipherSecretbox)
	plain := []byte("%PDF-1.7 body")
	enc, err := m.EncryptFile(plain)
	require.NoError(t, err)

	fc := &fakeClient{download: &pb.DownloadFileResponse{
		File:        pb.UserFile{ID: "uf-1", Filename: "../report.pdf", ContentHash: cryptox.ContentHash(plain)},
		ContentKey:  enc.Key,
		DownloadURL: "https://blobs/x",
		FileCipher:  string(cryptox.CipherSecretbox),
	}}
	var limit int64
	dir := t.TempDir()
	s := NewFileService(fc, 1024, staticFetch("https://blobs/x", enc.Blob(), &limit))

	p, err := s.Download(context.Background(), "uf-1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), p)
	assert.Equal(t, int64(1024+1024), limit)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	fc.download.File.ContentHash = cryptox.ContentHash([]byte("something else"))
	_, err = s.Download(context.Background(), "uf-1", dir)
	assert.ErrorIs(t, err, ErrIntegrity)

	fc.download.File.ContentHash = ""
	fc.download.ContentKey = make([]byte, 32)
	_, err = s.Download(context.Background(), "uf-1", dir)
	assert.ErrorIs(t, err, cryptox.ErrDecryption)
}

func TestFileService_ListDelete(t *testing.T) {
	fc := &fakeClient{}
	s := NewFileService(fc, 0, nil)

	files, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 1)
	require.NoError(t, s.Delete(context.Background(), "uf-1"))
	assert.Equal(t, []string{"ListFiles", "DeleteFile"}, fc.calls)
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", detectMimeType("a.pdf", nil))
	assert.Equal(t, "application/octet-stream", detectMimeType("blob", []byte{0x00, 0x01, 0x02}))
}
