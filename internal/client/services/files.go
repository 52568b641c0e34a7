package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/filex"
	"github.com/dmitrijs2005/vaultshare/internal/netx"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
)

// ErrIntegrity means a downloaded file decrypted but does not match the
// content hash recorded at upload.
var ErrIntegrity = errors.New("downloaded content does not match its hash")

// FetchFunc downloads a blob from a presigned URL.
type FetchFunc func(ctx context.Context, url string, maxBytes int64) ([]byte, error)

type FileService struct {
	client   client.Client
	fetch    FetchFunc
	maxBytes int64

	mu       sync.Mutex
	managers map[string]*cryptox.Manager
}

// NewFileService caps uploads and downloads at maxBytes; fetch defaults to
// netx.DownloadFromPresignedURL.
func NewFileService(c client.Client, maxBytes int64, fetch FetchFunc) *FileService {
	if fetch == nil {
		fetch = netx.DownloadFromPresignedURL
	}
	return &FileService{client: c, fetch: fetch, maxBytes: maxBytes, managers: map[string]*cryptox.Manager{}}
}

// manager returns a crypto manager for the given file cipher and key length.
func (s *FileService) manager(alg string, keyLength int) (*cryptox.Manager, error) {
	id := fmt.Sprintf("%s/%d", alg, keyLength)

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.managers[id]; ok {
		return m, nil
	}

	cfg := cryptox.DefaultConfig()
	cfg.FileCipher = cryptox.CipherAlgorithm(alg)
	cfg.KDF.KeyLength = keyLength
	m, err := cryptox.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	s.managers[id] = m
	return m, nil
}

// Upload encrypts the file at path under a fresh content key and stores it.
func (s *FileService) Upload(ctx context.Context, path string) (*pb.UploadFileResponse, error) {
	params, err := s.client.Ping(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.manager(params.FileCipher, params.KeyLength)
	if err != nil {
		return nil, err
	}

	data, err := filex.ReadFileLimited(path, s.maxBytes)
	if err != nil {
		return nil, err
	}

	enc, err := m.EncryptFile(data)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(enc.Key)

	blob := enc.Blob()
	return s.client.UploadFile(ctx, &pb.UploadFileRequest{
		Filename:     filepath.Base(path),
		ContentHash:  cryptox.ContentHash(data),
		SizeBytes:    int64(len(blob)),
		MimeType:     detectMimeType(path, data),
		EncryptedKey: enc.Key,
		FileData:     blob,
	})
}

func (s *FileService) List(ctx context.Context) ([]pb.UserFile, error) {
	return s.client.ListFiles(ctx)
}

func (s *FileService) Delete(ctx context.Context, userFileID string) error {
	return s.client.DeleteFile(ctx, userFileID)
}

// Download fetches, decrypts and verifies one of the caller's files and
// writes it into dir. It returns the path written.
func (s *FileService) Download(ctx context.Context, userFileID, dir string) (string, error) {
	resp, err := s.client.DownloadFile(ctx, userFileID)
	if err != nil {
		return "", err
	}

	plain, err := s.fetchAndDecrypt(ctx, resp.DownloadURL, resp.FileCipher, resp.ContentKey)
	if err != nil {
		return "", err
	}
	if resp.File.ContentHash != "" && cryptox.ContentHash(plain) != resp.File.ContentHash {
		return "", ErrIntegrity
	}
	return filex.WriteUnique(dir, resp.File.Filename, plain)
}

// fetchAndDecrypt wipes key before returning.
func (s *FileService) fetchAndDecrypt(ctx context.Context, url, alg string, key []byte) ([]byte, error) {
	defer common.WipeByteArray(key)

	m, err := s.manager(alg, len(key))
	if err != nil {
		return nil, err
	}

	var limit int64
	if s.maxBytes > 0 {
		limit = s.maxBytes + 1024
	}
	blob, err := s.fetch(ctx, url, limit)
	if err != nil {
		return nil, err
	}
	return m.DecryptFileWithNoncePrefix(blob, key)
}

func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
