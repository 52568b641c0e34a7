package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/dbx"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/blobstore"
	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/repositories/repomanager"
)

const maxFilenameLength = 255

var contentHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// UploadRequest is one encrypted file handed over by its owner.
//
// FileData is the stored blob (nonce || ciphertext) and SizeBytes its length.
// ContentHash is the hex SHA-256 of the plaintext and drives deduplication.
// EncryptedKey is the content key FileData was encrypted with; the server
// seals it under the owner's master key before storing it.
type UploadRequest struct {
	Filename     string
	ContentHash  string
	SizeBytes    int64
	MimeType     string
	EncryptedKey []byte
	FileData     []byte
	FolderID     *string
}

// Validate reports every problem with the request at once.
func (r *UploadRequest) Validate(keyLength int) error {
	var problems []string

	name := strings.TrimSpace(r.Filename)
	switch {
	case name == "":
		problems = append(problems, "filename is required")
	case len(name) > maxFilenameLength:
		problems = append(problems, fmt.Sprintf("filename must be at most %d characters", maxFilenameLength))
	case strings.ContainsAny(name, "/\\\x00"):
		problems = append(problems, "filename must not contain path separators")
	}
	if !contentHashPattern.MatchString(r.ContentHash) {
		problems = append(problems, "content hash must be 64 lowercase hex characters")
	}
	if r.SizeBytes <= 0 {
		problems = append(problems, "size must be positive")
	}
	if strings.TrimSpace(r.MimeType) == "" {
		problems = append(problems, "mime type is required")
	}
	if len(r.EncryptedKey) != keyLength {
		problems = append(problems, fmt.Sprintf("encryption key must be %d bytes", keyLength))
	}
	if len(r.FileData) == 0 {
		problems = append(problems, "file data is required")
	} else if r.SizeBytes > 0 && int64(len(r.FileData)) != r.SizeBytes {
		problems = append(problems, "size does not match file data")
	}

	return common.NewValidationError(problems)
}

// UploadResult reports the stored user file and whether its content was
// already known.
type UploadResult struct {
	UserFile     *models.UserFile
	Deduplicated bool
}

// DownloadInfo is what an owner needs to fetch and decrypt one of their
// files.
type DownloadInfo struct {
	UserFile    *models.UserFile
	ContentKey  []byte
	DownloadURL string
}

// contentOpener decrypts an uploaded nonce || ciphertext blob.
// *cryptox.Manager satisfies it.
type contentOpener interface {
	DecryptFileWithNoncePrefix(blob, key []byte) ([]byte, error)
}

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	keyring     *cryptox.Keyring
	opener      contentOpener
	keyLength   int
	presignTTL  time.Duration
	log         logging.Logger
	now         func() time.Time
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, keyring *cryptox.Keyring,
	opener contentOpener, keyLength int, presignTTL time.Duration, log logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		keyring:     keyring,
		opener:      opener,
		keyLength:   keyLength,
		presignTTL:  presignTTL,
		log:         log.With("module", "files"),
		now:         time.Now,
	}
}

// Upload stores a new user file. Content is deduplicated by hash: the blob
// is written only for unseen hashes, and a duplicate upload is given the
// content key of the copy already stored. FileData must decrypt under
// EncryptedKey to a plaintext matching ContentHash, so knowing a hash is
// never enough to obtain another owner's key.
//
// Re-uploading a file the caller already holds under the same name returns
// that copy without charging quota again; any other upload is charged
// against the uploader's storage quota.
func (s *FileService) Upload(ctx context.Context, userID string, req *UploadRequest) (*UploadResult, error) {
	if err := req.Validate(s.keyLength); err != nil {
		return nil, err
	}
	if err := s.verifyContent(req); err != nil {
		s.log.Warn(ctx, "upload rejected", "user_id", userID, "reason", err.Error())
		return nil, err
	}
	filename := strings.TrimSpace(req.Filename)

	var (
		result     *UploadResult
		writtenKey string
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := s.ownedCopy(ctx, tx, userID, req.ContentHash, filename)
		if err != nil {
			return err
		}
		if existing != nil {
			result = &UploadResult{UserFile: existing, Deduplicated: true}
			return nil
		}

		if err := s.repomanager.Users(tx).ReserveStorage(ctx, userID, req.SizeBytes); err != nil {
			return err
		}

		file, created, err := s.repomanager.Files(tx).CreateOrGet(ctx, &models.File{
			ContentHash: req.ContentHash,
			SizeBytes:   req.SizeBytes,
			StoragePath: blobstore.NewStorageKey(s.now()),
		})
		if err != nil {
			return err
		}

		contentKey := req.EncryptedKey
		if created {
			if err := s.blobs.Put(ctx, file.StoragePath, req.FileData); err != nil {
				return err
			}
			writtenKey = file.StoragePath
		} else {
			contentKey, err = s.existingContentKey(ctx, tx, file.ID)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(contentKey)
		}

		sealed, err := s.keyring.Seal(userID, contentKey)
		if err != nil {
			return err
		}

		uf, err := s.repomanager.UserFiles(tx).Create(ctx, &models.UserFile{
			UserID:        userID,
			FileID:        file.ID,
			Filename:      filename,
			MimeType:      req.MimeType,
			EncryptionKey: sealed,
			FolderID:      req.FolderID,
		})
		if err != nil {
			return err
		}
		uf.File = file
		result = &UploadResult{UserFile: uf, Deduplicated: !created}
		return nil
	})
	if err != nil {
		if writtenKey != "" {
			if delErr := s.blobs.Delete(context.WithoutCancel(ctx), writtenKey); delErr != nil {
				s.log.Warn(ctx, "orphan blob left behind", "storage_path", writtenKey, "error", delErr)
			}
		}
		if errors.Is(err, common.ErrQuotaExceeded) {
			return nil, err
		}
		s.log.Error(ctx, "upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("upload: %w", err)
	}

	s.log.Info(ctx, "file uploaded", "user_id", userID, "user_file_id", result.UserFile.ID,
		"deduplicated", result.Deduplicated, "size_bytes", req.SizeBytes)
	return result, nil
}

func (s *FileService) verifyContent(req *UploadRequest) error {
	plaintext, err := s.opener.DecryptFileWithNoncePrefix(req.FileData, req.EncryptedKey)
	if err != nil {
		return common.NewValidationError([]string{"file data does not decrypt with the supplied key"})
	}
	defer common.WipeByteArray(plaintext)

	if cryptox.ContentHash(plaintext) != req.ContentHash {
		return common.NewValidationError([]string{"content hash does not match file data"})
	}
	return nil
}

// ownedCopy returns the caller's existing copy of the content under the same
// filename, or nil.
func (s *FileService) ownedCopy(ctx context.Context, tx dbx.DBTX, userID, hash, filename string) (*models.UserFile, error) {
	file, err := s.repomanager.Files(tx).GetByContentHash(ctx, hash)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	uf, err := s.repomanager.UserFiles(tx).FindOwned(ctx, userID, file.ID, filename)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	uf.File = file
	return uf, nil
}

func (s *FileService) existingContentKey(ctx context.Context, tx dbx.DBTX, fileID string) ([]byte, error) {
	first, err := s.repomanager.UserFiles(tx).FindByFileID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("find existing owner: %w", err)
	}
	return s.keyring.Open(first.UserID, first.EncryptionKey)
}

// Get returns a user file owned by userID.
func (s *FileService) Get(ctx context.Context, userID, userFileID string) (*models.UserFile, error) {
	uf, err := s.repomanager.UserFiles(s.db).GetByID(ctx, userFileID)
	if err != nil {
		return nil, err
	}
	if uf.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return uf, nil
}

func (s *FileService) List(ctx context.Context, userID string) ([]*models.UserFile, error) {
	return s.repomanager.UserFiles(s.db).ListByUser(ctx, userID)
}

// Download opens the owner's content key and presigns the blob.
func (s *FileService) Download(ctx context.Context, userID, userFileID string) (*DownloadInfo, error) {
	uf, err := s.Get(ctx, userID, userFileID)
	if err != nil {
		return nil, err
	}
	key, err := s.keyring.Open(userID, uf.EncryptionKey)
	if err != nil {
		s.log.Error(ctx, "cannot open content key", "user_file_id", uf.ID, "error", err)
		return nil, common.ErrorInternal
	}
	url, err := s.blobs.PresignGet(ctx, uf.File.StoragePath, s.presignTTL)
	if err != nil {
		common.WipeByteArray(key)
		return nil, err
	}
	return &DownloadInfo{UserFile: uf, ContentKey: key, DownloadURL: url}, nil
}

// Delete removes a user file and refunds its size. The shared blob stays
// for other owners of the same content.
func (s *FileService) Delete(ctx context.Context, userID, userFileID string) error {
	uf, err := s.Get(ctx, userID, userFileID)
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.UserFiles(tx).Delete(ctx, uf.ID, userID); err != nil {
			return err
		}
		return s.repomanager.Users(tx).ReleaseStorage(ctx, userID, uf.File.SizeBytes)
	})
}
