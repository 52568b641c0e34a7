package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/vaultshare/internal/client/client"
	"github.com/dmitrijs2005/vaultshare/internal/client/repositories/metadata"
	pb "github.com/dmitrijs2005/vaultshare/internal/proto"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client for unit tests. Byte slices handed in
// are copied, since services wipe keys once a call returns.
type fakeClient struct {
	mu sync.Mutex

	token  string
	params *client.ServerParams
	err    error

	salt     []byte
	loginTok string

	lastRegisterUser     string
	lastRegisterSalt     []byte
	lastRegisterVerifier []byte
	lastLoginVerifier    []byte
	lastUpload           *pb.UploadFileRequest
	lastCreate           *pb.CreateShareRequest
	lastUpdate           *pb.UpdateShareRequest
	lastMetadataToken    string
	lastAccessToken      string
	lastAccessPassword   string
	lastLogsLimit        int
	calls                []string

	download *pb.DownloadFileResponse
	grant    *pb.AccessShareResponse
}

func (f *fakeClient) call(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) SetAccessToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) Ping(context.Context) (*client.ServerParams, error) {
	if err := f.call("Ping"); err != nil {
		return nil, err
	}
	if f.params != nil {
		return f.params, nil
	}
	return &client.ServerParams{FileCipher: "nacl-secretbox", KeyLength: 32}, nil
}

func (f *fakeClient) Register(_ context.Context, username string, salt, verifier []byte) error {
	f.lastRegisterUser, f.lastRegisterSalt, f.lastRegisterVerifier = username, clone(salt), clone(verifier)
	return f.call("Register")
}

func (f *fakeClient) GetSalt(context.Context, string) ([]byte, error) {
	if err := f.call("GetSalt"); err != nil {
		return nil, err
	}
	return f.salt, nil
}

func (f *fakeClient) Login(_ context.Context, _ string, verifier []byte) (string, error) {
	f.lastLoginVerifier = clone(verifier)
	if err := f.call("Login"); err != nil {
		return "", err
	}
	return f.loginTok, nil
}

func (f *fakeClient) UploadFile(_ context.Context, req *pb.UploadFileRequest) (*pb.UploadFileResponse, error) {
	cp := *req
	cp.EncryptedKey, cp.FileData = clone(req.EncryptedKey), clone(req.FileData)
	f.lastUpload = &cp
	if err := f.call("UploadFile"); err != nil {
		return nil, err
	}
	return &pb.UploadFileResponse{File: pb.UserFile{ID: "uf-1", Filename: req.Filename}}, nil
}

func (f *fakeClient) ListFiles(context.Context) ([]pb.UserFile, error) {
	if err := f.call("ListFiles"); err != nil {
		return nil, err
	}
	return []pb.UserFile{{ID: "uf-1"}}, nil
}

func (f *fakeClient) DownloadFile(context.Context, string) (*pb.DownloadFileResponse, error) {
	if err := f.call("DownloadFile"); err != nil {
		return nil, err
	}
	cp := *f.download
	cp.ContentKey = clone(f.download.ContentKey)
	return &cp, nil
}

func (f *fakeClient) DeleteFile(context.Context, string) error { return f.call("DeleteFile") }

func (f *fakeClient) CreateShare(_ context.Context, req *pb.CreateShareRequest) (*pb.Share, error) {
	f.lastCreate = req
	if err := f.call("CreateShare"); err != nil {
		return nil, err
	}
	return &pb.Share{ID: "sh-1", UserFileID: req.UserFileID, MaxDownloads: req.MaxDownloads}, nil
}

func (f *fakeClient) UpdateShare(_ context.Context, req *pb.UpdateShareRequest) (*pb.Share, error) {
	f.lastUpdate = req
	if err := f.call("UpdateShare"); err != nil {
		return nil, err
	}
	return &pb.Share{ID: req.ShareID}, nil
}

func (f *fakeClient) ListShares(context.Context) ([]pb.Share, error) {
	if err := f.call("ListShares"); err != nil {
		return nil, err
	}
	return []pb.Share{{ID: "sh-1"}}, nil
}

func (f *fakeClient) ListSharedWithMe(context.Context) ([]pb.SharedFile, error) {
	if err := f.call("ListSharedWithMe"); err != nil {
		return nil, err
	}
	return []pb.SharedFile{{ShareID: "sh-2", OwnerUsername: "bob", Filename: "notes.txt"}}, nil
}

func (f *fakeClient) DeleteShare(context.Context, string) error { return f.call("DeleteShare") }

func (f *fakeClient) GetShareStats(context.Context, string) (*pb.AccessStats, error) {
	if err := f.call("GetShareStats"); err != nil {
		return nil, err
	}
	return &pb.AccessStats{TotalAttempts: 3, SuccessfulAttempts: 1, FailedAttempts: 2}, nil
}

func (f *fakeClient) GetShareAccessLogs(_ context.Context, _ string, limit int) ([]pb.AccessLogEntry, error) {
	f.lastLogsLimit = limit
	if err := f.call("GetShareAccessLogs"); err != nil {
		return nil, err
	}
	return []pb.AccessLogEntry{{Outcome: "success"}}, nil
}

func (f *fakeClient) GetShareMetadata(_ context.Context, token string) (*pb.GetShareMetadataResponse, error) {
	f.lastMetadataToken = token
	if err := f.call("GetShareMetadata"); err != nil {
		return nil, err
	}
	return &pb.GetShareMetadataResponse{Filename: "report.pdf"}, nil
}

func (f *fakeClient) AccessShare(_ context.Context, token, password string) (*pb.AccessShareResponse, error) {
	f.lastAccessToken, f.lastAccessPassword = token, password
	if err := f.call("AccessShare"); err != nil {
		return nil, err
	}
	cp := *f.grant
	cp.ContentKey = clone(f.grant.ContentKey)
	return &cp, nil
}

func newMetaRepo(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}
