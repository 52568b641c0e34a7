package grpc

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/vaultshare/internal/server/models"
	"github.com/dmitrijs2005/vaultshare/internal/server/services"
)

type fakeUsers struct {
	regResp   *models.User
	regErr    error
	saltResp  []byte
	saltErr   error
	loginResp string
	loginErr  error
}

func (f *fakeUsers) Register(context.Context, string, []byte, []byte) (*models.User, error) {
	return f.regResp, f.regErr
}
func (f *fakeUsers) GetSalt(context.Context, string) ([]byte, error) { return f.saltResp, f.saltErr }
func (f *fakeUsers) Login(context.Context, string, []byte) (string, error) {
	return f.loginResp, f.loginErr
}

type fakeFiles struct {
	mu         sync.Mutex
	lastUserID string
	lastUpload *services.UploadRequest

	uploadResp *services.UploadResult
	listResp   []*models.UserFile
	download   *services.DownloadInfo
	err        error
}

func (f *fakeFiles) Upload(_ context.Context, userID string, req *services.UploadRequest) (*services.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID, f.lastUpload = userID, req
	return f.uploadResp, f.err
}
func (f *fakeFiles) List(_ context.Context, userID string) ([]*models.UserFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID = userID
	return f.listResp, f.err
}
func (f *fakeFiles) Download(_ context.Context, userID, _ string) (*services.DownloadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID = userID
	return f.download, f.err
}
func (f *fakeFiles) Delete(_ context.Context, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID = userID
	return f.err
}

type fakeShares struct {
	mu         sync.Mutex
	lastOwner  string
	lastCreate *services.CreateShareRequest
	lastAccess *services.AccessRequest

	view     *services.ShareView
	stats    *models.AccessStats
	logs     []*models.ShareAccessLog
	metadata *services.ShareMetadata
	grant    *services.AccessGrant
	shared   []*services.SharedFileView
	err      error
}

func (f *fakeShares) record(owner string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOwner = owner
}

func (f *fakeShares) CreateShare(_ context.Context, ownerID string, req *services.CreateShareRequest) (*services.ShareView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOwner, f.lastCreate = ownerID, req
	return f.view, f.err
}
func (f *fakeShares) UpdateShare(_ context.Context, ownerID, _ string, _ *services.UpdateShareRequest) (*services.ShareView, error) {
	f.record(ownerID)
	return f.view, f.err
}
func (f *fakeShares) ListShares(_ context.Context, ownerID string) ([]*services.ShareView, error) {
	f.record(ownerID)
	if f.view == nil {
		return nil, f.err
	}
	return []*services.ShareView{f.view}, f.err
}
func (f *fakeShares) DeleteShare(_ context.Context, ownerID, _ string) error {
	f.record(ownerID)
	return f.err
}
func (f *fakeShares) GetShareStats(_ context.Context, ownerID, _ string) (*models.AccessStats, error) {
	f.record(ownerID)
	return f.stats, f.err
}
func (f *fakeShares) GetShareAccessLogs(_ context.Context, ownerID, _ string, _ int) ([]*models.ShareAccessLog, error) {
	f.record(ownerID)
	return f.logs, f.err
}
func (f *fakeShares) GetShareMetadata(context.Context, string) (*services.ShareMetadata, error) {
	return f.metadata, f.err
}
func (f *fakeShares) AccessShare(_ context.Context, req *services.AccessRequest) (*services.AccessGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAccess = req
	return f.grant, f.err
}
func (f *fakeShares) ListSharedWithMe(_ context.Context, userID string) ([]*services.SharedFileView, error) {
	f.record(userID)
	return f.shared, f.err
}
