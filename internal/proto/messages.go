package proto

import "time"

type PingRequest struct{}

func (m *PingRequest) appendProto(b []byte) []byte { return b }
func (m *PingRequest) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

// PingResponse also tells clients which parameters to encrypt with.
type PingResponse struct {
	Status     string
	FileCipher string
	KeyLength  int
}

func (m *PingResponse) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Status)
	b = appendString(b, 2, m.FileCipher)
	return appendInt(b, 3, int64(m.KeyLength))
}

func (m *PingResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Status = d.string()
		case 2:
			m.FileCipher = d.string()
		case 3:
			m.KeyLength = d.int()
		}
	})
}

type RegisterRequest struct {
	Username string
	Salt     []byte
	Verifier []byte
}

func (m *RegisterRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Username)
	b = appendBytes(b, 2, m.Salt)
	return appendBytes(b, 3, m.Verifier)
}

func (m *RegisterRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Username = d.string()
		case 2:
			m.Salt = d.bytes()
		case 3:
			m.Verifier = d.bytes()
		}
	})
}

type RegisterResponse struct {
	UserID string
}

func (m *RegisterResponse) appendProto(b []byte) []byte { return appendString(b, 1, m.UserID) }
func (m *RegisterResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.UserID = d.string()
		}
	})
}

type GetSaltRequest struct {
	Username string
}

func (m *GetSaltRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.Username) }
func (m *GetSaltRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.Username = d.string()
		}
	})
}

type GetSaltResponse struct {
	Salt []byte
}

func (m *GetSaltResponse) appendProto(b []byte) []byte { return appendBytes(b, 1, m.Salt) }
func (m *GetSaltResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.Salt = d.bytes()
		}
	})
}

type LoginRequest struct {
	Username          string
	VerifierCandidate []byte
}

func (m *LoginRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Username)
	return appendBytes(b, 2, m.VerifierCandidate)
}

func (m *LoginRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Username = d.string()
		case 2:
			m.VerifierCandidate = d.bytes()
		}
	})
}

type LoginResponse struct {
	AccessToken string
}

func (m *LoginResponse) appendProto(b []byte) []byte { return appendString(b, 1, m.AccessToken) }
func (m *LoginResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.AccessToken = d.string()
		}
	})
}

type UserFile struct {
	ID          string
	Filename    string
	MimeType    string
	ContentHash string
	SizeBytes   int64
	FolderID    *string
	CreatedAt   time.Time
}

func (m *UserFile) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Filename)
	b = appendString(b, 3, m.MimeType)
	b = appendString(b, 4, m.ContentHash)
	b = appendInt(b, 5, m.SizeBytes)
	b = appendOptString(b, 6, m.FolderID)
	return appendTime(b, 7, m.CreatedAt)
}

func (m *UserFile) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ID = d.string()
		case 2:
			m.Filename = d.string()
		case 3:
			m.MimeType = d.string()
		case 4:
			m.ContentHash = d.string()
		case 5:
			m.SizeBytes = d.int64()
		case 6:
			m.FolderID = d.optString()
		case 7:
			m.CreatedAt = d.time()
		}
	})
}

type UploadFileRequest struct {
	Filename     string
	ContentHash  string
	SizeBytes    int64
	MimeType     string
	EncryptedKey []byte
	FileData     []byte
	FolderID     *string
}

func (m *UploadFileRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Filename)
	b = appendString(b, 2, m.ContentHash)
	b = appendInt(b, 3, m.SizeBytes)
	b = appendString(b, 4, m.MimeType)
	b = appendBytes(b, 5, m.EncryptedKey)
	b = appendBytes(b, 6, m.FileData)
	return appendOptString(b, 7, m.FolderID)
}

func (m *UploadFileRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Filename = d.string()
		case 2:
			m.ContentHash = d.string()
		case 3:
			m.SizeBytes = d.int64()
		case 4:
			m.MimeType = d.string()
		case 5:
			m.EncryptedKey = d.bytes()
		case 6:
			m.FileData = d.bytes()
		case 7:
			m.FolderID = d.optString()
		}
	})
}

type UploadFileResponse struct {
	File         UserFile
	Deduplicated bool
}

func (m *UploadFileResponse) appendProto(b []byte) []byte {
	b = appendEmbedded(b, 1, &m.File)
	return appendBool(b, 2, m.Deduplicated)
}

func (m *UploadFileResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			d.embedded(&m.File)
		case 2:
			m.Deduplicated = d.bool()
		}
	})
}

type ListFilesRequest struct{}

func (m *ListFilesRequest) appendProto(b []byte) []byte { return b }
func (m *ListFilesRequest) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

type ListFilesResponse struct {
	Files []UserFile
}

func (m *ListFilesResponse) appendProto(b []byte) []byte {
	for i := range m.Files {
		b = appendEmbedded(b, 1, &m.Files[i])
	}
	return b
}

func (m *ListFilesResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			var f UserFile
			d.embedded(&f)
			m.Files = append(m.Files, f)
		}
	})
}

type DownloadFileRequest struct {
	UserFileID string
}

func (m *DownloadFileRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.UserFileID) }
func (m *DownloadFileRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.UserFileID = d.string()
		}
	})
}

type DownloadFileResponse struct {
	File        UserFile
	ContentKey  []byte
	DownloadURL string
	FileCipher  string
}

func (m *DownloadFileResponse) appendProto(b []byte) []byte {
	b = appendEmbedded(b, 1, &m.File)
	b = appendBytes(b, 2, m.ContentKey)
	b = appendString(b, 3, m.DownloadURL)
	return appendString(b, 4, m.FileCipher)
}

func (m *DownloadFileResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			d.embedded(&m.File)
		case 2:
			m.ContentKey = d.bytes()
		case 3:
			m.DownloadURL = d.string()
		case 4:
			m.FileCipher = d.string()
		}
	})
}

type DeleteFileRequest struct {
	UserFileID string
}

func (m *DeleteFileRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.UserFileID) }
func (m *DeleteFileRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.UserFileID = d.string()
		}
	})
}

type DeleteFileResponse struct{}

func (m *DeleteFileResponse) appendProto(b []byte) []byte { return b }
func (m *DeleteFileResponse) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

// ShareOptions travel as a nested message inside the requests that embed
// them. A MaxDownloads of zero is sent, so it stays distinguishable from
// unlimited.
type ShareOptions struct {
	MaxDownloads     *int
	ExpiresAt        *time.Time
	AllowedUsernames []string
}

func (m *ShareOptions) appendProto(b []byte) []byte {
	b = appendOptInt(b, 1, m.MaxDownloads)
	b = appendOptTime(b, 2, m.ExpiresAt)
	return appendStrings(b, 3, m.AllowedUsernames)
}

func (m *ShareOptions) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.MaxDownloads = d.optInt()
		case 2:
			m.ExpiresAt = d.optTime()
		case 3:
			m.AllowedUsernames = append(m.AllowedUsernames, d.string())
		}
	})
}

type Share struct {
	ID                 string
	UserFileID         string
	Token              string
	Link               string
	MaxDownloads       *int
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	AllowedUsernames   []string
	Status             string
	CreatedAt          time.Time
}

func (m *Share) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.UserFileID)
	b = appendString(b, 3, m.Token)
	b = appendString(b, 4, m.Link)
	b = appendOptInt(b, 5, m.MaxDownloads)
	b = appendInt(b, 6, int64(m.DownloadCount))
	b = appendOptInt(b, 7, m.RemainingDownloads)
	b = appendOptTime(b, 8, m.ExpiresAt)
	b = appendStrings(b, 9, m.AllowedUsernames)
	b = appendString(b, 10, m.Status)
	return appendTime(b, 11, m.CreatedAt)
}

func (m *Share) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ID = d.string()
		case 2:
			m.UserFileID = d.string()
		case 3:
			m.Token = d.string()
		case 4:
			m.Link = d.string()
		case 5:
			m.MaxDownloads = d.optInt()
		case 6:
			m.DownloadCount = d.int()
		case 7:
			m.RemainingDownloads = d.optInt()
		case 8:
			m.ExpiresAt = d.optTime()
		case 9:
			m.AllowedUsernames = append(m.AllowedUsernames, d.string())
		case 10:
			m.Status = d.string()
		case 11:
			m.CreatedAt = d.time()
		}
	})
}

type CreateShareRequest struct {
	UserFileID string
	Password   string
	ShareOptions
}

func (m *CreateShareRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.UserFileID)
	b = appendString(b, 2, m.Password)
	return appendEmbedded(b, 3, &m.ShareOptions)
}

func (m *CreateShareRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.UserFileID = d.string()
		case 2:
			m.Password = d.string()
		case 3:
			d.embedded(&m.ShareOptions)
		}
	})
}

type CreateShareResponse struct {
	Share Share
}

func (m *CreateShareResponse) appendProto(b []byte) []byte { return appendEmbedded(b, 1, &m.Share) }
func (m *CreateShareResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			d.embedded(&m.Share)
		}
	})
}

type UpdateShareRequest struct {
	ShareID     string
	NewPassword string
	ShareOptions
}

func (m *UpdateShareRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ShareID)
	b = appendString(b, 2, m.NewPassword)
	return appendEmbedded(b, 3, &m.ShareOptions)
}

func (m *UpdateShareRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ShareID = d.string()
		case 2:
			m.NewPassword = d.string()
		case 3:
			d.embedded(&m.ShareOptions)
		}
	})
}

type UpdateShareResponse struct {
	Share Share
}

func (m *UpdateShareResponse) appendProto(b []byte) []byte { return appendEmbedded(b, 1, &m.Share) }
func (m *UpdateShareResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			d.embedded(&m.Share)
		}
	})
}

type ListSharesRequest struct{}

func (m *ListSharesRequest) appendProto(b []byte) []byte { return b }
func (m *ListSharesRequest) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

type ListSharesResponse struct {
	Shares []Share
}

func (m *ListSharesResponse) appendProto(b []byte) []byte {
	for i := range m.Shares {
		b = appendEmbedded(b, 1, &m.Shares[i])
	}
	return b
}

func (m *ListSharesResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			var s Share
			d.embedded(&s)
			m.Shares = append(m.Shares, s)
		}
	})
}

type DeleteShareRequest struct {
	ShareID string
}

func (m *DeleteShareRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.ShareID) }
func (m *DeleteShareRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.ShareID = d.string()
		}
	})
}

type DeleteShareResponse struct{}

func (m *DeleteShareResponse) appendProto(b []byte) []byte { return b }
func (m *DeleteShareResponse) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

type AccessStats struct {
	TotalAttempts      int64
	SuccessfulAttempts int64
	FailedAttempts     int64
	RecentAttempts     int64
	UniqueIPs          int64
}

func (m *AccessStats) appendProto(b []byte) []byte {
	b = appendInt(b, 1, m.TotalAttempts)
	b = appendInt(b, 2, m.SuccessfulAttempts)
	b = appendInt(b, 3, m.FailedAttempts)
	b = appendInt(b, 4, m.RecentAttempts)
	return appendInt(b, 5, m.UniqueIPs)
}

func (m *AccessStats) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.TotalAttempts = d.int64()
		case 2:
			m.SuccessfulAttempts = d.int64()
		case 3:
			m.FailedAttempts = d.int64()
		case 4:
			m.RecentAttempts = d.int64()
		case 5:
			m.UniqueIPs = d.int64()
		}
	})
}

type GetShareStatsRequest struct {
	ShareID string
}

func (m *GetShareStatsRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.ShareID) }
func (m *GetShareStatsRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.ShareID = d.string()
		}
	})
}

type GetShareStatsResponse struct {
	Stats AccessStats
}

func (m *GetShareStatsResponse) appendProto(b []byte) []byte { return appendEmbedded(b, 1, &m.Stats) }
func (m *GetShareStatsResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			d.embedded(&m.Stats)
		}
	})
}

type AccessLogEntry struct {
	OccurredAt       time.Time
	SourceIdentifier string
	UserAgent        string
	Outcome          string
	Reason           string
}

func (m *AccessLogEntry) appendProto(b []byte) []byte {
	b = appendTime(b, 1, m.OccurredAt)
	b = appendString(b, 2, m.SourceIdentifier)
	b = appendString(b, 3, m.UserAgent)
	b = appendString(b, 4, m.Outcome)
	return appendString(b, 5, m.Reason)
}

func (m *AccessLogEntry) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.OccurredAt = d.time()
		case 2:
			m.SourceIdentifier = d.string()
		case 3:
			m.UserAgent = d.string()
		case 4:
			m.Outcome = d.string()
		case 5:
			m.Reason = d.string()
		}
	})
}

type GetShareAccessLogsRequest struct {
	ShareID string
	Limit   int
}

func (m *GetShareAccessLogsRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ShareID)
	return appendInt(b, 2, int64(m.Limit))
}

func (m *GetShareAccessLogsRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ShareID = d.string()
		case 2:
			m.Limit = d.int()
		}
	})
}

type GetShareAccessLogsResponse struct {
	Entries []AccessLogEntry
}

func (m *GetShareAccessLogsResponse) appendProto(b []byte) []byte {
	for i := range m.Entries {
		b = appendEmbedded(b, 1, &m.Entries[i])
	}
	return b
}

func (m *GetShareAccessLogsResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			var e AccessLogEntry
			d.embedded(&e)
			m.Entries = append(m.Entries, e)
		}
	})
}

type GetShareMetadataRequest struct {
	Token string
}

func (m *GetShareMetadataRequest) appendProto(b []byte) []byte { return appendString(b, 1, m.Token) }
func (m *GetShareMetadataRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			m.Token = d.string()
		}
	})
}

type GetShareMetadataResponse struct {
	Filename           string
	MimeType           string
	SizeBytes          int64
	MaxDownloads       *int
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	RequiresLogin      bool
	Status             string
	CreatedAt          time.Time
}

func (m *GetShareMetadataResponse) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Filename)
	b = appendString(b, 2, m.MimeType)
	b = appendInt(b, 3, m.SizeBytes)
	b = appendOptInt(b, 4, m.MaxDownloads)
	b = appendInt(b, 5, int64(m.DownloadCount))
	b = appendOptInt(b, 6, m.RemainingDownloads)
	b = appendOptTime(b, 7, m.ExpiresAt)
	b = appendBool(b, 8, m.RequiresLogin)
	b = appendString(b, 9, m.Status)
	return appendTime(b, 10, m.CreatedAt)
}

func (m *GetShareMetadataResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Filename = d.string()
		case 2:
			m.MimeType = d.string()
		case 3:
			m.SizeBytes = d.int64()
		case 4:
			m.MaxDownloads = d.optInt()
		case 5:
			m.DownloadCount = d.int()
		case 6:
			m.RemainingDownloads = d.optInt()
		case 7:
			m.ExpiresAt = d.optTime()
		case 8:
			m.RequiresLogin = d.bool()
		case 9:
			m.Status = d.string()
		case 10:
			m.CreatedAt = d.time()
		}
	})
}

type AccessShareRequest struct {
	Token    string
	Password string
}

func (m *AccessShareRequest) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.Token)
	return appendString(b, 2, m.Password)
}

func (m *AccessShareRequest) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.Token = d.string()
		case 2:
			m.Password = d.string()
		}
	})
}

type AccessShareResponse struct {
	ShareID            string
	Filename           string
	MimeType           string
	SizeBytes          int64
	ContentKey         []byte
	DownloadURL        string
	FileCipher         string
	DownloadCount      int
	RemainingDownloads *int
}

func (m *AccessShareResponse) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ShareID)
	b = appendString(b, 2, m.Filename)
	b = appendString(b, 3, m.MimeType)
	b = appendInt(b, 4, m.SizeBytes)
	b = appendBytes(b, 5, m.ContentKey)
	b = appendString(b, 6, m.DownloadURL)
	b = appendString(b, 7, m.FileCipher)
	b = appendInt(b, 8, int64(m.DownloadCount))
	return appendOptInt(b, 9, m.RemainingDownloads)
}

func (m *AccessShareResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ShareID = d.string()
		case 2:
			m.Filename = d.string()
		case 3:
			m.MimeType = d.string()
		case 4:
			m.SizeBytes = d.int64()
		case 5:
			m.ContentKey = d.bytes()
		case 6:
			m.DownloadURL = d.string()
		case 7:
			m.FileCipher = d.string()
		case 8:
			m.DownloadCount = d.int()
		case 9:
			m.RemainingDownloads = d.optInt()
		}
	})
}

type ListSharedWithMeRequest struct{}

func (m *ListSharedWithMeRequest) appendProto(b []byte) []byte { return b }
func (m *ListSharedWithMeRequest) readProto(b []byte) error {
	return decodeFields(b, func(*fieldDecoder) {})
}

// SharedFile is a share the caller redeemed while signed in.
type SharedFile struct {
	ShareID            string
	Token              string
	Link               string
	OwnerUsername      string
	Filename           string
	MimeType           string
	SizeBytes          int64
	DownloadCount      int
	RemainingDownloads *int
	ExpiresAt          *time.Time
	Status             string
	FirstAccessedAt    time.Time
	LastAccessedAt     time.Time
	AccessCount        int
}

func (m *SharedFile) appendProto(b []byte) []byte {
	b = appendString(b, 1, m.ShareID)
	b = appendString(b, 2, m.Token)
	b = appendString(b, 3, m.Link)
	b = appendString(b, 4, m.OwnerUsername)
	b = appendString(b, 5, m.Filename)
	b = appendString(b, 6, m.MimeType)
	b = appendInt(b, 7, m.SizeBytes)
	b = appendInt(b, 8, int64(m.DownloadCount))
	b = appendOptInt(b, 9, m.RemainingDownloads)
	b = appendOptTime(b, 10, m.ExpiresAt)
	b = appendString(b, 11, m.Status)
	b = appendTime(b, 12, m.FirstAccessedAt)
	b = appendTime(b, 13, m.LastAccessedAt)
	return appendInt(b, 14, int64(m.AccessCount))
}

func (m *SharedFile) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		switch d.num {
		case 1:
			m.ShareID = d.string()
		case 2:
			m.Token = d.string()
		case 3:
			m.Link = d.string()
		case 4:
			m.OwnerUsername = d.string()
		case 5:
			m.Filename = d.string()
		case 6:
			m.MimeType = d.string()
		case 7:
			m.SizeBytes = d.int64()
		case 8:
			m.DownloadCount = d.int()
		case 9:
			m.RemainingDownloads = d.optInt()
		case 10:
			m.ExpiresAt = d.optTime()
		case 11:
			m.Status = d.string()
		case 12:
			m.FirstAccessedAt = d.time()
		case 13:
			m.LastAccessedAt = d.time()
		case 14:
			m.AccessCount = d.int()
		}
	})
}

type ListSharedWithMeResponse struct {
	Files []SharedFile
}

func (m *ListSharedWithMeResponse) appendProto(b []byte) []byte {
	for i := range m.Files {
		b = appendEmbedded(b, 1, &m.Files[i])
	}
	return b
}

func (m *ListSharedWithMeResponse) readProto(b []byte) error {
	return decodeFields(b, func(d *fieldDecoder) {
		if d.num == 1 {
			var f SharedFile
			d.embedded(&f)
			m.Files = append(m.Files, f)
		}
	})
}
