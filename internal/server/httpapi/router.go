// Package httpapi serves the public, unauthenticated side of share links:
// share metadata and redemption for browsers and scripts that do not speak
// gRPC.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/common"
	"github.com/dmitrijs2005/vaultshare/internal/cryptox"
	"github.com/dmitrijs2005/vaultshare/internal/logging"
	"github.com/dmitrijs2005/vaultshare/internal/server/auth"
	"github.com/dmitrijs2005/vaultshare/internal/server/services"
	"github.com/rs/cors"
)

const maxAccessBodyBytes = 4 << 10

type shareSvc interface {
	GetShareMetadata(ctx context.Context, token string) (*services.ShareMetadata, error)
	AccessShare(ctx context.Context, req *services.AccessRequest) (*services.AccessGrant, error)
}

type Deps struct {
	Shares      shareSvc
	FileCipher  cryptox.CipherAlgorithm
	SecretKey   string
	CORSOrigins []string
	TrustProxy  bool
	Log         logging.Logger
}

type handler struct {
	shares     shareSvc
	fileCipher cryptox.CipherAlgorithm
	jwtSecret  []byte
	trustProxy bool
	log        logging.Logger
}

// NewRouter returns the CORS-wrapped public API.
//
//	GET  /health
//	GET  /api/v1/share/{token}
//	POST /api/v1/share/{token}/access   {"password": "..."}
func NewRouter(d Deps) http.Handler {
	h := &handler{
		shares:     d.Shares,
		fileCipher: d.FileCipher,
		jwtSecret:  []byte(d.SecretKey),
		trustProxy: d.TrustProxy,
		log:        d.Log.With("module", "http_api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusOK, Payload{Success: true, Message: "OK"})
	})
	mux.HandleFunc("GET /api/v1/share/{token}", h.shareMetadata)
	mux.HandleFunc("POST /api/v1/share/{token}/access", h.accessShare)

	c := cors.New(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	})
	return h.logRequests(c.Handler(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs the matched route pattern, never the raw path: share
// tokens travel in the URL.
func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug(r.Context(), "http request",
			"method", r.Method, "route", r.Pattern, "status", rec.status, "duration", time.Since(start))
	})
}

type metadataResponse struct {
	Filename           string     `json:"filename"`
	MimeType           string     `json:"mime_type"`
	SizeBytes          int64      `json:"size_bytes"`
	MaxDownloads       *int       `json:"max_downloads,omitempty"`
	DownloadCount      int        `json:"download_count"`
	RemainingDownloads *int       `json:"remaining_downloads,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	RequiresLogin      bool       `json:"requires_login"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (h *handler) shareMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := h.shares.GetShareMetadata(r.Context(), r.PathValue("token"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, Payload{
		Success: true,
		Message: "Share found",
		Data: metadataResponse{
			Filename:           md.Filename,
			MimeType:           md.MimeType,
			SizeBytes:          md.SizeBytes,
			MaxDownloads:       md.MaxDownloads,
			DownloadCount:      md.DownloadCount,
			RemainingDownloads: md.RemainingDownloads,
			ExpiresAt:          md.ExpiresAt,
			RequiresLogin:      md.RequiresLogin,
			Status:             string(md.Status),
			CreatedAt:          md.CreatedAt,
		},
	})
}

type accessRequest struct {
	Password string `json:"password"`
}

// accessResponse carries the raw content key; encoding/json renders it as
// standard base64.
type accessResponse struct {
	ShareID            string `json:"share_id"`
	Filename           string `json:"filename"`
	MimeType           string `json:"mime_type"`
	SizeBytes          int64  `json:"size_bytes"`
	ContentKey         []byte `json:"content_key"`
	DownloadURL        string `json:"download_url"`
	FileCipher         string `json:"file_cipher"`
	DownloadCount      int    `json:"download_count"`
	RemainingDownloads *int   `json:"remaining_downloads,omitempty"`
}

func (h *handler) accessShare(w http.ResponseWriter, r *http.Request) {
	var body accessRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAccessBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		JSONResponse(w, http.StatusBadRequest, Payload{Success: false, Message: "Invalid request body"})
		return
	}

	username, err := h.optionalUsername(r)
	if err != nil {
		JSONResponse(w, http.StatusUnauthorized, Payload{Success: false, Message: "Invalid access token"})
		return
	}

	grant, err := h.shares.AccessShare(r.Context(), &services.AccessRequest{
		Token:            r.PathValue("token"),
		Password:         body.Password,
		Username:         username,
		SourceIdentifier: h.sourceIdentifier(r),
		UserAgent:        r.UserAgent(),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	JSONResponse(w, http.StatusOK, Payload{
		Success: true,
		Message: "Share unlocked",
		Data: accessResponse{
			ShareID:            grant.ShareID,
			Filename:           grant.Filename,
			MimeType:           grant.MimeType,
			SizeBytes:          grant.SizeBytes,
			ContentKey:         grant.ContentKey,
			DownloadURL:        grant.DownloadURL,
			FileCipher:         string(h.fileCipher),
			DownloadCount:      grant.DownloadCount,
			RemainingDownloads: grant.RemainingDownloads,
		},
	})
}

// optionalUsername returns the username from a Bearer token, or "" when the
// request carries none.
func (h *handler) optionalUsername(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errors.New("unsupported authorization scheme")
	}
	id, err := auth.ParseToken(strings.TrimSpace(token), h.jwtSecret)
	if err != nil {
		return "", err
	}
	return id.UserName, nil
}

func (h *handler) sourceIdentifier(r *http.Request) string {
	if h.trustProxy {
		if fwd := r.Header.Get(common.ForwardedForHeaderName); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
		if ip := r.Header.Get(common.RealIPHeaderName); ip != "" {
			return strings.TrimSpace(ip)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, ok := errorStatus(err)
	if !ok {
		h.log.Error(r.Context(), "request failed", "route", r.Pattern, "error", err)
	}
	JSONResponse(w, status, Payload{Success: false, Message: msg})
}
