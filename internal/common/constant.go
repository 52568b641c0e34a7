package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// owner's access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ForwardedForHeaderName and RealIPHeaderName are honoured only when the
// server runs behind a trusted proxy.
const (
	ForwardedForHeaderName = "x-forwarded-for"
	RealIPHeaderName       = "x-real-ip"
)
