package common

const (
	// AuthorizationHeaderName carries the bearer access token on inbound
	// HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the signed token in the Authorization header and
	// in login responses.
	BearerPrefix = "Bearer "

	// RoleUser is the only role issued to members.
	RoleUser = "ROLE_USER"
)
