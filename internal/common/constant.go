package common

const (
	// AuthorizationHeaderName carries the bearer session token.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the expected authorization scheme prefix.
	BearerScheme = "Bearer"
)
