package constants

const (
	// ContextKeyUserID is the gin context and session key holding the authenticated user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyRequestID is the gin context key holding the request ID.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "todo_session"
	// SessionKeyOAuthState holds the pending Google OAuth state value.
	SessionKeyOAuthState = "oauth_state"

	HeaderRequestID = "X-Request-ID"

	MinPasswordLength = 6

	DefaultProfileImage = "/default-avatar.png"
)
