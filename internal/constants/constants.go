package constants

const (
	// SessionCookieName is the cookie that carries the API session.
	SessionCookieName = "task_session"
	// WebSessionCookieName is the cookie that carries the browser UI session.
	WebSessionCookieName = "task_board_ui"

	// ContextKeyUserID is used both as the session key and the gin context key for the current user.
	ContextKeyUserID = "user_id"
	// ContextKeyRequestID holds the per-request correlation id.
	ContextKeyRequestID = "request_id"
	// ContextKeyTask and ContextKeyTeam hold resources loaded by middleware.
	ContextKeyTask = "task"
	ContextKeyTeam = "team"

	// HeaderRequestID is echoed on every response.
	HeaderRequestID = "X-Request-ID"
)

const (
	// UIDLength is the number of base64 characters kept from the identity digest.
	UIDLength = 10

	// DateLayout is the wire and storage format of calendar dates.
	DateLayout = "2006-01-02"

	MaxUsernameLength = 50
	MaxEmailLength    = 100
	MaxTeamNameLength = 100
	MaxTitleLength    = 200
	MaxTagNameLength  = 50

	// MaxDraftTasks caps how many drafts one AI request may return.
	MaxDraftTasks = 20

	// SessionMaxAge is seven days.
	SessionMaxAge = 86400 * 7
)
