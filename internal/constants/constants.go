package constants

// Context keys shared between middleware and handlers.
const (
	ContextKeyUserID = "user_id"
	ContextKeyActor  = "actor"
)

// Pagination bounds.
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

const MinPasswordLength = 8

const SessionCookieName = "task_session"
