package constants

// Session and request-context keys.
const (
	SessionCookieName = "dardito_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
)

// Token generation.
const TokenBytes = 16

// Project layout bounds: a team always runs the general-task project plus one
// or two delivery projects.
const (
	MinProjects = 2
	MaxProjects = 3
)

// Store retry policy, matching the persistence layer's bounded backoff.
const (
	StoreMaxRetries = 3
	StoreRetryDelay = 100 // milliseconds, multiplied by the attempt number
)

// SystemActor is the actor recorded on activity entries written by scheduled
// or administrative processes rather than a signed-in user.
const SystemActor = "SYSTEM"
