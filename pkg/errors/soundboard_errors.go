package errors

var (
	// Domain errors shared by the auth, soundboard and storage packages
	ErrUnauthorized       = Unauthorized("missing or invalid session token")
	ErrForbidden          = Forbidden("role is not allowed to broadcast sounds")
	ErrSoundNotFound      = NotFound("sound not found")
	ErrConnectionNotFound = NotFound("connection not registered")
	ErrTransientDelivery  = Unavailable("recipient could not accept the event")
	ErrInvalidSoundID     = InvalidArg("sound id is required")
)

func ErrCatalogLookupFailed(cause error) error {
	return Wrap(CodeInternal, "sound catalog lookup failed", cause)
}

func ErrSessionLookupFailed(cause error) error {
	return Wrap(CodeInternal, "session lookup failed", cause)
}
