package types

const (
	ErrInvalidInput    = "Invalid input"
	ErrUnauthorized    = "unauthorized"
	ErrInternalError   = "internal server error"
	ErrInvalidLogin    = "Login fehlgeschlagen. Bitte prüfen."
	ErrUserInactive    = "Benutzer ist deaktiviert."
	ErrSessionNotFound = "Session not found"
	ErrInvalidDate     = "invalid date"
	ErrInvalidUID      = "invalid_uid"
	ErrUnknownCard     = "unknown_card"
	ErrUserDisabled    = "user_disabled"
	ErrPDFError        = "Could not render statement"
	ErrExportError     = "Could not build export"
)
