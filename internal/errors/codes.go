package errors

// Error code constants returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. The front end maps these to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthOTPInvalid         = "AUTH_OTP_INVALID"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	InvalidRequest         = "INVALID_REQUEST"
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Domain ====================
	EstablishmentNotFound = "ESTABLISHMENT_NOT_FOUND"
	RatingNotFound        = "RATING_NOT_FOUND"
	AccountNotFound       = "ACCOUNT_NOT_FOUND"
	FavoriteNotFound      = "FAVORITE_NOT_FOUND"

	// ==================== Uploads (UPLOAD_) ====================
	UploadFileTooLarge = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed       = "UPLOAD_FAILED"

	// ==================== Throttling ====================
	RateLimited = "RATE_LIMITED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalTimeout       = "INTERNAL_TIMEOUT"
)
