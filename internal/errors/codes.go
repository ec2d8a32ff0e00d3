package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. The admin console
// maps these codes to display messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED" // missing/invalid credentials
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"
	AuthzForbidden   = "AUTHZ_FORBIDDEN" // authenticated but not allowed

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Product (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND"

	// ==================== Pricing (PRICING_) ====================
	PricingInvalidAttribute = "PRICING_INVALID_ATTRIBUTE" // numeric input out of its domain
	PricingMissingAttribute = "PRICING_MISSING_ATTRIBUTE" // required field for the active mode absent
	PricingPriceInversion   = "PRICING_PRICE_INVERSION"   // cost <= selling <= mrp violated
	PricingInvalidMode      = "PRICING_INVALID_MODE"

	// ==================== Stones (STONE_) ====================
	StoneIndexOutOfRange = "STONE_INDEX_OUT_OF_RANGE"
	StoneInvalidType     = "STONE_INVALID_TYPE"

	// ==================== Metal rates (RATE_) ====================
	RateNotFound    = "RATE_NOT_FOUND"
	RateInvalidType = "RATE_INVALID_TYPE"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
