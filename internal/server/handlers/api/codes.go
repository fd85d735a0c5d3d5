package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // access denied by the acl engine

	// Auth errors
	CodeAuthInvalidCredentials = "E_AUTH_INVALID_CREDENTIALS" // token is invalid, expired, or malformed

	// ACL errors
	CodeACLNotFound    = "E_ACL_NOT_FOUND"    // the referenced rule id does not exist
	CodeACLInvalidRule = "E_ACL_INVALID_RULE" // rule fields failed validation (bad action, decision or pattern)
	CodeACLStoreFailed = "E_ACL_STORE_FAILED" // the persistence layer could not be reached
	CodeACLCheckFailed = "E_ACL_CHECK_FAILED" // the authorization decision could not be evaluated

	// File errors
	CodeFileNotFound    = "E_FILE_NOT_FOUND"    // the resolved path does not exist
	CodeFileOutsideRoot = "E_FILE_OUTSIDE_ROOT" // the path escapes the configured root
	CodeFileWrongKind   = "E_FILE_WRONG_KIND"   // file where a directory was expected, or vice versa
	CodeFileOpFailed    = "E_FILE_OP_FAILED"    // a filesystem operation failed
)
