package gamedto

// Code identifies a rejection reason surfaced to callers. The set is closed:
// every rejection the core can produce maps to exactly one of these.
type Code string

const (
	CodeMalformedPosition Code = "MALFORMED_POSITION"
	CodeWrongTurn         Code = "WRONG_TURN"
	CodeNoPieceAtSource   Code = "NO_PIECE_AT_SOURCE"
	CodeColorMismatch     Code = "COLOR_MISMATCH"
	CodePromotionRequired Code = "PROMOTION_REQUIRED"
	CodeInvalidPromotion  Code = "INVALID_PROMOTION"
	CodeIllegalGeometry   Code = "ILLEGAL_GEOMETRY"
	CodeGameOver          Code = "GAME_OVER"
	CodeNotYourTurn       Code = "NOT_YOUR_TURN"
	CodeStaleState        Code = "STALE_STATE"
	CodeTurnAlreadyTaken  Code = "TURN_ALREADY_TAKEN"
	CodeTokenMissing      Code = "TOKEN_MISSING"
	CodeTokenInvalid      Code = "TOKEN_INVALID"
	CodeTokenUsed         Code = "TOKEN_USED"
	CodeTokenExpired      Code = "TOKEN_EXPIRED"
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"
)

// DomainError carries a stable rejection code plus a human-readable message.
// Retryable marks the expected races (stale state, lost turn guard) where the
// right caller reaction is refresh-and-retry rather than giving up.
type DomainError struct {
	Code      Code
	Message   string
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return string(e.Code)
	}
	return "game error"
}

// Reject builds a non-retryable DomainError.
func Reject(code Code, message string) DomainError {
	return DomainError{Code: code, Message: message}
}

// Race builds a retryable DomainError for expected concurrent-access losses.
func Race(code Code, message string) DomainError {
	return DomainError{Code: code, Message: message, Retryable: true}
}

// CodeOf extracts the rejection code from err, or "" when err is not a
// DomainError.
func CodeOf(err error) Code {
	if de, ok := err.(DomainError); ok {
		return de.Code
	}
	if de, ok := err.(*DomainError); ok && de != nil {
		return de.Code
	}
	return ""
}
