package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Forbidden           failure.ErrorCode = "Forbidden"
	AccessTokenExpired  failure.ErrorCode = "AccessTokenExpired"
	AccessTokenInvalid  failure.ErrorCode = "AccessTokenInvalid"
	CredentialsMismatch failure.ErrorCode = "CredentialsMismatch"

	// Backend communication.
	BackendUnavailable failure.ErrorCode = "BackendUnavailable"
	InvalidResponse    failure.ErrorCode = "InvalidResponse"

	// Console actions.
	InvalidDealID    failure.ErrorCode = "InvalidDealID"
	InvalidConfig    failure.ErrorCode = "InvalidConfig"
	UnknownField     failure.ErrorCode = "UnknownField"
	DuplicateAction  failure.ErrorCode = "DuplicateAction"
	SessionStorage   failure.ErrorCode = "SessionStorage"
	JournalUnwritten failure.ErrorCode = "JournalUnwritten"
)
