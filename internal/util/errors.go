package util

import "errors"

// 错误分类，调用方通过 errors.Is 判断类别
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("duplicate constraint")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DomainError 携带面向调用方的消息，Unwrap 返回其分类
type DomainError struct {
	Kind error
	Msg  string
}

func (e *DomainError) Error() string { return e.Msg }

func (e *DomainError) Unwrap() error { return e.Kind }

// Invalid 构造一个校验错误，消息原样返回给调用方
func Invalid(msg string) error {
	return &DomainError{Kind: ErrValidation, Msg: msg}
}

var (
	ErrUserNotFound        = &DomainError{Kind: ErrNotFound, Msg: "user not found"}
	ErrQuestionNotFound    = &DomainError{Kind: ErrNotFound, Msg: "question not found"}
	ErrAnswerNotFound      = &DomainError{Kind: ErrNotFound, Msg: "answer not found"}
	ErrReviewNotFound      = &DomainError{Kind: ErrNotFound, Msg: "review not found"}
	ErrRoleRequestNotFound = &DomainError{Kind: ErrNotFound, Msg: "role request not found"}
	ErrInvitationNotFound  = &DomainError{Kind: ErrNotFound, Msg: "invitation code not found"}
	ErrTrustNotFound       = &DomainError{Kind: ErrNotFound, Msg: "trusted reviewer not found"}
	ErrInvalidCredentials  = &DomainError{Kind: ErrNotFound, Msg: "invalid user name or password"}

	ErrDuplicateUser        = &DomainError{Kind: ErrDuplicate, Msg: "user name already exists"}
	ErrDuplicateTrust       = &DomainError{Kind: ErrDuplicate, Msg: "reviewer is already trusted"}
	ErrDuplicateRoleRequest = &DomainError{Kind: ErrDuplicate, Msg: "role already requested"}

	ErrInvalidTarget       = &DomainError{Kind: ErrValidation, Msg: "review must target exactly one of a question or an answer"}
	ErrInvalidWeight       = &DomainError{Kind: ErrValidation, Msg: "trust weight must be between 1 and 10"}
	ErrInvalidThread       = &DomainError{Kind: ErrValidation, Msg: "invalid message thread"}
	ErrSelfTrust           = &DomainError{Kind: ErrValidation, Msg: "a user cannot trust themselves"}
	ErrNotReviewer         = &DomainError{Kind: ErrValidation, Msg: "user does not hold the reviewer role"}
	ErrAnswerNotInQuestion = &DomainError{Kind: ErrValidation, Msg: "answer does not belong to question"}
	ErrInvalidRole         = &DomainError{Kind: ErrValidation, Msg: "unknown role"}
	ErrRoleAlreadyHeld     = &DomainError{Kind: ErrValidation, Msg: "user already holds this role"}
	ErrInvitationUsed      = &DomainError{Kind: ErrValidation, Msg: "invitation code already used"}
	ErrAlreadyInitialized  = &DomainError{Kind: ErrValidation, Msg: "database already has users"}

	ErrPermissionDenied = errors.New("permission denied")
	ErrLoginLocked      = errors.New("too many failed login attempts, try again later")
)
