package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")

	// ErrAmbiguousProfile 档案查询返回多行，与"无记录"同走 get-or-create 补救路径
	ErrAmbiguousProfile = errors.New("profile lookup returned multiple rows")

	ErrCourseNotFound       = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrQuizNotFound         = errors.New("quiz not available for this module")
	ErrQuizNoQuestions      = errors.New("quiz has no questions (misconfigured)")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptSubmitted     = errors.New("attempt already submitted")
	ErrAttemptInProgress    = errors.New("attempt still in progress")
	ErrAttemptIncomplete    = errors.New("all questions must be answered before submitting")
	ErrRetryAfterPass       = errors.New("retry is only available for failed attempts")
	ErrInvalidAnswerIndex   = errors.New("selected answer index out of range")
	ErrGoogleAuthRequired   = errors.New("Google sign-in required before uploading videos or documents")
	ErrCertificateNotEarned = errors.New("course not completed, certificate not available")
)
