// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, format, system
	Action   string // ユーザー向け対処方法
	Err      error  // 原因となったエラー（ログ用、レスポンスには含めない）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeForgeryTokenInvalid = "FORGERY_TOKEN_INVALID"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotAcceptable       = "NOT_ACCEPTABLE"
	ErrCodeCrossSiteBlocked    = "CROSS_SITE_BLOCKED"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForgeryTokenInvalidError はリクエスト偽造対策トークンの欠落・不一致エラーを生成する。
func NewForgeryTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeForgeryTokenInvalid,
		Message:  "リクエスト偽造対策トークンが無効です。",
		Category: "auth",
		Action:   "GET /session で取得したトークンを X-CSRF-Token ヘッダーに指定してください。",
	}
}

// NewValidationError は入力値エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewNotAcceptableError は要求された表現形式を返せない場合のエラーを生成する。
func NewNotAcceptableError(format string) *APIError {
	return &APIError{
		Code:     ErrCodeNotAcceptable,
		Message:  fmt.Sprintf("この操作では %s 形式のレスポンスを返せません。", format),
		Category: "format",
		Action:   "拡張子を付けずに、または .data を指定してリクエストしてください。",
	}
}

// NewCrossSiteBlockedError はクロスサイトからのリソース読み込みを拒否した場合のエラーを生成する。
func NewCrossSiteBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeCrossSiteBlocked,
		Message:  "クロスサイトからのリクエストはブロックされました。",
		Category: "auth",
		Action:   "同一オリジンのページから操作してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewStorageUnavailableError はデータストアに到達できない場合のエラーを生成する。
func NewStorageUnavailableError(err error) *APIError {
	return &APIError{
		Code:     ErrCodeStorageUnavailable,
		Message:  "データストアに接続できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		Err:      err,
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
