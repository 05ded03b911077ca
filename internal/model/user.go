// Package model はドメインモデルを定義する。
package model

import "time"

// User はユーザー名で識別されるサービス利用ユーザーを表す。
// 初回ログイン時に作成され、以後変更も削除もされない。
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// IDはCookieに格納される不透明なトークンで、発行後は常に同じUserIDに解決される。
// 有効期限とログアウトは持たない。
type Session struct {
	ID           string
	UserID       string
	ForgeryToken string // セッション作成時に生成されるリクエスト偽造対策トークン
	CreatedAt    time.Time
}
