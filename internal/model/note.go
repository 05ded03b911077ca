package model

import "time"

// Note はユーザーが所有するメモを表す。
// 作成後は変更されず、所有者は作成したユーザーのみ。
type Note struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	CreatedAt time.Time
}
