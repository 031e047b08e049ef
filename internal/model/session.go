package model

import "time"

// Session はユーザーのログインセッションを表す。
// プロセス内メモリのみに保持され、再起動で消える（永続化しない仕様）。
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
	Remember  bool
}
