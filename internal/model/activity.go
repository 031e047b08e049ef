package model

import "time"

// Activity は監査用アクティビティログの1レコードを表す。
// ログは追記専用で、更新・削除されない。
type Activity struct {
	Datetime time.Time      `json:"datetime"`
	Username string         `json:"username"`
	Type     string         `json:"type"`
	Details  map[string]any `json:"details"`
}

// GroomingAppointment はグルーミング予約を表す。
// 予約は専用ストアを持たず、アクティビティログに記録される。
type GroomingAppointment struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	PetType   string    `json:"petType"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
