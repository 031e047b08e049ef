// Package model はドメインモデルを定義する。
package model

import "time"

// User はペットストアの登録ユーザーを表す。
// カートと購入履歴はユーザーに埋め込まれ、ユーザーと同じファイルに永続化される。
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"password"` // bcryptハッシュ。APIレスポンスには含めない。
	Email     string     `json:"email"`
	Cart      []CartItem `json:"cart"`
	Purchases []Purchase `json:"purchases"`
	CreatedAt time.Time  `json:"createdAt"`
}

// CartItem はカート内の1行を表す。
// 同一商品の追加は新しい行を作らず数量を加算する。
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartLine は商品詳細を付与したカート行の読み取りモデル。
// 商品がカタログから削除済みの場合、Productはnilになる（参照は残す仕様）。
type CartLine struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"`
}
