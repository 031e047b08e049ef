// Package repository はデータ永続化のインターフェースを定義する。
// ユーザー・商品・アクティビティはデータディレクトリ配下のJSONファイルに、
// セッションはプロセス内メモリに保持する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/petstore/internal/model"
)

// ErrDuplicateUsername は登録済みユーザー名での作成を表すセンチネルエラー。
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository はユーザーデータの永続化インターフェース。
// カート操作と購入確定は読み取り・変更・書き込みを1つの排他区間で行い、
// 並行リクエスト間の更新消失を防ぐ。
type UserRepository interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// AddToCart はカートに商品を追加し、更新後のカートを返す。
	// 既存行がある場合は数量を加算する。ユーザー不在の場合はnilを返す。
	AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error)

	// RemoveFromCart はカートから指定商品の行を取り除き、更新後のカートを返す。
	// 行が存在しない場合もエラーにしない。ユーザー不在の場合はnilを返す。
	RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error)

	// CompletePurchase は購入を確定する。カートのスナップショットをbuildに渡し、
	// 返された購入記録を履歴に追記したうえで、購入記録に含まれた商品の行のみを
	// カートから取り除く。スナップショットから確定までを1つの排他区間で行うため、
	// 並行して追加されたカート行が購入されないまま消えることはない。
	// buildがエラーを返した場合は何も変更しない。
	// buildの中から同じリポジトリのメソッドを呼んではならない。
	CompletePurchase(ctx context.Context, username string, build func(cart []model.CartItem) (*model.Purchase, error)) (*model.Purchase, error)

	// UpdatePassword はユーザーのパスワードハッシュを更新する。
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// EnsureAdmin は管理者ユーザーが存在しない場合に作成する。
	// passwordHashにはbcryptハッシュを渡す。
	EnsureAdmin(ctx context.Context, passwordHash string) error
}

// ProductRepository は商品カタログの永続化インターフェース。
type ProductRepository interface {
	// List は全商品を返す。
	List(ctx context.Context) ([]model.Product, error)

	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// Search は商品名または説明に部分一致（大文字小文字無視）する商品を返す。
	Search(ctx context.Context, query string) ([]model.Product, error)

	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// Delete は指定IDの商品を削除する。存在しないIDでもエラーにしない。
	// 既存ユーザーのカートに残る参照は削除しない（ダングリング参照を許容する仕様）。
	Delete(ctx context.Context, id string) error

	// SeedDefaults はカタログが空の場合にデフォルト商品を投入する。
	SeedDefaults(ctx context.Context) error
}

// ActivityRepository はアクティビティログの永続化インターフェース。
// ログは追記専用。
type ActivityRepository interface {
	// Append はアクティビティを追記する。
	Append(ctx context.Context, activity model.Activity) error

	// List はアクティビティ一覧を返す。
	// usernamePrefixが空でない場合、ユーザー名前方一致（大文字小文字無視）で絞り込む。
	List(ctx context.Context, usernamePrefix string) ([]model.Activity, error)
}

// SessionRepository はセッションデータの保持インターフェース。
type SessionRepository interface {
	// Create はセッションを保存する。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンのセッションを取得する。
	// 期限切れの場合はエントリを削除してnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// DeleteByToken は指定トークンのセッションを削除する（冪等）。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUsername は指定ユーザーの全セッションを削除する。
	DeleteByUsername(ctx context.Context, username string) error
}
