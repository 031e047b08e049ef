package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hitoshi/petstore/internal/model"
)

// adminUsername は管理者アカウントのユーザー名。
// 管理者判定はこのユーザー名との一致のみで行う（ロール属性は持たない仕様）。
const adminUsername = "admin"

// FileUserRepo はJSONファイルを使用したユーザーリポジトリ。
// コレクション全体をメモリに保持し、変更のたびにファイルへ全量書き出す。
// すべての読み取り・変更・書き込みはmuで直列化される。
type FileUserRepo struct {
	path  string
	mu    sync.RWMutex
	users []model.User
}

// NewFileUserRepo は指定パスのファイルを読み込んでFileUserRepoを生成する。
// ファイルが存在しない場合は空のコレクションから開始する。
func NewFileUserRepo(path string) (*FileUserRepo, error) {
	users, err := loadJSONFile[model.User](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return &FileUserRepo{path: path, users: users}, nil
}

// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
func (r *FileUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].Username == username {
			u := cloneUser(r.users[i])
			return &u, nil
		}
	}
	return nil, nil
}

// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
// 重複チェックと追記は同一排他区間で行う。
func (r *FileUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Username == user.Username {
			return ErrDuplicateUsername
		}
	}

	r.users = append(r.users, cloneUser(*user))
	return r.save()
}

// AddToCart はカートに商品を追加し、更新後のカートを返す。
// 既存行がある場合は数量を加算する。ユーザー不在の場合はnilを返す。
func (r *FileUserRepo) AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(username)
	if u == nil {
		return nil, nil
	}

	found := false
	for i := range u.Cart {
		if u.Cart[i].ProductID == productID {
			u.Cart[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		u.Cart = append(u.Cart, model.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := r.save(); err != nil {
		return nil, err
	}
	return slices.Clone(u.Cart), nil
}

// RemoveFromCart はカートから指定商品の行を取り除き、更新後のカートを返す。
// 行が存在しない場合もエラーにしない。ユーザー不在の場合はnilを返す。
func (r *FileUserRepo) RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(username)
	if u == nil {
		return nil, nil
	}

	u.Cart = slices.DeleteFunc(u.Cart, func(item model.CartItem) bool {
		return item.ProductID == productID
	})

	if err := r.save(); err != nil {
		return nil, err
	}
	return slices.Clone(u.Cart), nil
}

// CompletePurchase は購入を確定する。スナップショット・履歴追記・カートからの
// 購入済み行の除去を1つの排他区間で行う。buildがエラーを返した場合は何も変更しない。
// 購入記録に含まれなかった行（並行追加された行や削除済み商品の行）はカートに残る。
func (r *FileUserRepo) CompletePurchase(ctx context.Context, username string, build func(cart []model.CartItem) (*model.Purchase, error)) (*model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(username)
	if u == nil {
		return nil, fmt.Errorf("user not found: %s", username)
	}

	purchase, err := build(slices.Clone(u.Cart))
	if err != nil {
		return nil, err
	}

	purchased := make(map[string]bool, len(purchase.Items))
	for _, item := range purchase.Items {
		purchased[item.ProductID] = true
	}

	prevCart, prevPurchases := u.Cart, u.Purchases
	u.Purchases = append(slices.Clone(u.Purchases), *purchase)
	u.Cart = slices.DeleteFunc(slices.Clone(u.Cart), func(item model.CartItem) bool {
		return purchased[item.ProductID]
	})

	if err := r.save(); err != nil {
		// 書き出しに失敗した場合はメモリ上の状態も元に戻す
		u.Cart, u.Purchases = prevCart, prevPurchases
		return nil, err
	}
	return purchase, nil
}

// UpdatePassword はユーザーのパスワードハッシュを更新する。
func (r *FileUserRepo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(username)
	if u == nil {
		return fmt.Errorf("user not found: %s", username)
	}

	u.Password = passwordHash
	return r.save()
}

// EnsureAdmin は管理者ユーザーが存在しない場合に作成する。
func (r *FileUserRepo) EnsureAdmin(ctx context.Context, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Username == adminUsername {
			return nil
		}
	}

	r.users = append(r.users, model.User{
		ID:        "admin-001",
		Username:  adminUsername,
		Password:  passwordHash,
		Email:     "admin@petstore.com",
		Cart:      []model.CartItem{},
		Purchases: []model.Purchase{},
		CreatedAt: time.Now().UTC(),
	})
	return r.save()
}

// findLocked はユーザー名でコレクション内の実体を返す。muを保持した状態で呼ぶこと。
func (r *FileUserRepo) findLocked(username string) *model.User {
	for i := range r.users {
		if r.users[i].Username == username {
			return &r.users[i]
		}
	}
	return nil
}

// save はコレクション全体をファイルへ書き出す。muを保持した状態で呼ぶこと。
func (r *FileUserRepo) save() error {
	return saveJSONFile(r.path, r.users)
}

// cloneUser は呼び出し元が内部スライスを共有しないようユーザーを複製する。
func cloneUser(u model.User) model.User {
	u.Cart = slices.Clone(u.Cart)
	purchases := make([]model.Purchase, len(u.Purchases))
	for i, p := range u.Purchases {
		p.Items = slices.Clone(p.Items)
		purchases[i] = p
	}
	u.Purchases = purchases
	return u
}

// compile-time interface check
var _ UserRepository = (*FileUserRepo)(nil)
