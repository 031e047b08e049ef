package repository

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/hitoshi/petstore/internal/model"
)

// FileActivityRepo はJSONファイルを使用したアクティビティログリポジトリ。
// ログは追記専用で、既存レコードの更新・削除は提供しない。
type FileActivityRepo struct {
	path       string
	mu         sync.RWMutex
	activities []model.Activity
}

// NewFileActivityRepo は指定パスのファイルを読み込んでFileActivityRepoを生成する。
func NewFileActivityRepo(path string) (*FileActivityRepo, error) {
	activities, err := loadJSONFile[model.Activity](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	return &FileActivityRepo{path: path, activities: activities}, nil
}

// Append はアクティビティを追記する。
func (r *FileActivityRepo) Append(ctx context.Context, activity model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity.Details = maps.Clone(activity.Details)
	r.activities = append(r.activities, activity)
	return saveJSONFile(r.path, r.activities)
}

// List はアクティビティ一覧を返す。
// usernamePrefixが空でない場合、ユーザー名前方一致（大文字小文字無視）で絞り込む。
func (r *FileActivityRepo) List(ctx context.Context, usernamePrefix string) ([]model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := strings.ToLower(usernamePrefix)
	var out []model.Activity
	for _, a := range r.activities {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(a.Username), prefix) {
			continue
		}
		a.Details = maps.Clone(a.Details)
		out = append(out, a)
	}
	return out, nil
}

// compile-time interface check
var _ ActivityRepository = (*FileActivityRepo)(nil)
