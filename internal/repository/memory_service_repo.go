package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
)

// MemoryServiceRepo はメモリ上のサービスカタログリポジトリ。
// ローカル開発とエンドツーエンドテストで使用する。
type MemoryServiceRepo struct {
	mu       sync.RWMutex
	services map[string]model.Service
}

// NewMemoryServiceRepo は指定サービスで初期化したMemoryServiceRepoを生成する。
func NewMemoryServiceRepo(services ...model.Service) *MemoryServiceRepo {
	repo := &MemoryServiceRepo{
		services: make(map[string]model.Service, len(services)),
	}
	for _, s := range services {
		repo.services[s.ID] = s
	}
	return repo
}

// List は検索条件に一致するサービスを並び順どおりに返す。
func (r *MemoryServiceRepo) List(ctx context.Context, spec query.Spec) ([]*model.Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*model.Service, 0, len(r.services))
	for _, s := range r.services {
		if !spec.Filter.Matches(s.Title) {
			continue
		}
		s := s
		out = append(out, &s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return spec.Sort.Less(out[i].Price, out[i].ID, out[j].Price, out[j].ID)
	})
	return out, nil
}

// FindByID は指定IDのサービスの固定項目を取得する。見つからない場合はnilを返す。
func (r *MemoryServiceRepo) FindByID(ctx context.Context, id string) (*model.ServiceSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, nil
	}
	return s.Summary(), nil
}

// Ping はメモリストアの疎通確認。常に成功する。
func (r *MemoryServiceRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
