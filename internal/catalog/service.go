// Package catalog は整備サービスカタログの参照を提供する。
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
	"github.com/hitoshi/cardoctor/internal/repository"
)

// Service はカタログ参照のサービス層。
type Service struct {
	repo repository.ServiceRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ServiceRepository) *Service {
	return &Service{repo: repo}
}

// List は検索条件に一致するサービスを並び順どおりに返す。ページングは行わない。
func (s *Service) List(ctx context.Context, spec query.Spec) ([]*model.Service, error) {
	services, err := s.repo.List(ctx, spec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list services",
			slog.String("search", spec.Filter.Search),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}
	return services, nil
}

// Get は指定IDのサービスの固定項目を返す。
// IDがUUID形式でない場合はInvalidIDエラー、存在しない場合はnilを返す（エラーではない）。
func (s *Service) Get(ctx context.Context, id string) (*model.ServiceSummary, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewInvalidIDError(id)
	}

	summary, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get service",
			slog.String("service_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}
	return summary, nil
}
