// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
)

// ServiceRepository は整備サービスカタログの永続化インターフェース。
type ServiceRepository interface {
	// List は検索条件に一致するサービスを並び順どおりに返す。
	List(ctx context.Context, spec query.Spec) ([]*model.Service, error)

	// FindByID は指定IDのサービスの固定項目を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ServiceSummary, error)
}

// BookingRepository は予約ドキュメントの永続化インターフェース。
// 単一ドキュメントの操作はそれぞれ原子的に行われる。
type BookingRepository interface {
	// Create は予約を作成する。IDは呼び出し側で採番済みであること。
	Create(ctx context.Context, booking *model.Booking) error

	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Booking, error)

	// ListByOwner は指定emailが所有する予約を作成順に返す。
	ListByOwner(ctx context.Context, email string) ([]*model.Booking, error)

	// ListAll は全所有者の予約を作成順に返す。
	ListAll(ctx context.Context) ([]*model.Booking, error)

	// UpdateStatus は予約のstatusのみを更新する。
	// 対象が存在しない場合はMatchedCount=0の応答を返し、エラーにはしない。
	UpdateStatus(ctx context.Context, id, status string) (*model.UpdateResult, error)

	// Delete は予約を削除する。対象が存在しない場合はDeletedCount=0の応答を返す。
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

// Pinger はストアの疎通確認インターフェース。
type Pinger interface {
	Ping(ctx context.Context) error
}
