package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/hitoshi/cardoctor/internal/model"
)

// MemoryBookingRepo はメモリ上の予約リポジトリ。
// 挿入順を保持し、一覧は作成順で返す。
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
	order    []string
}

// NewMemoryBookingRepo はMemoryBookingRepoを生成する。
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings: make(map[string]model.Booking),
	}
}

// Create は予約を作成する。同一IDが既に存在する場合はエラーを返す。
func (r *MemoryBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("予約IDが重複しています: %s", booking.ID)
	}
	r.bookings[booking.ID] = cloneBooking(*booking)
	r.order = append(r.order, booking.ID)
	return nil
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *MemoryBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	out := cloneBooking(b)
	return &out, nil
}

// ListByOwner は指定emailが所有する予約を作成順に返す。
func (r *MemoryBookingRepo) ListByOwner(ctx context.Context, email string) ([]*model.Booking, error) {
	return r.list(ctx, func(b model.Booking) bool { return b.Email == email })
}

// ListAll は全所有者の予約を作成順に返す。
func (r *MemoryBookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx, func(model.Booking) bool { return true })
}

func (r *MemoryBookingRepo) list(ctx context.Context, keep func(model.Booking) bool) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Booking, 0)
	for _, id := range r.order {
		b := r.bookings[id]
		if !keep(b) {
			continue
		}
		c := cloneBooking(b)
		out = append(out, &c)
	}
	return out, nil
}

// UpdateStatus は予約のstatusのみを更新する。
func (r *MemoryBookingRepo) UpdateStatus(ctx context.Context, id, status string) (*model.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := &model.UpdateResult{Acknowledged: true}
	b, ok := r.bookings[id]
	if !ok {
		return result, nil
	}
	result.MatchedCount = 1
	if b.Status != status {
		b.Status = status
		r.bookings[id] = b
		result.ModifiedCount = 1
	}
	return result, nil
}

// Delete は予約を削除する。
func (r *MemoryBookingRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := &model.DeleteResult{Acknowledged: true}
	if _, ok := r.bookings[id]; !ok {
		return result, nil
	}
	delete(r.bookings, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	result.DeletedCount = 1
	return result, nil
}

// cloneBooking は呼び出し元とFieldsのマップを共有しないコピーを返す。
func cloneBooking(b model.Booking) model.Booking {
	if b.Fields != nil {
		fields := make(map[string]json.RawMessage, len(b.Fields))
		maps.Copy(fields, b.Fields)
		b.Fields = fields
	}
	return b
}
