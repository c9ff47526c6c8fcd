// Package booking は整備予約の作成・一覧・更新・削除のドメインロジックを提供する。
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/cardoctor/internal/authz"
	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/repository"
)

// 予約の変更操作名。メトリクスのラベルとして使用する。
const (
	OpCreate       = "create"
	OpUpdateStatus = "update_status"
	OpDelete       = "delete"
)

// MutationRecorder は予約の変更結果を記録するインターフェース。
type MutationRecorder interface {
	RecordBookingMutation(op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBookingMutation(string, string) {}

// ListOptions は予約一覧の取得条件。
// HasOwnerがfalseの場合は全所有者の予約を返す。
type ListOptions struct {
	Owner    string
	HasOwner bool
}

// Service は予約管理のサービス層。
type Service struct {
	repo         repository.BookingRepository
	enforceOwner bool
	recorder     MutationRecorder
	newID        func() string
	now          func() time.Time
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithOwnerChecks は変更操作で所有者判定を行うかを設定する。
func WithOwnerChecks(enabled bool) Option {
	return func(s *Service) { s.enforceOwner = enabled }
}

// WithRecorder は変更結果の記録先を設定する。
func WithRecorder(r MutationRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock は作成日時の取得関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService はServiceの新しいインスタンスを生成する。
// 既定では変更操作の所有者判定は有効。
func NewService(repo repository.BookingRepository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		enforceOwner: true,
		recorder:     nopRecorder{},
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OwnerChecksEnabled は変更操作で所有者判定を行う場合にtrueを返す。
func (s *Service) OwnerChecksEnabled() bool {
	return s.enforceOwner
}

// Create は予約ドキュメントを挿入し、採番したIDを返す。
// 所有者判定が有効な場合、ペイロードのemailは呼び出し元と一致しなければならない。
func (s *Service) Create(ctx context.Context, caller model.Identity, in model.BookingInput) (*model.InsertResult, error) {
	if s.enforceOwner {
		if err := authz.Authorize(caller, in.Email); err != nil {
			s.recorder.RecordBookingMutation(OpCreate, "forbidden")
			return nil, model.NewForbiddenError()
		}
	}

	booking := in.ToBooking(s.newID(), s.now().UTC())
	if err := s.repo.Create(ctx, booking); err != nil {
		s.recorder.RecordBookingMutation(OpCreate, "error")
		slog.ErrorContext(ctx, "failed to create booking",
			slog.String("email", booking.Email),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}

	s.recorder.RecordBookingMutation(OpCreate, "ok")
	slog.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("email", booking.Email),
	)
	return &model.InsertResult{Acknowledged: true, InsertedID: booking.ID}, nil
}

// List は予約一覧を返す。
// 所有者が指定された場合はその所有者の予約のみ、指定がない場合は全件を返す。
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*model.Booking, error) {
	var (
		bookings []*model.Booking
		err      error
	)
	if opts.HasOwner {
		bookings, err = s.repo.ListByOwner(ctx, opts.Owner)
	} else {
		bookings, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to list bookings",
			slog.String("owner", opts.Owner),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}
	return bookings, nil
}

// UpdateStatus は予約のstatusのみを更新する。
// 存在しないIDの場合はMatchedCount=0の応答を返す。
func (s *Service) UpdateStatus(ctx context.Context, caller model.Identity, id, status string) (*model.UpdateResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewInvalidIDError(id)
	}

	found, err := s.checkOwner(ctx, caller, id)
	if err != nil {
		s.recordFailure(OpUpdateStatus, err)
		return nil, err
	}
	if !found {
		s.recorder.RecordBookingMutation(OpUpdateStatus, "noop")
		return &model.UpdateResult{Acknowledged: true}, nil
	}

	result, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		s.recorder.RecordBookingMutation(OpUpdateStatus, "error")
		slog.ErrorContext(ctx, "failed to update booking status",
			slog.String("booking_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}

	s.recorder.RecordBookingMutation(OpUpdateStatus, outcome(result.MatchedCount))
	slog.InfoContext(ctx, "booking status updated",
		slog.String("booking_id", id),
		slog.String("status", status),
		slog.Int64("matched", result.MatchedCount),
		slog.Int64("modified", result.ModifiedCount),
	)
	return result, nil
}

// Delete は予約を削除する。存在しないIDの場合はDeletedCount=0の応答を返す。
func (s *Service) Delete(ctx context.Context, caller model.Identity, id string) (*model.DeleteResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewInvalidIDError(id)
	}

	found, err := s.checkOwner(ctx, caller, id)
	if err != nil {
		s.recordFailure(OpDelete, err)
		return nil, err
	}
	if !found {
		s.recorder.RecordBookingMutation(OpDelete, "noop")
		return &model.DeleteResult{Acknowledged: true}, nil
	}

	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.recorder.RecordBookingMutation(OpDelete, "error")
		slog.ErrorContext(ctx, "failed to delete booking",
			slog.String("booking_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreError(err)
	}

	s.recorder.RecordBookingMutation(OpDelete, outcome(result.DeletedCount))
	slog.InfoContext(ctx, "booking deleted",
		slog.String("booking_id", id),
		slog.Int64("deleted", result.DeletedCount),
	)
	return result, nil
}

// checkOwner は所有者判定が有効な場合に保存済み予約の所有者を確認する。
// 判定が無効な場合は常にfound=trueを返し、存在確認はストアに委ねる。
func (s *Service) checkOwner(ctx context.Context, caller model.Identity, id string) (bool, error) {
	if !s.enforceOwner {
		return true, nil
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load booking for owner check",
			slog.String("booking_id", id),
			slog.String("error", err.Error()),
		)
		return false, model.NewStoreError(err)
	}
	if existing == nil {
		return false, nil
	}
	if err := authz.Authorize(caller, existing.Email); err != nil {
		slog.WarnContext(ctx, "booking owner mismatch",
			slog.String("booking_id", id),
			slog.String("email", caller.Email),
		)
		return false, model.NewForbiddenError()
	}
	return true, nil
}

func (s *Service) recordFailure(op string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeForbidden {
		s.recorder.RecordBookingMutation(op, "forbidden")
		return
	}
	s.recorder.RecordBookingMutation(op, "error")
}

func outcome(n int64) string {
	if n == 0 {
		return "noop"
	}
	return "ok"
}
