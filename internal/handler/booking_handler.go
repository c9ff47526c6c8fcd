package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cardoctor/internal/booking"
	"github.com/hitoshi/cardoctor/internal/middleware"
	"github.com/hitoshi/cardoctor/internal/model"
)

// BookingServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type BookingServiceInterface interface {
	Create(ctx context.Context, caller model.Identity, in model.BookingInput) (*model.InsertResult, error)
	List(ctx context.Context, opts booking.ListOptions) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, caller model.Identity, id, status string) (*model.UpdateResult, error)
	Delete(ctx context.Context, caller model.Identity, id string) (*model.DeleteResult, error)
}

// BookingHandler は予約管理のHTTPハンドラー。
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを生成する。
func NewBookingHandler(service BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: service}
}

// statusRequest は予約ステータス更新リクエストのボディ。
type statusRequest struct {
	Status *string `json:"status"`
}

// ListBookings は予約一覧を返す。
// emailが指定された場合はその所有者の予約のみを返す。所有者の照合はミドルウェアで行う。
// GET /bookings?email=
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	bookings, err := h.service.List(r.Context(), booking.ListOptions{
		Owner:    values.Get("email"),
		HasOwner: values.Has("email"),
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	writeJSON(w, http.StatusOK, bookings)
}

// CreateBooking は予約を作成する。
// POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in model.BookingInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		middleware.WriteError(w, r, model.NewBadRequestError(err.Error()))
		return
	}

	result, err := h.service.Create(r.Context(), callerFrom(r), in)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UpdateBookingStatus は予約のステータスのみを更新する。
// PATCH /bookings/{id}
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, r, model.NewBadRequestError("body must be a JSON object"))
		return
	}
	if req.Status == nil {
		middleware.WriteError(w, r, model.NewBadRequestError("status is required"))
		return
	}

	result, err := h.service.UpdateStatus(r.Context(), callerFrom(r), chi.URLParam(r, "id"), *req.Status)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DeleteBooking は予約を削除する。
// DELETE /bookings/{id}
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// callerFrom はセッションミドルウェアが注入した識別情報を返す。
// 所有者判定が無効な構成ではゼロ値となる。
func callerFrom(r *http.Request) model.Identity {
	identity, _ := middleware.IdentityFromContext(r.Context())
	return identity
}
