package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/cardoctor/internal/middleware"
	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
)

// CatalogServiceInterface はサービスカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	List(ctx context.Context, spec query.Spec) ([]*model.Service, error)
	Get(ctx context.Context, id string) (*model.ServiceSummary, error)
}

// ServiceHandler はサービスカタログのHTTPハンドラー。
type ServiceHandler struct {
	catalog CatalogServiceInterface
}

// NewServiceHandler はServiceHandlerを生成する。
func NewServiceHandler(catalog CatalogServiceInterface) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// ListServices は検索語と価格順の指定に従ってサービス一覧を返す。
// GET /services?search=&sort=
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	spec := query.Build(query.ParamsFromValues(r.URL.Query()))

	services, err := h.catalog.List(r.Context(), spec)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if services == nil {
		services = []*model.Service{}
	}

	writeJSON(w, http.StatusOK, services)
}

// GetService は単一サービスの固定項目を返す。存在しない場合はnullを返す。
// GET /services/{id}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	summary, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
