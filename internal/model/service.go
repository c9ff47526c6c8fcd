// Package model はドメインモデルを定義する。
package model

import "encoding/json"

// Service はカタログに掲載される整備サービスを表す。
// カタログ側の所有物であり、本システムからは読み取り専用として扱う。
type Service struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Price       float64         `json:"price"`
	ServiceID   string          `json:"service_id"`
	Img         string          `json:"img"`
	Email       string          `json:"email"`
	Description string          `json:"description"`
	Facility    json.RawMessage `json:"facility,omitempty"`
}

// ServiceSummary は単一サービス取得時の固定プロジェクションを表す。
// title, price, service_id, img, email のみを返す。
type ServiceSummary struct {
	ID        string  `json:"_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	ServiceID string  `json:"service_id"`
	Img       string  `json:"img"`
	Email     string  `json:"email"`
}

// Summary はServiceから固定プロジェクションを生成する。
func (s *Service) Summary() *ServiceSummary {
	return &ServiceSummary{
		ID:        s.ID,
		Title:     s.Title,
		Price:     s.Price,
		ServiceID: s.ServiceID,
		Img:       s.Img,
		Email:     s.Email,
	}
}
