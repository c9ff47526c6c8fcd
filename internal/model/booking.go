// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Booking はユーザーが作成した整備予約を表す。
// Email が所有者を示し、所有者判定は完全一致で行う。
type Booking struct {
	ID        string
	Email     string
	Status    string
	Service   string
	ServiceID string
	// Fields は上記以外の呼び出し元指定フィールドをそのまま保持する。
	Fields    map[string]json.RawMessage
	CreatedAt time.Time
}

// MarshalJSON はBookingを元のドキュメント形式（フラットなJSONオブジェクト）に変換する。
func (b Booking) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(b.Fields)+5)
	for k, v := range b.Fields {
		doc[k] = v
	}
	doc["_id"] = b.ID
	doc["email"] = b.Email
	doc["status"] = b.Status
	if b.Service != "" {
		doc["service"] = b.Service
	}
	if b.ServiceID != "" {
		doc["service_id"] = b.ServiceID
	}
	return json.Marshal(doc)
}

// BookingInput は予約作成リクエストのボディ。
// 既知のフィールドは型付きで取り出し、それ以外はFieldsに残す。
type BookingInput struct {
	Email     string
	Status    string
	Service   string
	ServiceID string
	Fields    map[string]json.RawMessage
}

// UnmarshalJSON はJSONオブジェクトをBookingInputに変換する。
// オブジェクト以外のJSON、または既知フィールドが文字列でない場合はエラーを返す。
// "_id" はストア側で採番するため破棄する。
func (in *BookingInput) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("booking payload must be a JSON object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("booking payload must be a JSON object")
	}
	delete(raw, "_id")

	known := []struct {
		key string
		dst *string
	}{
		{"email", &in.Email},
		{"status", &in.Status},
		{"service", &in.Service},
		{"service_id", &in.ServiceID},
	}
	for _, k := range known {
		v, ok := raw[k.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, k.dst); err != nil {
			return fmt.Errorf("field %q must be a string: %w", k.key, err)
		}
		delete(raw, k.key)
	}

	in.Fields = raw
	return nil
}

// ToBooking は採番済みIDと作成日時からBookingを生成する。
func (in BookingInput) ToBooking(id string, createdAt time.Time) *Booking {
	return &Booking{
		ID:        id,
		Email:     in.Email,
		Status:    in.Status,
		Service:   in.Service,
		ServiceID: in.ServiceID,
		Fields:    in.Fields,
		CreatedAt: createdAt,
	}
}

// InsertResult はドキュメント挿入の確認応答。
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult はドキュメント更新の確認応答。
// 対象が存在しない場合はMatchedCountが0のまま成功として返す。
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult はドキュメント削除の確認応答。
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
