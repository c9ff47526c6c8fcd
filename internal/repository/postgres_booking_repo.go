package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/cardoctor/internal/model"
)

// PostgresBookingRepo はPostgreSQLを使用した予約リポジトリ。
// 既知項目以外の呼び出し元指定フィールドはJSONBのdata列に保持する。
type PostgresBookingRepo struct {
	db *sql.DB
}

// NewPostgresBookingRepo はPostgresBookingRepoを生成する。
func NewPostgresBookingRepo(db *sql.DB) *PostgresBookingRepo {
	return &PostgresBookingRepo{db: db}
}

const bookingColumns = `id, email, status, service, service_id, data, created_at`

// Create は予約を作成する。
func (r *PostgresBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	data, err := marshalFields(booking.Fields)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, email, status, service, service_id, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		booking.ID, booking.Email, booking.Status,
		nullString(booking.Service), nullString(booking.ServiceID),
		data, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("予約の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	)
	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("予約の取得に失敗しました: %w", err)
	}
	return booking, nil
}

// ListByOwner は指定emailが所有する予約を作成順に返す。
func (r *PostgresBookingRepo) ListByOwner(ctx context.Context, email string) ([]*model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE email = $1 ORDER BY created_at, id`,
		email,
	)
}

// ListAll は全所有者の予約を作成順に返す。
func (r *PostgresBookingRepo) ListAll(ctx context.Context) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
}

func (r *PostgresBookingRepo) list(ctx context.Context, stmt string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("予約行のスキャンに失敗しました: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("予約一覧の読み取りに失敗しました: %w", err)
	}
	return bookings, nil
}

// UpdateStatus は予約のstatusのみを単一文で更新する。
// 一致件数と、値が実際に変わった件数をそれぞれ返す。
func (r *PostgresBookingRepo) UpdateStatus(ctx context.Context, id, status string) (*model.UpdateResult, error) {
	result := &model.UpdateResult{Acknowledged: true}
	err := r.db.QueryRowContext(ctx,
		`WITH target AS (
		    SELECT id FROM bookings WHERE id = $1 FOR UPDATE
		 ), changed AS (
		    UPDATE bookings b SET status = $2
		    FROM target t
		    WHERE b.id = t.id AND b.status IS DISTINCT FROM $2
		    RETURNING b.id
		 )
		 SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM changed)`,
		id, status,
	).Scan(&result.MatchedCount, &result.ModifiedCount)
	if err != nil {
		return nil, fmt.Errorf("予約ステータスの更新に失敗しました: %w", err)
	}
	return result, nil
}

// Delete は予約を削除する。
func (r *PostgresBookingRepo) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("予約の削除に失敗しました: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	b := &model.Booking{}
	var service, serviceID sql.NullString
	var data []byte
	if err := row.Scan(&b.ID, &b.Email, &b.Status, &service, &serviceID, &data, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Service = nullStringValue(service)
	b.ServiceID = nullStringValue(serviceID)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &b.Fields); err != nil {
			return nil, fmt.Errorf("予約データのデコードに失敗しました: %w", err)
		}
	}
	return b, nil
}

// marshalFields は追加フィールドをJSONBに格納するバイト列に変換する。
func marshalFields(fields map[string]json.RawMessage) ([]byte, error) {
	if len(fields) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("予約データのエンコードに失敗しました: %w", err)
	}
	return data, nil
}
