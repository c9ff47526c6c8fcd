package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/cardoctor/internal/model"
	"github.com/hitoshi/cardoctor/internal/query"
)

// PostgresServiceRepo はPostgreSQLを使用したサービスカタログリポジトリ。
type PostgresServiceRepo struct {
	db *sql.DB
}

// NewPostgresServiceRepo はPostgresServiceRepoを生成する。
func NewPostgresServiceRepo(db *sql.DB) *PostgresServiceRepo {
	return &PostgresServiceRepo{db: db}
}

// List は検索条件に一致するサービスを返す。
// ORDER BY句はquery.Sortが返す固定文字列のみを使用する。
func (r *PostgresServiceRepo) List(ctx context.Context, spec query.Spec) ([]*model.Service, error) {
	stmt := `SELECT id, title, price, service_id, img, email, description, facility
		 FROM services`
	var args []any
	if !spec.Filter.MatchAll() {
		stmt += ` WHERE title ILIKE $1 ESCAPE '\'`
		args = append(args, spec.Filter.LikePattern())
	}
	stmt += ` ORDER BY ` + spec.Sort.OrderBy()

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("サービス一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	services := make([]*model.Service, 0)
	for rows.Next() {
		s := &model.Service{}
		var description sql.NullString
		var facility []byte
		if err := rows.Scan(
			&s.ID, &s.Title, &s.Price, &s.ServiceID, &s.Img, &s.Email,
			&description, &facility,
		); err != nil {
			return nil, fmt.Errorf("サービス行のスキャンに失敗しました: %w", err)
		}
		s.Description = nullStringValue(description)
		if len(facility) > 0 {
			s.Facility = json.RawMessage(facility)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("サービス一覧の読み取りに失敗しました: %w", err)
	}
	return services, nil
}

// FindByID は指定IDのサービスの固定項目を取得する。見つからない場合はnilを返す。
func (r *PostgresServiceRepo) FindByID(ctx context.Context, id string) (*model.ServiceSummary, error) {
	s := &model.ServiceSummary{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, price, service_id, img, email
		 FROM services WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Title, &s.Price, &s.ServiceID, &s.Img, &s.Email)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("サービスの取得に失敗しました: %w", err)
	}
	return s, nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
