// Package query は一覧取得用の検索条件（絞り込みと並び順）を組み立てる。
package query

import (
	"net/url"
	"strings"
)

// Direction は価格の並び順を表す。
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Params はクエリ文字列から取り出した生の検索パラメータ。
type Params struct {
	Search string
	Sort   string
}

// ParamsFromValues はURLクエリからParamsを生成する。
func ParamsFromValues(values url.Values) Params {
	return Params{
		Search: values.Get("search"),
		Sort:   values.Get("sort"),
	}
}

// Spec は一覧取得の絞り込み条件と並び順。
type Spec struct {
	Filter Filter
	Sort   Sort
}

// Build はParamsからSpecを組み立てる。
// sortが"asc"の場合のみ昇順とし、それ以外（未指定を含む）は降順とする。
func Build(p Params) Spec {
	dir := Descending
	if p.Sort == string(Ascending) {
		dir = Ascending
	}
	return Spec{
		Filter: Filter{Search: p.Search},
		Sort:   Sort{Direction: dir},
	}
}

// Filter はタイトルの部分一致条件。
type Filter struct {
	Search string
}

// MatchAll は絞り込みを行わない場合にtrueを返す。
func (f Filter) MatchAll() bool {
	return f.Search == ""
}

// Matches はタイトルが検索文字列を大文字小文字を区別せずに含むかを判定する。
func (f Filter) Matches(title string) bool {
	if f.MatchAll() {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(f.Search))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern はILIKE用のパターンを返す。
// 検索文字列中のワイルドカードはエスケープし、常にリテラルの部分一致となる。
func (f Filter) LikePattern() string {
	return "%" + likeEscaper.Replace(f.Search) + "%"
}

// Sort は価格による並び順。
type Sort struct {
	Direction Direction
}

// Less はaがbより前に並ぶべき場合にtrueを返す。価格が同じ場合はIDの昇順とする。
func (s Sort) Less(aPrice float64, aID string, bPrice float64, bID string) bool {
	if aPrice != bPrice {
		if s.Direction == Ascending {
			return aPrice < bPrice
		}
		return aPrice > bPrice
	}
	return aID < bID
}

// OrderBy はSQLのORDER BY句に埋め込む固定文字列を返す。
func (s Sort) OrderBy() string {
	if s.Direction == Ascending {
		return "price ASC, id ASC"
	}
	return "price DESC, id ASC"
}
