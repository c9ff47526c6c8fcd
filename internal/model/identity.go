// Package model はドメインモデルを定義する。
package model

// Identity はセッショントークンに埋め込まれる呼び出し元の識別情報。
// 独立した永続化は持たず、トークン内とリクエストコンテキスト内にのみ存在する。
type Identity struct {
	Email string `json:"email"`
}
