package domain

import "errors"

var (
	// ErrConfiguration 外部サービスの認証情報など必須設定の欠落。ネットワーク呼び出し前に返す
	ErrConfiguration = errors.New("configuration error")

	// ErrRemoteCall AIサービス呼び出しの失敗（通信エラー、非2xx、不正な応答）。リトライはしない
	ErrRemoteCall = errors.New("remote call error")
)
