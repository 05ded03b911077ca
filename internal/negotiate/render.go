package negotiate

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Event はScript表現で通知するイベント。定義済みの値のみ使用できる。
type Event struct {
	script string
}

// NotesChanged はメモ一覧の変更を通知する。
// ページはこのイベントを受けてData表現を再取得する。
var NotesChanged = Event{
	script: `document.dispatchEvent(new CustomEvent("notes:changed"));` + "\n",
}

// setCommonHeaders は全ての表現に共通するヘッダーを設定する。
func setCommonHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Add("Vary", RequestedWithHeader)
	h.Set("Cache-Control", "no-store")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cross-Origin-Resource-Policy", "same-origin")
}

// WriteData はvalueをkeyの下に置いたJSONオブジェクトとして書き込む。
// 最上位は常にオブジェクトのため、スクリプトとしては実行できない。
func WriteData(w http.ResponseWriter, status int, key string, value any) {
	setCommonHeaders(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]any{key: value}); err != nil {
		slog.Error("failed to encode data response", slog.String("error", err.Error()))
	}
}

// WriteScript は定義済みイベントを発火するだけのJavaScriptを書き込む。
// ユーザーのデータは受け取らない。
func WriteScript(w http.ResponseWriter, status int, event Event) {
	setCommonHeaders(w)
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write([]byte(event.script)); err != nil {
		slog.Error("failed to write script response", slog.String("error", err.Error()))
	}
}
