package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestServer はテスト用の通知サーバーを初期通知入りのメモリストアで構築する。
func setupTestServer(t *testing.T) (*MemoryStore, http.Handler) {
	t.Helper()

	store, err := NewMemoryStore(testSeed())
	if err != nil {
		t.Fatalf("ストアの作成に失敗: %v", err)
	}

	logger, _ := logtest.NewNullLogger()
	s := NewServer(store, ServerConfig{Port: "0", AllowedOrigins: []string{"*"}}, logger)
	return store, s.Handler()
}

// doRequest はテスト用のHTTPリクエストを実行し、レスポンスを返すヘルパー関数。
func doRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseJSON はレスポンスボディをmapにデコードするヘルパー関数。
func parseJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// parseNotifications はレスポンスボディを通知のスライスにデコードするヘルパー関数。
func parseNotifications(t *testing.T, w *httptest.ResponseRecorder) []Notification {
	t.Helper()
	var result []Notification
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("JSON配列のデコードに失敗: %v, body=%s", err, w.Body.String())
	}
	return result
}

// readFlags は一覧APIの結果からID→既読状態の対応を作る。
func readFlags(t *testing.T, router http.Handler) map[string]bool {
	t.Helper()
	w := doRequest(router, http.MethodGet, "/api/notifications")
	if w.Code != http.StatusOK {
		t.Fatalf("一覧取得のステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	flags := make(map[string]bool)
	for _, n := range parseNotifications(t, w) {
		flags[n.ID] = n.Read
	}
	return flags
}

// TestHandleRoot はルートエンドポイントの正常動作を検証する。
func TestHandleRoot(t *testing.T) {
	t.Parallel()

	_, router := setupTestServer(t)

	w := doRequest(router, http.MethodGet, "/")

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	result := parseJSON(t, w)
	if result["message"] != "Backend is running" {
		t.Errorf("message: got %v, want Backend is running", result["message"])
	}
}

// TestHealthCheck はヘルスチェックエンドポイントの正常動作を検証する。
func TestHealthCheck(t *testing.T) {
	t.Parallel()

	_, router := setupTestServer(t)

	w := doRequest(router, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
	}
	result := parseJSON(t, w)
	if result["status"] != "ok" {
		t.Errorf("status: got %v, want ok", result["status"])
	}
	if result["service"] != "notification" {
		t.Errorf("service: got %v, want notification", result["service"])
	}
}

// TestHandleListNotifications は通知一覧取得ハンドラのテスト。
func TestHandleListNotifications(t *testing.T) {
	t.Parallel()

	t.Run("初期通知が挿入順で返される", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodGet, "/api/notifications")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := parseNotifications(t, w)
		if len(result) != 2 {
			t.Fatalf("配列の長さ: got %d, want 2", len(result))
		}
		if result[0].ID != "1" || result[1].ID != "2" {
			t.Errorf("順序: got [%s %s], want [1 2]", result[0].ID, result[1].ID)
		}
	})

	t.Run("通知のフィールドが正しいJSON名で返される", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodGet, "/api/notifications")

		var raw []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
			t.Fatalf("JSON配列のデコードに失敗: %v", err)
		}
		notif := raw[0]
		want := map[string]any{
			"id":      "1",
			"type":    "reminder",
			"title":   "Appointment Reminder",
			"message": "Your appointment is in 30 minutes",
			"time":    "30 mins ago",
			"read":    false,
		}
		if len(notif) != len(want) {
			t.Errorf("フィールド数: got %d, want %d (%v)", len(notif), len(want), notif)
		}
		for k, v := range want {
			if notif[k] != v {
				t.Errorf("%s: got %v, want %v", k, notif[k], v)
			}
		}
	})

	t.Run("通知が無い場合は空配列を返す", func(t *testing.T) {
		t.Parallel()

		store, err := NewMemoryStore(nil)
		if err != nil {
			t.Fatalf("ストアの作成に失敗: %v", err)
		}
		logger, _ := logtest.NewNullLogger()
		router := NewServer(store, ServerConfig{AllowedOrigins: []string{"*"}}, logger).Handler()

		w := doRequest(router, http.MethodGet, "/api/notifications")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if w.Body.String() != "[]" {
			t.Errorf("body: got %s, want []", w.Body.String())
		}
	})

	t.Run("全レスポンスに全オリジン許可のCORSヘッダーが付く", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodGet, "/api/notifications")

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
		}
	})
}

// TestHandleMarkAsRead は通知既読化ハンドラのテスト。
func TestHandleMarkAsRead(t *testing.T) {
	t.Parallel()

	t.Run("存在する通知を既読にできる", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodPatch, "/api/notifications/1/read")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := parseJSON(t, w)
		if result["status"] != "success" {
			t.Errorf("status: got %v, want success", result["status"])
		}
		if result["message"] != "Notification marked as read" {
			t.Errorf("message: got %v, want Notification marked as read", result["message"])
		}

		flags := readFlags(t, router)
		if !flags["1"] || !flags["2"] {
			t.Errorf("既読状態: got %v, want 両方とも既読", flags)
		}
	})

	t.Run("既読済みの通知に対しても成功する", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		for i := 0; i < 2; i++ {
			w := doRequest(router, http.MethodPatch, "/api/notifications/2/read")
			if w.Code != http.StatusOK {
				t.Errorf("%d回目のステータスコード: got %d, want %d", i+1, w.Code, http.StatusOK)
			}
		}
	})

	t.Run("存在しない通知の場合はNotFoundとなり状態は変わらない", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodPatch, "/api/notifications/99/read")

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		result := parseJSON(t, w)
		if result["error"] != "Notification not found" {
			t.Errorf("error: got %v, want Notification not found", result["error"])
		}

		flags := readFlags(t, router)
		if flags["1"] || !flags["2"] {
			t.Errorf("既読状態が変化した: %v", flags)
		}
	})

	t.Run("PUTメソッドはルーティングされない", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodPut, "/api/notifications/1/read")

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		if readFlags(t, router)["1"] {
			t.Error("PUTで既読になった")
		}
	})

	t.Run("PATCHのプリフライトは204で応答する", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		req := httptest.NewRequest(http.MethodOptions, "/api/notifications/1/read", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
		}
		if readFlags(t, router)["1"] {
			t.Error("プリフライトで既読になった")
		}
	})
}

// TestHandleMarkAllAsRead は全通知既読化ハンドラのテスト。
func TestHandleMarkAllAsRead(t *testing.T) {
	t.Parallel()

	t.Run("全通知を既読にできる", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		w := doRequest(router, http.MethodPost, "/api/notifications/read-all")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		result := parseJSON(t, w)
		if result["status"] != "success" {
			t.Errorf("status: got %v, want success", result["status"])
		}
		if result["message"] != "All notifications marked as read" {
			t.Errorf("message: got %v, want All notifications marked as read", result["message"])
		}

		for id, read := range readFlags(t, router) {
			if !read {
				t.Errorf("通知 %s が未読のまま", id)
			}
		}
	})

	t.Run("繰り返し呼び出しても成功する", func(t *testing.T) {
		t.Parallel()
		_, router := setupTestServer(t)

		for i := 0; i < 3; i++ {
			w := doRequest(router, http.MethodPost, "/api/notifications/read-all")
			if w.Code != http.StatusOK {
				t.Errorf("%d回目のステータスコード: got %d, want %d", i+1, w.Code, http.StatusOK)
			}
		}
	})
}

// failingStore は常にエラーを返すストア。
type failingStore struct{}

func (failingStore) List(context.Context) ([]Notification, error) {
	return nil, errors.New("database is closed")
}

func (failingStore) MarkRead(context.Context, string) error {
	return errors.New("database is closed")
}

func (failingStore) MarkAllRead(context.Context) error {
	return errors.New("database is closed")
}

// TestStoreFailure はストア障害時に500が返りログに記録されることを検証する。
func TestStoreFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "一覧取得", method: http.MethodGet, path: "/api/notifications"},
		{name: "個別既読", method: http.MethodPatch, path: "/api/notifications/1/read"},
		{name: "全件既読", method: http.MethodPost, path: "/api/notifications/read-all"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, hook := logtest.NewNullLogger()
			router := NewServer(failingStore{}, ServerConfig{AllowedOrigins: []string{"*"}}, logger).Handler()

			w := doRequest(router, tt.method, tt.path)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusInternalServerError)
			}
			if result := parseJSON(t, w); result["error"] != "Internal server error" {
				t.Errorf("error: got %v, want Internal server error", result["error"])
			}

			var logged bool
			for _, e := range hook.AllEntries() {
				if e.Data["error"] != nil {
					logged = true
				}
			}
			if !logged {
				t.Error("ストアのエラーがログに記録されていない")
			}
		})
	}
}
