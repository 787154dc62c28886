package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/nao1215/notifyboard/pkg/httpclient"
)

// statusResponse は既読APIのレスポンス。
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TestEndToEnd は実際のHTTPサーバー越しに初期通知から一連の操作を検証する。
func TestEndToEnd(t *testing.T) {
	t.Parallel()

	for name, newStore := range storeFactories {
		name, newStore := name, newStore
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			logger, _ := logtest.NewNullLogger()
			seed, err := DefaultSeed()
			if err != nil {
				t.Fatalf("DefaultSeed() error = %v", err)
			}
			server := NewServer(newStore(t, seed), ServerConfig{AllowedOrigins: []string{"*"}}, logger)
			ts := httptest.NewServer(server.Handler())
			t.Cleanup(ts.Close)

			client := httpclient.New(ts.URL)
			ctx := httpclient.WithRequestID(context.Background(), "e2e-"+name)

			list := func() map[string]bool {
				t.Helper()
				var notifications []Notification
				if err := client.GetJSON(ctx, "/api/notifications", &notifications); err != nil {
					t.Fatalf("一覧取得に失敗: %v", err)
				}
				flags := make(map[string]bool, len(notifications))
				for _, n := range notifications {
					flags[n.ID] = n.Read
				}
				return flags
			}

			if got := list(); len(got) != 2 || got["1"] || !got["2"] {
				t.Fatalf("初期状態: got %v, want map[1:false 2:true]", got)
			}

			// 通知1を既読にする
			var resp statusResponse
			if err := client.PatchJSON(ctx, "/api/notifications/1/read", nil, &resp); err != nil {
				t.Fatalf("通知1の既読処理に失敗: %v", err)
			}
			if resp.Status != "success" || resp.Message != "Notification marked as read" {
				t.Errorf("レスポンス: got %+v", resp)
			}
			if got := list(); !got["1"] || !got["2"] {
				t.Errorf("通知1の既読後: got %v, want 両方とも既読", got)
			}

			// 存在しない通知は404
			err = client.PatchJSON(ctx, "/api/notifications/99/read", nil, nil)
			var statusErr *httpclient.StatusError
			if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
				t.Fatalf("通知99の既読処理: got %v, want 404", err)
			}
			if got := list(); len(got) != 2 || !got["1"] || !got["2"] {
				t.Errorf("通知99の既読処理後に状態が変化した: %v", got)
			}

			// 全件既読
			resp = statusResponse{}
			if err := client.PostJSON(ctx, "/api/notifications/read-all", nil, &resp); err != nil {
				t.Fatalf("全件既読処理に失敗: %v", err)
			}
			if resp.Message != "All notifications marked as read" {
				t.Errorf("message: got %q", resp.Message)
			}
			if got := list(); len(got) != 2 || !got["1"] || !got["2"] {
				t.Errorf("全件既読後: got %v, want 両方とも既読", got)
			}

			// ルート
			var root map[string]string
			if err := client.GetJSON(ctx, "/", &root); err != nil {
				t.Fatalf("ルートの取得に失敗: %v", err)
			}
			if root["message"] != "Backend is running" {
				t.Errorf("message: got %q, want Backend is running", root["message"])
			}
		})
	}
}
