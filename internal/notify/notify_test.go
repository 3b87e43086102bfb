// ABOUTME: Tests for notification sinks
// ABOUTME: Covers terminal output, fan-out, and Telegram delivery against a fake Bot API

package notify

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	messages []string
}

func (r *recorder) NotifyError(message string) {
	r.messages = append(r.messages, message)
}

func TestTerminalWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.NotifyError("위치 권한이 거부되었습니다.")

	out := buf.String()
	if !strings.Contains(out, "위치 권한이 거부되었습니다.") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("output should end with newline: %q", out)
	}
}

func TestNewTerminalDefaultsToStderr(t *testing.T) {
	term := NewTerminal(nil)
	if term.w == nil {
		t.Fatal("expected a default writer")
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, nil, b}

	m.NotifyError("one")
	m.NotifyError("two")

	for i, r := range []*recorder{a, b} {
		if len(r.messages) != 2 || r.messages[0] != "one" || r.messages[1] != "two" {
			t.Errorf("sink %d got %v", i, r.messages)
		}
	}
}

// fakeBotAPI answers getMe and records sendMessage calls.
type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"hazardwatch","username":"hazardwatch_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":500,"description":"boom"}`)
			return
		}
		f.sent = append(f.sent, r.FormValue("text"))
		resp := map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": len(f.sent),
				"date":       time.Now().Unix(),
				"chat":       map[string]any{"id": 42, "type": "private"},
				"text":       r.FormValue("text"),
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeBotAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestTelegram(t *testing.T, api *fakeBotAPI) *Telegram {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	t.Cleanup(srv.Close)

	tg, err := NewTelegram(TelegramOptions{
		BotToken:       "test-token",
		ChatID:         "42",
		Endpoint:       srv.URL + "/bot%s/%s",
		MaxRetries:     3,
		RetryDelayBase: time.Millisecond,
		Logger:         log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewTelegram: %v", err)
	}
	return tg
}

func TestTelegramNotifyErrorDelivers(t *testing.T) {
	api := &fakeBotAPI{}
	tg := newTestTelegram(t, api)

	tg.NotifyError("위치 정보를 사용할 수 없습니다.")
	tg.Flush()

	got := api.messages()
	if len(got) != 1 || got[0] != "위치 정보를 사용할 수 없습니다." {
		t.Errorf("sent = %v", got)
	}
}

func TestTelegramSendRetries(t *testing.T) {
	api := &fakeBotAPI{failures: 2}
	tg := newTestTelegram(t, api)

	if err := tg.Send("retry me"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := api.messages(); len(got) != 1 {
		t.Errorf("expected one delivered message, got %v", got)
	}
}

func TestTelegramSendGivesUp(t *testing.T) {
	api := &fakeBotAPI{failures: 10}
	tg := newTestTelegram(t, api)

	err := tg.Send("never")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewTelegramRejectsBadChatID(t *testing.T) {
	_, err := NewTelegram(TelegramOptions{BotToken: "x", ChatID: "not-a-number"})
	if err == nil {
		t.Fatal("expected error for non-numeric chat ID")
	}
}
