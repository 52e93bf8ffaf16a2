package dashscope

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

// fakeService imitates the customization HTTP API and the realtime websocket.
type fakeService struct {
	t *testing.T

	mu        sync.Mutex
	requests  []map[string]any
	sessions  []map[string]any
	texts     []string
	models    []string
	pcm       []byte
	httpError int
}

func newFakeService(t *testing.T) (*fakeService, *httptest.Server) {
	fs := &fakeService{t: t, pcm: []byte{0, 0, 0xff, 0x3f, 0x01, 0xc0, 0, 0}}
	mux := http.NewServeMux()
	mux.HandleFunc(customizationPath, fs.handleCustomization)
	mux.HandleFunc(multimodalGenPath, fs.handleASR)
	mux.HandleFunc("/realtime", fs.handleRealtime)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"
}

func (fs *fakeService) handleCustomization(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":"InvalidApiKey","message":"bad key"}`)
		return
	}
	if status := fs.errorStatus(); status != 0 {
		w.WriteHeader(status)
		io.WriteString(w, `{"code":"Err","message":"nope"}`)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fs.t.Errorf("decode body: %v", err)
		return
	}
	fs.mu.Lock()
	fs.requests = append(fs.requests, body)
	fs.mu.Unlock()

	input := body["input"].(map[string]any)
	w.Header().Set("Content-Type", "application/json")
	switch input["action"] {
	case "create":
		if body["model"] == ModelDesign {
			io.WriteString(w, `{"request_id":"r1","output":{"voice":"qwen-tts-vd-designed","target_model":"`+ModelVDRealtime+`"}}`)
			return
		}
		io.WriteString(w, `{"request_id":"r1","output":{"voice":"qwen-tts-vc-cloned","target_model":"`+ModelVCRealtime+`"}}`)
	case "list":
		io.WriteString(w, `{"output":{"voice_list":[{"voice":"qwen-tts-vc-a","target_model":"m","language":"ko","gmt_create":"2026-01-01"}]}}`)
	case "delete":
		io.WriteString(w, `{"output":{}}`)
	}
}

func (fs *fakeService) handleASR(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, `{"output":{"choices":[{"message":{"content":[{"text":"hello reference"}]}}]}}`)
}

func (fs *fakeService) handleRealtime(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		fs.t.Errorf("accept: %v", err)
		return
	}
	defer conn.CloseNow()
	ctx := context.Background()

	fs.mu.Lock()
	fs.models = append(fs.models, r.URL.Query().Get("model"))
	fs.mu.Unlock()

	send := func(v any) {
		data, _ := json.Marshal(v)
		_ = conn.Write(ctx, websocket.MessageText, data)
	}
	send(map[string]string{"type": "session.created"})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg map[string]any
		_ = json.Unmarshal(data, &msg)
		switch msg["type"] {
		case "session.update":
			fs.mu.Lock()
			fs.sessions = append(fs.sessions, msg["session"].(map[string]any))
			fs.mu.Unlock()
		case "input_text_buffer.append":
			fs.mu.Lock()
			fs.texts = append(fs.texts, msg["text"].(string))
			fs.mu.Unlock()
			if msg["text"] == "fail" {
				send(map[string]any{"type": "error", "error": map[string]string{"code": "InvalidText", "message": "bad"}})
				return
			}
		case "session.finish":
			half := len(fs.pcm) / 2
			send(map[string]string{"type": "response.audio.delta", "delta": base64.StdEncoding.EncodeToString(fs.pcm[:half])})
			send(map[string]string{"type": "response.audio.delta", "delta": base64.StdEncoding.EncodeToString(fs.pcm[half:])})
			send(map[string]string{"type": "response.done"})
			send(map[string]string{"type": "session.finished"})
			_, _, _ = conn.Read(ctx)
			return
		}
	}
}

func (fs *fakeService) setHTTPError(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.httpError = status
}

func (fs *fakeService) errorStatus() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.httpError
}

func (fs *fakeService) Requests() []map[string]any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]map[string]any(nil), fs.requests...)
}

func (fs *fakeService) Sessions() []map[string]any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]map[string]any(nil), fs.sessions...)
}

func (fs *fakeService) Texts() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.texts...)
}

func (fs *fakeService) Models() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.models...)
}
