package dashscope

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	DefaultWSBaseURL = "wss://dashscope.aliyuncs.com/api-ws/v1/realtime"
	SampleRate       = 24000

	ModelVCRealtime = "qwen3-tts-vc-realtime-2026-01-15"
	ModelVDRealtime = "qwen3-tts-vd-realtime-2025-12-16"
	ModelEnrollment = "qwen-voice-enrollment"
	ModelDesign     = "qwen-voice-design"
)

// RealtimeClient handles WebSocket TTS sessions
type RealtimeClient struct {
	apiKey  string
	baseURL string
}

func NewRealtimeClient(apiKey, baseURL string) *RealtimeClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultWSBaseURL
	}
	return &RealtimeClient{apiKey: apiKey, baseURL: baseURL}
}

// TTSOptions selects one synthesis. Tempo changes happen locally after
// synthesis, so the session always runs at speech_rate 1.
type TTSOptions struct {
	Model    string
	Voice    string
	Text     string
	Language string
}

type wsMessage struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

type sessionUpdate struct {
	EventID string        `json:"event_id,omitempty"`
	Type    string        `json:"type"`
	Session sessionParams `json:"session"`
}

type sessionParams struct {
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	SampleRate     int     `json:"sample_rate,omitempty"`
	Mode           string  `json:"mode,omitempty"`
	LanguageType   string  `json:"language_type,omitempty"`
	Volume         int     `json:"volume,omitempty"`
	SpeechRate     float64 `json:"speech_rate,omitempty"`
	PitchRate      float64 `json:"pitch_rate,omitempty"`
}

type textAppend struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
	Text    string `json:"text"`
}

type serverMessage struct {
	Type  string `json:"type"`
	Delta string `json:"delta,omitempty"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Synthesize opens a session, sends the whole text and returns the PCM
// (24kHz 16-bit mono) once the server reports session.finished.
func (rc *RealtimeClient) Synthesize(ctx context.Context, opts TTSOptions) ([]byte, error) {
	var pcm []byte
	err := rc.StreamTTS(ctx, opts, func(chunk []byte) {
		pcm = append(pcm, chunk...)
	})
	return pcm, err
}

// StreamTTS opens a WebSocket, sends text, and passes PCM chunks to onAudio as they arrive.
func (rc *RealtimeClient) StreamTTS(ctx context.Context, opts TTSOptions, onAudio func([]byte)) error {
	endpoint := fmt.Sprintf("%s?model=%s", rc.baseURL, url.QueryEscape(opts.Model))

	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + rc.apiKey},
		},
	})
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 22) // audio deltas are large base64 frames

	if err := rc.expectMessage(ctx, conn, "session.created"); err != nil {
		return err
	}

	langType := "Auto"
	if opts.Language != "" {
		langType = opts.Language
	}
	update := sessionUpdate{
		EventID: newEventID(),
		Type:    "session.update",
		Session: sessionParams{
			Voice:          opts.Voice,
			ResponseFormat: "pcm",
			SampleRate:     SampleRate,
			Mode:           "server_commit",
			LanguageType:   langType,
			Volume:         50,
			SpeechRate:     1.0,
			PitchRate:      1.0,
		},
	}
	if err := rc.writeJSON(ctx, conn, update); err != nil {
		return fmt.Errorf("session.update: %w", err)
	}

	appendMsg := textAppend{
		EventID: newEventID(),
		Type:    "input_text_buffer.append",
		Text:    opts.Text,
	}
	if err := rc.writeJSON(ctx, conn, appendMsg); err != nil {
		return fmt.Errorf("text append: %w", err)
	}

	finish := wsMessage{EventID: newEventID(), Type: "session.finish"}
	if err := rc.writeJSON(ctx, conn, finish); err != nil {
		return fmt.Errorf("session.finish: %w", err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "response.audio.delta":
			chunk, err := base64.StdEncoding.DecodeString(msg.Delta)
			if err != nil {
				return fmt.Errorf("decode audio: %w", err)
			}
			onAudio(chunk)

		case "response.done":
			continue

		case "session.finished":
			conn.Close(websocket.StatusNormalClosure, "done")
			return nil

		case "error":
			if msg.Error != nil {
				return fmt.Errorf("%w: %s: %s", ErrBadRequest, msg.Error.Code, msg.Error.Message)
			}
			return fmt.Errorf("%w: %s", ErrBadRequest, string(data))
		}
	}
}

func (rc *RealtimeClient) expectMessage(ctx context.Context, conn *websocket.Conn, expectedType string) error {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", expectedType, err)
	}
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse %s: %w", expectedType, err)
	}
	if msg.Type == "error" && msg.Error != nil {
		return fmt.Errorf("%w: %s: %s", ErrAuth, msg.Error.Code, msg.Error.Message)
	}
	if msg.Type != expectedType {
		return fmt.Errorf("expected %s, got %s", expectedType, msg.Type)
	}
	return nil
}

func (rc *RealtimeClient) writeJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func newEventID() string {
	return "event_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
