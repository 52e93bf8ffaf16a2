package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHTTPBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	customizationPath  = "/services/audio/tts/customization"
)

var (
	ErrAuth       = errors.New("dashscope auth error")
	ErrBadRequest = errors.New("dashscope bad request")
	ErrTransient  = errors.New("dashscope transient error")
)

// Client handles HTTP API calls to DashScope
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultHTTPBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type VoiceInfo struct {
	Voice       string `json:"voice"`
	TargetModel string `json:"target_model"`
	Language    string `json:"language"`
	GmtCreate   string `json:"gmt_create"`
}

type customizationOutput struct {
	Voice        string      `json:"voice"`
	TargetModel  string      `json:"target_model"`
	VoiceList    []VoiceInfo `json:"voice_list"`
	PreviewAudio struct {
		Data string `json:"data"`
	} `json:"preview_audio"`
}

type customizationResponse struct {
	RequestID string              `json:"request_id"`
	Output    customizationOutput `json:"output"`
}

// EnrollVoice creates a cloned voice from reference audio. audioURI is a
// data URI ("data:audio/wav;base64,...") or a public URL; refText is the
// transcript of the reference and may be empty.
func (c *Client) EnrollVoice(ctx context.Context, name, audioURI, refText string) (string, error) {
	input := map[string]any{
		"action":         "create",
		"target_model":   ModelVCRealtime,
		"preferred_name": name,
		"audio": map[string]string{
			"data": audioURI,
		},
	}
	if refText != "" {
		input["text"] = refText
	}
	body := map[string]any{
		"model": ModelEnrollment,
		"input": input,
	}

	var resp customizationResponse
	if err := c.post(ctx, customizationPath, body, &resp); err != nil {
		return "", err
	}
	if resp.Output.Voice == "" {
		return "", fmt.Errorf("no voice in enrollment response (request %s)", resp.RequestID)
	}
	return resp.Output.Voice, nil
}

// DesignVoice creates a voice from a natural-language description.
func (c *Client) DesignVoice(ctx context.Context, name, prompt, previewText, language string) (string, error) {
	input := map[string]any{
		"action":         "create",
		"target_model":   ModelVDRealtime,
		"voice_prompt":   prompt,
		"preview_text":   previewText,
		"preferred_name": name,
	}
	if language != "" {
		input["language"] = language
	}
	body := map[string]any{
		"model": ModelDesign,
		"input": input,
		"parameters": map[string]any{
			"sample_rate":     SampleRate,
			"response_format": "wav",
		},
	}

	var resp customizationResponse
	if err := c.post(ctx, customizationPath, body, &resp); err != nil {
		return "", err
	}
	if resp.Output.Voice == "" {
		return "", fmt.Errorf("no voice in design response (request %s)", resp.RequestID)
	}
	return resp.Output.Voice, nil
}

// ListVoices returns one page of custom voices created with model
// (ModelEnrollment or ModelDesign).
func (c *Client) ListVoices(ctx context.Context, model string, page, pageSize int) ([]VoiceInfo, error) {
	body := map[string]any{
		"model": model,
		"input": map[string]any{
			"action":     "list",
			"page_size":  pageSize,
			"page_index": page,
		},
	}

	var resp customizationResponse
	if err := c.post(ctx, customizationPath, body, &resp); err != nil {
		return nil, err
	}
	return resp.Output.VoiceList, nil
}

// DeleteVoice removes a custom voice created with model.
func (c *Client) DeleteVoice(ctx context.Context, model, voiceID string) error {
	body := map[string]any{
		"model": model,
		"input": map[string]any{
			"action": "delete",
			"voice":  voiceID,
		},
	}
	return c.post(ctx, customizationPath, body, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) error {
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Code + ": " + apiErr.Message
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrAuth
	case status == http.StatusTooManyRequests || status >= 500:
		kind = ErrTransient
	default:
		kind = ErrBadRequest
	}
	return fmt.Errorf("%w: HTTP %d: %s", kind, status, msg)
}
