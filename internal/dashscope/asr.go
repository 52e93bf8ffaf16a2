package dashscope

import (
	"context"
	"encoding/base64"
	"errors"
)

const (
	ModelASRFlash     = "qwen3-asr-flash"
	multimodalGenPath = "/services/aigc/multimodal-generation/generation"
)

type asrResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
}

// Transcribe sends WAV bytes to Qwen3-ASR and returns the recognized text.
// hint is optional context (names, domain terms) for better recognition.
func (c *Client) Transcribe(ctx context.Context, wavData []byte, hint string) (string, error) {
	audioURI := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wavData)

	body := map[string]any{
		"model": ModelASRFlash,
		"input": map[string]any{
			"messages": []map[string]any{
				{
					"role": "system",
					"content": []map[string]string{
						{"text": hint},
					},
				},
				{
					"role": "user",
					"content": []map[string]string{
						{"audio": audioURI},
					},
				},
			},
		},
		"parameters": map[string]any{
			"asr_options": map[string]any{
				"enable_itn": true,
			},
		},
	}

	var resp asrResponse
	if err := c.post(ctx, multimodalGenPath, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Output.Choices) == 0 || len(resp.Output.Choices[0].Message.Content) == 0 {
		return "", errors.New("unexpected asr response: missing content")
	}
	return resp.Output.Choices[0].Message.Content[0].Text, nil
}
