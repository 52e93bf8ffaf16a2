// Package worker runs Qwen3-TTS models in a local helper process.
//
// The helper is any program that reads one JSON request per line on stdin
// and writes one JSON response per line on stdout. It learns which model
// to load from QTTS_MODEL_ID, QTTS_MODEL_KIND and QTTS_DEVICE. Audio comes
// back as a base64 WAV file.
package worker

const (
	TaskPing   = "ping"
	TaskClone  = "voice_clone"
	TaskDesign = "voice_design"
)

type Request struct {
	ID       string `json:"id"`
	Task     string `json:"task"`
	Text     string `json:"text,omitempty"`
	RefAudio string `json:"ref_audio,omitempty"`
	RefText  string `json:"ref_text,omitempty"`
	Language string `json:"language,omitempty"`
	Instruct string `json:"instruct,omitempty"`
}

type Response struct {
	ID          string `json:"id"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	SampleRate  int    `json:"sample_rate,omitempty"`
	AudioBase64 string `json:"audio_base64,omitempty"`
}
