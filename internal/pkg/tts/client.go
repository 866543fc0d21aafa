package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reel/internal/config"
	"reel/internal/pkg/id"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModelID = "eleven_multilingual_v2"
	defaultTimeout = 120 * time.Second
)

// VoiceSettings ElevenLabs 发音参数
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
}

// DefaultVoiceSettings 旁白默认发音参数
var DefaultVoiceSettings = VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0.3}

// Alignment 逐字符时间轴（秒）
type Alignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

// Duration 最后一个字符的结束时间
func (a *Alignment) Duration() float64 {
	if a == nil || len(a.EndTimes) == 0 {
		return 0
	}
	return a.EndTimes[len(a.EndTimes)-1]
}

// Result 一次合成的结果
type Result struct {
	AudioData []byte
	Alignment *Alignment
	Duration  float64 // 秒，无时间轴时为 0
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

type synthesizeResponse struct {
	AudioBase64 string          `json:"audio_base64"`
	Alignment   json.RawMessage `json:"alignment"`
}

// Client ElevenLabs with-timestamps 接口客户端
type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	settings   VoiceSettings
	httpClient *http.Client
}

// NewClient 创建 TTS 客户端
func NewClient(cfg config.TTSConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tts api key is required")
	}
	if cfg.VoiceID == "" {
		return nil, errors.New("tts voice id is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = DefaultModelID
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		modelID:    modelID,
		settings:   DefaultVoiceSettings,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// WithVoice 返回使用另一个音色的副本
func (c *Client) WithVoice(voiceID string) *Client {
	if voiceID == "" || voiceID == c.voiceID {
		return c
	}
	cp := *c
	cp.voiceID = voiceID
	return &cp
}

// GenerateVoiceWithTimestamps 合成语音并返回逐字符时间轴
func (c *Client) GenerateVoiceWithTimestamps(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("tts text is empty")
	}

	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: c.modelID, VoiceSettings: c.settings})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s/with-timestamps", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	requestID := id.NewShort()
	log.Debug().
		Str("request_id", requestID).
		Str("voice_id", c.voiceID).
		Int("chars", len([]rune(text))).
		Msg("sending tts request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request failed: status %d, body: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out synthesizeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse tts response: %w", err)
	}
	if out.AudioBase64 == "" {
		return nil, errors.New("audio data not found in response")
	}
	audio, err := base64.StdEncoding.DecodeString(out.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio data: %w", err)
	}

	alignment := parseAlignment(out.Alignment)
	result := &Result{AudioData: audio, Alignment: alignment, Duration: alignment.Duration()}

	log.Debug().
		Str("request_id", requestID).
		Int("bytes", len(audio)).
		Float64("duration", result.Duration).
		Msg("tts request done")

	return result, nil
}

// parseAlignment 时间轴可能直接给出，也可能包在 characters 字段里
func parseAlignment(raw json.RawMessage) *Alignment {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var direct Alignment
	if err := json.Unmarshal(raw, &direct); err == nil && len(direct.Characters) > 0 {
		return validAlignment(&direct)
	}

	var wrapped struct {
		Characters *Alignment `json:"characters"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Characters != nil {
		return validAlignment(wrapped.Characters)
	}
	return nil
}

func validAlignment(a *Alignment) *Alignment {
	if len(a.Characters) == 0 || len(a.StartTimes) != len(a.Characters) || len(a.EndTimes) != len(a.Characters) {
		log.Warn().Int("characters", len(a.Characters)).Msg("tts alignment length mismatch, ignored")
		return nil
	}
	return a
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
