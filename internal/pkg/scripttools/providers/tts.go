package providers

import (
	"context"
	"errors"

	"reel/internal/pkg/scripttools"
	"reel/internal/pkg/tts"
)

// ElevenLabsProvider 基于 pkg/tts 的语音合成提供者
// 实现了 scripttools.SpeechProvider 接口
type ElevenLabsProvider struct {
	client *tts.Client
}

// NewElevenLabsProvider 创建语音合成提供者
func NewElevenLabsProvider(client *tts.Client) *ElevenLabsProvider {
	return &ElevenLabsProvider{client: client}
}

// ForVoice 使用文档选定的音色，voiceID 为空时保持默认
func (p *ElevenLabsProvider) ForVoice(voiceID string) scripttools.SpeechProvider {
	if p.client == nil {
		return p
	}
	return &ElevenLabsProvider{client: p.client.WithVoice(voiceID)}
}

// Synthesize 合成一段旁白
func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) (*scripttools.SpeechResult, error) {
	if p.client == nil {
		return nil, errors.New("tts client is required")
	}

	res, err := p.client.GenerateVoiceWithTimestamps(ctx, text)
	if err != nil {
		return nil, err
	}

	out := &scripttools.SpeechResult{
		Audio:       res.AudioData,
		ContentType: "audio/mpeg",
		Seconds:     res.Duration,
	}
	if res.Alignment != nil {
		out.Alignment = &scripttools.Alignment{
			Characters: res.Alignment.Characters,
			StartTimes: res.Alignment.StartTimes,
			EndTimes:   res.Alignment.EndTimes,
		}
	}
	return out, nil
}
