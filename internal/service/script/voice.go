package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"reel/internal/model/script"
	"reel/internal/pkg/ctxutil"
	"reel/internal/pkg/scripttools"
)

// voiceConcurrency TTS 并发上限，受服务商限流约束
const voiceConcurrency = 2

// generateVoices 为每个有旁白的章节合成语音并写入字幕，返回实测时长（秒）
//
// 音频写到章节的 audioFile，字幕写到 captionsFile（为空时按章节 ID 补齐），存储 key 按文档隔离。
func (s *scriptService) generateVoices(ctx context.Context, doc *script.Document) (map[script.SectionID]float64, error) {
	if s.speech == nil {
		return nil, errors.New("speech provider is not configured")
	}
	speech := s.speech
	if sel, ok := speech.(voiceSelector); ok && doc.SelectedVoiceID != "" {
		speech = sel.ForVoice(doc.SelectedVoiceID)
	}

	var (
		mu       sync.Mutex
		measured = make(map[script.SectionID]float64, len(doc.Sections))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(voiceConcurrency)
	for i := range doc.Sections {
		sec := &doc.Sections[i]
		text := strings.TrimSpace(sec.NarrationText)
		if text == "" {
			continue
		}
		if sec.AudioFile == "" {
			sec.AudioFile = scripttools.AudioFileFor(sec.ID)
		}
		if sec.CaptionsFile == "" {
			sec.CaptionsFile = scripttools.CaptionsFileFor(sec.ID)
		}
		audioKey, captionsKey, id := assetKey(doc.ID, sec.AudioFile), assetKey(doc.ID, sec.CaptionsFile), sec.ID

		g.Go(func() error {
			seconds, err := s.voiceSection(gctx, speech, id, text, audioKey, captionsKey)
			if err != nil {
				return fmt.Errorf("voice %s: %w", id, err)
			}
			mu.Lock()
			measured[id] = seconds
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return measured, nil
}

func (s *scriptService) voiceSection(ctx context.Context, speech scripttools.SpeechProvider, id script.SectionID, text, audioKey, captionsKey string) (float64, error) {
	res, err := speech.Synthesize(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(res.Audio) == 0 {
		return 0, errors.New("empty audio")
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	if _, err := s.storage.Upload(ctx, audioKey, bytes.NewReader(res.Audio), contentType); err != nil {
		return 0, fmt.Errorf("upload audio: %w", err)
	}

	var captions []scripttools.Caption
	if res.Alignment != nil {
		captions = scripttools.BuildCaptionsFromAlignment(*res.Alignment, text)
	}
	if len(captions) == 0 {
		totalMs := int(math.Round(res.Seconds * 1000))
		if totalMs <= 0 {
			totalMs = s.engine.Estimator.MillisFromBytes(int64(len(res.Audio)))
		}
		captions = scripttools.BuildFallbackCaptions(text, totalMs)
	}

	data, err := json.MarshalIndent(captions, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal captions: %w", err)
	}
	if _, err := s.storage.Upload(ctx, captionsKey, bytes.NewReader(data), "application/json"); err != nil {
		return 0, fmt.Errorf("upload captions: %w", err)
	}

	ctxutil.Logger(ctx).Info().
		Str("section_id", string(id)).
		Int("bytes", len(res.Audio)).
		Float64("seconds", res.Seconds).
		Int("captions", len(captions)).
		Msg("section voiced")
	return res.Seconds, nil
}
