package script

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"reel/internal/model/script"
	"reel/internal/pkg/cache"
	"reel/internal/pkg/ctxutil"
)

// AudioUpload 上传的章节音频
//
// AudioFile 是渲染端相对路径，Key 是按文档隔离的存储 key，Frames 按字节数估算。
type AudioUpload struct {
	SectionID script.SectionID `json:"sectionId"`
	AudioFile string           `json:"audioFile"`
	Key       string           `json:"key"`
	URL       string           `json:"url"`
	Size      int64            `json:"size"`
	Frames    int              `json:"frames"`
}

// UploadAudio 保存章节旁白音频到文档的 audioFile 对应的存储 key
//
// 已定稿的文档会退回 normalized 状态，需要重新定稿。
func (s *scriptService) UploadAudio(ctx context.Context, scriptID string, sectionID script.SectionID, data io.Reader, contentType string) (*AudioUpload, error) {
	if !sectionID.IsCanonical() {
		return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidInput, sectionID)
	}

	doc, err := s.load(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	sec := doc.Section(sectionID)
	if sec == nil || sec.AudioFile == "" {
		return nil, fmt.Errorf("%w: section %s has no audio file", ErrInvalidInput, sectionID)
	}
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	key := assetKey(doc.ID, sec.AudioFile)
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload audio %s: %w", sectionID, err)
	}
	info, err := s.storage.GetFileInfo(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("stat audio %s: %w", sectionID, err)
	}

	if doc.Status == script.StatusFinalized {
		doc.Status = script.StatusNormalized
		if err := s.repo.Replace(ctx, doc); err != nil {
			return nil, fmt.Errorf("save script: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, cache.ScriptCacheKey(doc.ID)); err != nil {
				log.Warn().Err(err).Str("script_id", doc.ID).Msg("script cache delete failed")
			}
		}
	}

	up := &AudioUpload{
		SectionID: sectionID,
		AudioFile: sec.AudioFile,
		Key:       key,
		URL:       url,
		Size:      info.Size,
		Frames:    s.engine.Estimator.FramesFromBytes(info.Size),
	}
	ctxutil.Logger(ctx).Info().
		Str("script_id", doc.ID).
		Str("section_id", string(sectionID)).
		Int64("size", up.Size).
		Int("frames", up.Frames).
		Msg("section audio uploaded")
	return up, nil
}
