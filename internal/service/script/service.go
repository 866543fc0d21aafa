package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"reel/internal/config"
	"reel/internal/model/script"
	"reel/internal/pkg/cache"
	"reel/internal/pkg/ctxutil"
	"reel/internal/pkg/id"
	"reel/internal/pkg/scripttools"
	"reel/internal/pkg/storage"
	scriptrepo "reel/internal/repository/script"
)

var (
	// ErrNotFound 文档不存在
	ErrNotFound = errors.New("script not found")
	// ErrBusy 同一文档正在被其他进程定稿
	ErrBusy = errors.New("script is being finalized")
	// ErrInvalidInput 请求参数无效
	ErrInvalidInput = errors.New("invalid input")
)

// Cache 定稿文档缓存与分布式锁，由 pkg/cache.RedisCache 实现
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// voiceSelector 支持按文档选择音色的语音提供者
type voiceSelector interface {
	ForVoice(voiceID string) scripttools.SpeechProvider
}

// ScriptService 脚本服务接口
type ScriptService interface {
	// Generate 调用 LLM 生成脚本并规范化保存
	Generate(ctx context.Context, in GenerateInput) (*script.Document, *scripttools.NormalizeReport, error)

	// Create 规范化调用方提交的原始脚本并保存
	Create(ctx context.Context, raw []byte, in CreateInput) (*script.Document, *scripttools.NormalizeReport, error)

	// Reconcile 无状态定稿：规范化、生成场景并按给定语音帧数对齐，不落库
	Reconcile(ctx context.Context, in ReconcileInput) (*script.Document, *scripttools.FinalizeReport, error)

	// Finalize 对已保存的脚本执行语音（可选）、场景生成和时长对齐，结果落库
	Finalize(ctx context.Context, scriptID string, in FinalizeInput) (*script.Document, *scripttools.FinalizeReport, error)

	// Get 获取脚本，定稿文档优先读缓存
	Get(ctx context.Context, scriptID string) (*script.Document, error)

	// List 分页列出脚本（不含章节内容）
	List(ctx context.Context, filter scriptrepo.ListFilter) ([]*script.Document, int64, error)

	// UploadAudio 上传章节旁白音频，供定稿时估算时长
	UploadAudio(ctx context.Context, scriptID string, sectionID script.SectionID, data io.Reader, contentType string) (*AudioUpload, error)
}

// GenerateInput 生成参数
type GenerateInput struct {
	Topic           string
	Category        string
	Tone            string
	DurationMinutes float64
}

// CreateInput 提交参数，TargetFrames 优先于 DurationMinutes
type CreateInput struct {
	DurationMinutes float64
	TargetFrames    int
}

// ReconcileInput 无状态定稿参数
type ReconcileInput struct {
	Document      []byte
	TargetFrames  int
	VoiceFrames   map[script.SectionID]int
	SynthesisMode string
}

// FinalizeInput 定稿参数，零值表示沿用文档或配置
type FinalizeInput struct {
	DurationMinutes float64
	SynthesisMode   string
	Voice           bool // 先为每个章节合成语音和字幕
}

// Deps 服务依赖，Cache、LLM、Speech 可为空
type Deps struct {
	Repo     scriptrepo.ScriptRepository
	Storage  storage.Storage
	Cache    Cache
	LLM      scripttools.LLMProvider
	Speech   scripttools.SpeechProvider
	Pipeline config.PipelineConfig
}

type scriptService struct {
	repo      scriptrepo.ScriptRepository
	storage   storage.Storage
	cache     Cache
	speech    scripttools.SpeechProvider
	generator *scripttools.ScriptGenerator
	engine    *scripttools.Engine
	pipeline  config.PipelineConfig
	flight    singleflight.Group
}

// NewScriptService 创建脚本服务
func NewScriptService(deps Deps, tokenizer scripttools.Tokenizer) (ScriptService, error) {
	if deps.Repo == nil {
		return nil, errors.New("script repository is required")
	}
	if deps.Storage == nil {
		return nil, errors.New("storage is required")
	}
	if err := deps.Pipeline.Validate(); err != nil {
		return nil, err
	}

	s := &scriptService{
		repo:     deps.Repo,
		storage:  deps.Storage,
		cache:    deps.Cache,
		speech:   deps.Speech,
		pipeline: deps.Pipeline,
		engine: scripttools.NewEngine(scripttools.EngineOptions{
			FPS:            deps.Pipeline.FPS,
			BytesPerSecond: deps.Pipeline.AudioBytesPerSecond,
			CharsPerSecond: deps.Pipeline.CharsPerSecond,
			Tokenizer:      tokenizer,
		}),
	}
	if deps.LLM != nil {
		s.generator = scripttools.NewScriptGenerator(deps.LLM, deps.Pipeline.FPS, deps.Pipeline.CharsPerSecond)
	}
	return s, nil
}

// Generate 调用 LLM 生成脚本并规范化保存
func (s *scriptService) Generate(ctx context.Context, in GenerateInput) (*script.Document, *scripttools.NormalizeReport, error) {
	if s.generator == nil {
		return nil, nil, errors.New("llm provider is not configured")
	}
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return nil, nil, fmt.Errorf("%w: topic is required", ErrInvalidInput)
	}
	minutes := in.DurationMinutes
	if minutes <= 0 {
		minutes = float64(s.pipeline.DefaultDurationMinutes)
	}
	if err := checkTarget(s.pipeline.TargetFrames(minutes)); err != nil {
		return nil, nil, err
	}

	raw, err := s.generator.Generate(ctx, scripttools.GenerateRequest{
		Topic:           in.Topic,
		Category:        in.Category,
		Tone:            in.Tone,
		DurationMinutes: int(minutes + 0.5),
	})
	if err != nil {
		return nil, nil, err
	}

	doc, report := s.engine.Normalizer.NormalizeJSON(raw, s.pipeline.TargetFrames(minutes))
	if doc.Topic == "" {
		doc.Topic = in.Topic
	}
	if err := s.save(ctx, doc, report); err != nil {
		return nil, nil, err
	}
	return doc, report, nil
}

// Create 规范化调用方提交的原始脚本并保存
func (s *scriptService) Create(ctx context.Context, raw []byte, in CreateInput) (*script.Document, *scripttools.NormalizeReport, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	target := in.TargetFrames
	if target <= 0 {
		target = s.pipeline.TargetFrames(in.DurationMinutes)
	}

	if err := checkTarget(target); err != nil {
		return nil, nil, err
	}

	doc, report := s.engine.Normalizer.NormalizeJSON(raw, target)
	if err := s.save(ctx, doc, report); err != nil {
		return nil, nil, err
	}
	return doc, report, nil
}

func (s *scriptService) save(ctx context.Context, doc *script.Document, report *scripttools.NormalizeReport) error {
	doc.ID = id.New()
	doc.Status = script.StatusNormalized
	if err := s.repo.Create(ctx, doc); err != nil {
		return fmt.Errorf("save script: %w", err)
	}

	ctxutil.Logger(ctx).Info().
		Str("script_id", doc.ID).
		Bool("parse_failed", report.ParseFailed).
		Int("missing_sections", len(report.MissingSections)).
		Int("placeholder_sections", len(report.PlaceholderSections)).
		Int("unknown_types", report.UnknownTypes).
		Int("target_frames", doc.TargetDurationFrames).
		Msg("script normalized")
	return nil
}

// Reconcile 无状态定稿
func (s *scriptService) Reconcile(ctx context.Context, in ReconcileInput) (*script.Document, *scripttools.FinalizeReport, error) {
	if len(in.Document) == 0 {
		return nil, nil, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	if in.TargetFrames <= 0 {
		in.TargetFrames = s.pipeline.TargetFrames(0)
	}
	if err := checkTarget(in.TargetFrames); err != nil {
		return nil, nil, err
	}

	doc, _ := s.engine.Normalizer.NormalizeJSON(in.Document, in.TargetFrames)
	final, report := s.engine.FinalizeWithVoices(doc, in.TargetFrames, in.VoiceFrames, s.mode(in.SynthesisMode))

	ctxutil.Logger(ctx).Debug().
		Int("target_frames", in.TargetFrames).
		Int("correction", report.Reconcile.Correction).
		Bool("below_floor", report.Reconcile.BelowFloor).
		Msg("stateless reconcile done")
	return final, report, nil
}

// Finalize 同一文档、同样参数的并发请求合并为一次执行
//
// 合并执行不受单个调用方取消的影响，调用方 ctx 结束时立即返回 ctx.Err()。
func (s *scriptService) Finalize(ctx context.Context, scriptID string, in FinalizeInput) (*script.Document, *scripttools.FinalizeReport, error) {
	type result struct {
		doc    *script.Document
		report *scripttools.FinalizeReport
	}

	if in.DurationMinutes > 0 {
		if err := checkTarget(s.pipeline.TargetFrames(in.DurationMinutes)); err != nil {
			return nil, nil, err
		}
	}

	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(finalizeFlightKey(scriptID, in), func() (any, error) {
		doc, report, err := s.finalizeLocked(detached, scriptID, in)
		if err != nil {
			return nil, err
		}
		return result{doc: doc, report: report}, nil
	})

	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, nil, res.Err
		}
		if res.Shared {
			log.Debug().Str("script_id", scriptID).Msg("finalize result shared with concurrent caller")
		}
		r := res.Val.(result)
		return r.doc, r.report, nil
	}
}

// finalizeFlightKey 参数不同的请求不共享结果，由分布式锁互斥
func finalizeFlightKey(scriptID string, in FinalizeInput) string {
	return fmt.Sprintf("%s|%g|%s|%t", scriptID, in.DurationMinutes, in.SynthesisMode, in.Voice)
}

// checkTarget 拒绝无法容纳规范章节的目标帧数
func checkTarget(target int) error {
	if target < script.MinTargetFrames {
		return fmt.Errorf("%w: target %d frames is below minimum %d", ErrInvalidInput, target, script.MinTargetFrames)
	}
	return nil
}

func (s *scriptService) finalizeLocked(ctx context.Context, scriptID string, in FinalizeInput) (*script.Document, *scripttools.FinalizeReport, error) {
	if s.cache != nil {
		unlock, err := s.cache.Lock(ctx, cache.ScriptLockKey(scriptID), s.lockTTL())
		if errors.Is(err, cache.ErrLocked) {
			return nil, nil, ErrBusy
		}
		if err != nil {
			return nil, nil, fmt.Errorf("acquire finalize lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Str("script_id", scriptID).Msg("failed to release finalize lock")
			}
		}()
	}

	doc, err := s.load(ctx, scriptID)
	if err != nil {
		return nil, nil, err
	}

	target := doc.TargetDurationFrames
	if in.DurationMinutes > 0 || target <= 0 {
		target = s.pipeline.TargetFrames(in.DurationMinutes)
	}
	if err := checkTarget(target); err != nil {
		return nil, nil, err
	}

	var measured map[script.SectionID]float64
	if in.Voice {
		measured, err = s.generateVoices(ctx, doc)
		if err != nil {
			return nil, nil, err
		}
	}

	assets, err := s.audioAssets(ctx, doc, measured)
	if err != nil {
		return nil, nil, err
	}

	final, report := s.engine.Finalize(doc, target, assets, s.mode(in.SynthesisMode))
	if err := s.repo.Replace(ctx, final); err != nil {
		return nil, nil, fmt.Errorf("save finalized script: %w", err)
	}
	s.cacheDocument(ctx, final)

	ctxutil.Logger(ctx).Info().
		Str("script_id", scriptID).
		Int("target_frames", target).
		Int("voice_frames", report.Reconcile.TotalVoiceFrames).
		Int("correction", report.Reconcile.Correction).
		Int("synthesized", len(report.Synthesized)).
		Int("issues", len(report.Issues)).
		Msg("script finalized")
	return final, report, nil
}

// assetKey 文档素材在存储中的 key
//
// audioFile/captionsFile 是渲染端相对路径，存储时按文档 ID 隔离。
func assetKey(scriptID, rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if scriptID == "" || rel == "" {
		return rel
	}
	return "scripts/" + scriptID + "/" + rel
}

// audioAssets 并发查询各章节音频大小；measured 为本次合成得到的实测时长
func (s *scriptService) audioAssets(ctx context.Context, doc *script.Document, measured map[script.SectionID]float64) (map[script.SectionID]scripttools.AudioAsset, error) {
	keys := make([]string, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		keys = append(keys, assetKey(doc.ID, sec.AudioFile))
	}

	infos, err := storage.StatAll(ctx, s.storage, keys, 0)
	if err != nil {
		return nil, fmt.Errorf("stat audio assets: %w", err)
	}

	assets := make(map[script.SectionID]scripttools.AudioAsset, len(doc.Sections))
	for i, sec := range doc.Sections {
		asset := scripttools.AudioAsset{Key: keys[i], Seconds: measured[sec.ID]}
		if info, ok := infos[keys[i]]; ok && keys[i] != "" {
			asset.Size = info.Size
			asset.Exists = true
		}
		assets[sec.ID] = asset
	}
	return assets, nil
}

// Get 获取脚本
func (s *scriptService) Get(ctx context.Context, scriptID string) (*script.Document, error) {
	if s.cache != nil {
		var doc script.Document
		err := s.cache.Get(ctx, cache.ScriptCacheKey(scriptID), &doc)
		if err == nil {
			return &doc, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("script_id", scriptID).Msg("script cache read failed")
		}
	}

	doc, err := s.load(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if doc.Status == script.StatusFinalized {
		s.cacheDocument(ctx, doc)
	}
	return doc, nil
}

// List 分页列出脚本
func (s *scriptService) List(ctx context.Context, filter scriptrepo.ListFilter) ([]*script.Document, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list scripts: %w", err)
	}
	return docs, total, nil
}

func (s *scriptService) load(ctx context.Context, scriptID string) (*script.Document, error) {
	doc, err := s.repo.FindByID(ctx, scriptID)
	if errors.Is(err, scriptrepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	return doc, nil
}

func (s *scriptService) cacheDocument(ctx context.Context, doc *script.Document) {
	if s.cache == nil || s.pipeline.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cache.ScriptCacheKey(doc.ID), doc, s.pipeline.CacheTTL); err != nil {
		log.Warn().Err(err).Str("script_id", doc.ID).Msg("script cache write failed")
	}
}

func (s *scriptService) mode(requested string) scripttools.SynthesisMode {
	if requested != "" {
		return scripttools.ParseSynthesisMode(requested)
	}
	return scripttools.ParseSynthesisMode(s.pipeline.SynthesisMode)
}

func (s *scriptService) lockTTL() time.Duration {
	if s.pipeline.LockTTL > 0 {
		return s.pipeline.LockTTL
	}
	return 5 * time.Minute
}
