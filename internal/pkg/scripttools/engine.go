package scripttools

import (
	"reel/internal/model/script"
)

// SynthesisMode 何时从旁白重新生成子场景
type SynthesisMode string

const (
	// SynthesisEmpty 只为占位章节生成（默认）
	SynthesisEmpty SynthesisMode = "empty"
	// SynthesisAlways 所有旁白足够长的章节都重新生成
	SynthesisAlways SynthesisMode = "always"
	// SynthesisNever 不生成
	SynthesisNever SynthesisMode = "never"
)

// ParseSynthesisMode 解析模式，未知值按 SynthesisEmpty 处理
func ParseSynthesisMode(s string) SynthesisMode {
	switch SynthesisMode(s) {
	case SynthesisAlways, SynthesisNever:
		return SynthesisMode(s)
	default:
		return SynthesisEmpty
	}
}

// EngineOptions 引擎参数
type EngineOptions struct {
	FPS            int
	BytesPerSecond int
	CharsPerSecond float64
	Tokenizer      Tokenizer
}

// Engine 组合规范化、场景生成和时长对齐
//
// 全部为内存中的同步计算；音频大小等外部信息由调用方先取好再传入。
type Engine struct {
	Estimator   *Estimator
	Normalizer  *Normalizer
	Synthesizer *Synthesizer
	Reconciler  *Reconciler
}

// NewEngine 创建引擎
func NewEngine(opts EngineOptions) *Engine {
	est := NewEstimator(opts.FPS, opts.BytesPerSecond, opts.CharsPerSecond)
	return &Engine{
		Estimator:   est,
		Normalizer:  NewNormalizer(est.FPS()),
		Synthesizer: NewSynthesizer(opts.Tokenizer),
		Reconciler:  NewReconciler(est),
	}
}

// FinalizeReport 一次定稿的完整记录
type FinalizeReport struct {
	Synthesized []script.SectionID `json:"synthesized,omitempty"`
	Voices      []VoiceEstimate    `json:"voices"`
	Reconcile   *ReconcileReport   `json:"reconcile"`
	Issues      []Issue            `json:"issues,omitempty"`
}

// Synthesize 按模式为章节生成子场景，返回新文档和被重新生成的章节
//
// 配色计数在章节间延续。
func (e *Engine) Synthesize(doc *script.Document, mode SynthesisMode) (*script.Document, []script.SectionID) {
	out := doc.Clone()
	if mode == SynthesisNever {
		return out, nil
	}
	var done []script.SectionID
	ci := 0
	for i := range out.Sections {
		sec := &out.Sections[i]
		if mode == SynthesisEmpty && !sec.Placeholder && len(sec.SubScenes) > 0 {
			continue
		}
		segs, next := e.Synthesizer.Synthesize(sec, ci)
		if len(segs) == 0 {
			continue
		}
		ci = next
		sec.SubScenes = segs
		sec.Placeholder = false
		done = append(done, sec.ID)
	}
	recomputeTotal(out)
	return out, done
}

// Finalize 生成场景、估算语音并对齐时长
//
// Args:
//   - doc: 规范化后的文档
//   - target: 目标总帧数
//   - assets: 各章节音频素材信息（可缺失）
//   - mode: 场景生成模式
//
// Returns:
//   - *script.Document: 定稿文档
//   - *FinalizeReport: 过程记录（含校验问题，正常为空）
func (e *Engine) Finalize(doc *script.Document, target int, assets map[script.SectionID]AudioAsset, mode SynthesisMode) (*script.Document, *FinalizeReport) {
	synthesized, done := e.Synthesize(doc, mode)
	voices := e.Estimator.EstimateDocument(synthesized, assets)
	return e.reconcile(synthesized, done, target, voices)
}

// FinalizeWithVoices 使用调用方给出的语音帧数定稿，未给出的章节按字数估算
func (e *Engine) FinalizeWithVoices(doc *script.Document, target int, frames map[script.SectionID]int, mode SynthesisMode) (*script.Document, *FinalizeReport) {
	synthesized, done := e.Synthesize(doc, mode)
	voices := make([]VoiceEstimate, 0, len(frames))
	for _, sec := range synthesized.Sections {
		if f, ok := frames[sec.ID]; ok && f >= 0 {
			voices = append(voices, VoiceEstimate{SectionID: sec.ID, Frames: f, Source: VoiceSourceMeasured})
			continue
		}
		voices = append(voices, e.Estimator.Estimate(sec.ID, AudioAsset{}, sec.NarrationText))
	}
	return e.reconcile(synthesized, done, target, voices)
}

func (e *Engine) reconcile(doc *script.Document, done []script.SectionID, target int, voices []VoiceEstimate) (*script.Document, *FinalizeReport) {
	final, rr := e.Reconciler.Reconcile(doc, target, voices)
	return final, &FinalizeReport{
		Synthesized: done,
		Voices:      voices,
		Reconcile:   rr,
		Issues:      Verify(final, target, script.MinFloorFrames),
	}
}

// Run 从原始脚本文本一步得到定稿文档
func (e *Engine) Run(data []byte, target int, assets map[script.SectionID]AudioAsset, mode SynthesisMode) (*script.Document, *NormalizeReport, *FinalizeReport) {
	doc, nr := e.Normalizer.NormalizeJSON(data, target)
	final, fr := e.Finalize(doc, target, assets, mode)
	return final, nr, fr
}
