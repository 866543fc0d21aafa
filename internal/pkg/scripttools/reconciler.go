package scripttools

import (
	"reel/internal/model/script"
)

// SectionAllocation 单个章节的帧数分配明细
type SectionAllocation struct {
	SectionID   script.SectionID `json:"sectionId"`
	VoiceFrames int              `json:"voiceFrames"`
	VoiceSource VoiceSource      `json:"voiceSource"`
	SlackFrames int              `json:"slackFrames"`
	Target      int              `json:"targetFrames"`
	Allocated   int              `json:"allocatedFrames"`
	Segments    int              `json:"segments"`
	Placeholder bool             `json:"placeholder,omitempty"`
}

// ReconcileReport 时长对齐结果
type ReconcileReport struct {
	TargetFrames     int                 `json:"targetFrames"`
	TotalVoiceFrames int                 `json:"totalVoiceFrames"`
	ExtraFrames      int                 `json:"extraFrames"`
	Sections         []SectionAllocation `json:"sections"`
	// Correction 施加在最后一个子场景上的修正量
	Correction int `json:"correction"`
	// CarriedFrames 末尾子场景触及下限后由前面子场景分担的帧数
	CarriedFrames int `json:"carriedFrames,omitempty"`
	// BelowFloor 目标帧数不足以让每个子场景都不低于下限时为 true，此时总数精确优先
	BelowFloor bool `json:"belowFloor,omitempty"`
}

// Reconciler 按语音时长重新分配帧数，保证总帧数精确等于目标
type Reconciler struct {
	estimator *Estimator
}

// NewReconciler 创建对齐引擎，estimator 用于补齐缺失章节的语音估算
func NewReconciler(estimator *Estimator) *Reconciler {
	if estimator == nil {
		estimator = NewEstimator(0, 0, 0)
	}
	return &Reconciler{estimator: estimator}
}

// Reconcile 把目标帧数分配到各章节和子场景
//
// 输入文档不会被修改，返回新的文档。分配规则：
//  1. 每个章节的语音帧数取自 voices，缺失时按旁白字数估算
//  2. 目标减去语音总帧数得到富余帧（不小于0），按章节均分，余数从前往后每章多 1 帧
//  3. 章节目标 = 语音帧 + 富余份额，在子场景间均分（每个不低于 FillFloorFrames），余数从前往后每个多 1 帧
//  4. 没有子场景的章节生成一张承载整段时长的全屏文字卡
//  5. 总和与目标的差值补到最后一个章节的最后一个子场景
//
// Args:
//   - doc: 规范化后的文档
//   - target: 目标总帧数
//   - voices: 各章节语音帧数估算
//
// Returns:
//   - *script.Document: 对齐后的文档，totalDurationFrames == target
//   - *ReconcileReport: 分配明细
func (r *Reconciler) Reconcile(doc *script.Document, target int, voices []VoiceEstimate) (*script.Document, *ReconcileReport) {
	out := doc.Clone()
	if out == nil {
		out = &script.Document{}
	}
	report := &ReconcileReport{TargetFrames: target}
	if len(out.Sections) == 0 || target <= 0 {
		recomputeTotal(out)
		return out, report
	}

	byID := make(map[script.SectionID]VoiceEstimate, len(voices))
	for _, v := range voices {
		byID[v.SectionID] = v
	}

	estimates := make([]VoiceEstimate, len(out.Sections))
	for i, sec := range out.Sections {
		v, ok := byID[sec.ID]
		if !ok || v.Frames < 0 {
			v = r.estimator.Estimate(sec.ID, AudioAsset{}, sec.NarrationText)
		}
		estimates[i] = v
		report.TotalVoiceFrames += v.Frames
	}

	n := len(out.Sections)
	extra := max(0, target-report.TotalVoiceFrames)
	report.ExtraFrames = extra
	extraPer := extra / n
	remainder := extra - extraPer*n

	for i := range out.Sections {
		sec := &out.Sections[i]
		slack := extraPer
		if remainder > 0 {
			slack++
			remainder--
		}
		sectionTarget := estimates[i].Frames + slack

		alloc := SectionAllocation{
			SectionID:   sec.ID,
			VoiceFrames: estimates[i].Frames,
			VoiceSource: estimates[i].Source,
			SlackFrames: slack,
			Target:      sectionTarget,
		}
		if len(sec.SubScenes) == 0 {
			sec.SubScenes = []script.Segment{fullSectionPlaceholder(sec, sectionTarget)}
			alloc.Placeholder = true
		} else {
			distribute(sec.SubScenes, sectionTarget)
		}
		alloc.Allocated = sec.SumFrames()
		alloc.Segments = len(sec.SubScenes)
		report.Sections = append(report.Sections, alloc)
	}

	report.Correction, report.CarriedFrames = applyTerminalCorrection(out, target, script.MinFloorFrames)
	if refs := segmentRefs(out); len(refs) > 0 {
		report.BelowFloor = refs[len(refs)-1].of(out).DurationFrames < script.MinFloorFrames
	}
	for i := range report.Sections {
		report.Sections[i].Allocated = out.Sections[i].SumFrames()
	}
	recomputeTotal(out)
	out.TargetDurationFrames = target
	out.Status = script.StatusFinalized
	return out, report
}

// distribute 均分章节目标帧数，每个子场景不低于 FillFloorFrames
func distribute(segs []script.Segment, sectionTarget int) {
	n := len(segs)
	base := sectionTarget / n
	rem := sectionTarget - base*n
	for i := range segs {
		d := base
		if rem > 0 {
			d++
			rem--
		}
		segs[i].DurationFrames = max(script.FillFloorFrames, d)
	}
}

func fullSectionPlaceholder(sec *script.Section, frames int) script.Segment {
	headline := sec.Label
	if headline == "" {
		headline = string(sec.ID)
	}
	body := sec.NarrationText
	if body == "" {
		body = headline
	}
	return script.Segment{
		ID:             segmentID(sec.ID, 1),
		Type:           script.SceneFullscreenText,
		DurationFrames: frames,
		Headline:       headline,
		Body:           body,
		Caption:        body,
		BgColor:        placeholderBg,
		AccentColor:    placeholderAccent,
		TextColor:      DefaultTextColor,
		Sfx:            DefaultSfx(script.SceneFullscreenText),
	}
}
