package scripttools

import (
	"math"
	"unicode/utf8"

	"reel/internal/model/script"
)

// 时长估算默认参数
const (
	DefaultFPS            = 30
	DefaultBytesPerSecond = 16000 // 128kbps MP3
	DefaultCharsPerSecond = 5.0   // 韩语 TTS 语速
)

// VoiceSource 语音时长的来源
type VoiceSource string

const (
	VoiceSourceMeasured  VoiceSource = "measured"   // TTS 返回的实测时长
	VoiceSourceAudioSize VoiceSource = "audio-size" // 按音频文件字节数估算
	VoiceSourceText      VoiceSource = "text"       // 无音频，按旁白字数估算
)

// AudioAsset 章节音频素材的元信息
// Exists 为 false 或 Size <= 0 时视为缺失
type AudioAsset struct {
	Key     string
	Size    int64
	Exists  bool
	Seconds float64 // 实测时长（秒），> 0 时优先使用
}

// VoiceEstimate 章节语音时长估算结果
type VoiceEstimate struct {
	SectionID script.SectionID `json:"sectionId"`
	Frames    int              `json:"frames"`
	Source    VoiceSource      `json:"source"`
}

// Estimator 语音时长估算器
//
// 不解码音频，只按固定码率从文件大小换算帧数；无音频时退化为按字数估算。
// 结果只作为时长重分配的输入。
type Estimator struct {
	fps            int
	bytesPerSecond int
	charsPerSecond float64
}

// NewEstimator 创建估算器，非正参数使用默认值
func NewEstimator(fps, bytesPerSecond int, charsPerSecond float64) *Estimator {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if bytesPerSecond <= 0 {
		bytesPerSecond = DefaultBytesPerSecond
	}
	if charsPerSecond <= 0 {
		charsPerSecond = DefaultCharsPerSecond
	}
	return &Estimator{fps: fps, bytesPerSecond: bytesPerSecond, charsPerSecond: charsPerSecond}
}

// FPS 帧率
func (e *Estimator) FPS() int { return e.fps }

// FramesFromBytes ceil(size / bytesPerSecond * fps)，整数运算避免浮点误差
func (e *Estimator) FramesFromBytes(size int64) int {
	if size <= 0 {
		return 0
	}
	num := size * int64(e.fps)
	den := int64(e.bytesPerSecond)
	return int((num + den - 1) / den)
}

// FramesFromText 按旁白字数估算帧数
func (e *Estimator) FramesFromText(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) * float64(e.fps) / e.charsPerSecond))
}

// FramesFromSeconds 秒数换算帧数（向上取整）
func (e *Estimator) FramesFromSeconds(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds * float64(e.fps)))
}

// Estimate 估算单个章节的语音帧数，从不失败
//
// 优先级：实测时长 > 文件大小 > 旁白字数
func (e *Estimator) Estimate(id script.SectionID, asset AudioAsset, narration string) VoiceEstimate {
	if asset.Seconds > 0 {
		return VoiceEstimate{SectionID: id, Frames: e.FramesFromSeconds(asset.Seconds), Source: VoiceSourceMeasured}
	}
	if asset.Exists && asset.Size > 0 {
		return VoiceEstimate{SectionID: id, Frames: e.FramesFromBytes(asset.Size), Source: VoiceSourceAudioSize}
	}
	return VoiceEstimate{SectionID: id, Frames: e.FramesFromText(narration), Source: VoiceSourceText}
}

// EstimateDocument 为文档每个章节估算语音帧数
// assets 以章节ID为键，缺失的章节按字数估算
func (e *Estimator) EstimateDocument(doc *script.Document, assets map[script.SectionID]AudioAsset) []VoiceEstimate {
	out := make([]VoiceEstimate, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		out = append(out, e.Estimate(sec.ID, assets[sec.ID], sec.NarrationText))
	}
	return out
}
