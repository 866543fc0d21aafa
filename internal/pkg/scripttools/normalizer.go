package scripttools

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"reel/internal/model/script"
)

// 默认画面参数
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	// RepairedSegmentFrames 缺失或过短时长的默认帧数
	RepairedSegmentFrames = 180
)

// LLM 输出中可能夹带说明文字，取第一个 { 到最后一个 } 之间的内容
var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// NormalizeReport 规范化过程中做过的修复
type NormalizeReport struct {
	ParseFailed         bool               `json:"parseFailed"`
	MissingSections     []script.SectionID `json:"missingSections,omitempty"`
	DroppedSections     []string           `json:"droppedSections,omitempty"`
	PlaceholderSections []script.SectionID `json:"placeholderSections,omitempty"`
	RepairedFields      int                `json:"repairedFields"`
	UnknownTypes        int                `json:"unknownTypes"`
	PayloadsFilled      int                `json:"payloadsFilled"`
	Scaled              bool               `json:"scaled"`
	FramesBefore        int                `json:"framesBefore"`
	FramesAfter         int                `json:"framesAfter"`
}

// HasPlaceholders 章节是否使用了占位子场景
func (r *NormalizeReport) HasPlaceholders(id script.SectionID) bool {
	for _, s := range r.PlaceholderSections {
		if s == id {
			return true
		}
	}
	return false
}

// Normalizer 脚本规范化器
//
// 把结构不可信的脚本修复成完整的场景图：补齐 9 个规范章节、子场景字段和类型数据，
// 并在给定目标帧数时做一次全局缩放。从不返回错误。
type Normalizer struct {
	palette Palette
	fps     int
}

// NewNormalizer 创建规范化器
func NewNormalizer(fps int) *Normalizer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Normalizer{palette: RepairPalette, fps: fps}
}

// NormalizeJSON 解析并规范化脚本文本
//
// 无法解析的输入按空文档处理，仍会得到 9 个占位章节。
func (n *Normalizer) NormalizeJSON(data []byte, target int) (*script.Document, *NormalizeReport) {
	raw, ok := decodeObject(data)
	doc, report := n.Normalize(raw, target)
	report.ParseFailed = !ok
	return doc, report
}

// NormalizeDocument 对已是结构化的文档再做一次规范化
func (n *Normalizer) NormalizeDocument(in *script.Document, target int) (*script.Document, *NormalizeReport) {
	data, err := json.Marshal(in)
	if err != nil {
		return n.Normalize(nil, target)
	}
	doc, report := n.NormalizeJSON(data, target)
	if in != nil {
		doc.ID = in.ID
		doc.Status = in.Status
		doc.CreatedAt = in.CreatedAt
		doc.UpdatedAt = in.UpdatedAt
	}
	return doc, report
}

func decodeObject(data []byte) (map[string]any, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil && raw != nil {
		return raw, true
	}
	if m := jsonObjectPattern.Find(data); m != nil {
		raw = nil
		if err := json.Unmarshal(m, &raw); err == nil && raw != nil {
			return raw, true
		}
	}
	return map[string]any{}, false
}

// Normalize 规范化已解码的脚本
//
// Args:
//   - raw: JSON 解码后的对象，可以为 nil
//   - target: 目标总帧数，<= 0 时不做全局缩放
//
// Returns:
//   - *script.Document: 完整的文档
//   - *NormalizeReport: 修复记录
func (n *Normalizer) Normalize(raw map[string]any, target int) (*script.Document, *NormalizeReport) {
	if raw == nil {
		raw = map[string]any{}
	}
	report := &NormalizeReport{}
	doc := n.documentMeta(raw)

	bySection := n.indexSections(raw, report)
	ci := 0
	for _, id := range script.CanonicalSections {
		rs, ok := bySection[id]
		if !ok {
			report.MissingSections = append(report.MissingSections, id)
		}
		sec := n.repairSection(id, rs, &ci, report)
		doc.Sections = append(doc.Sections, sec)
	}

	report.FramesBefore = doc.SumFrames()
	if target > 0 {
		doc.TargetDurationFrames = target
		report.Scaled = scaleToTarget(doc, target)
	}
	recomputeTotal(doc)
	report.FramesAfter = doc.TotalDurationFrames
	return doc, report
}

func (n *Normalizer) documentMeta(raw map[string]any) *script.Document {
	doc := &script.Document{
		FPS:    n.fps,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	doc.ID, _ = FieldChain{"id"}.String(raw)
	doc.Title, _ = FieldChain{"title"}.String(raw)
	doc.Description, _ = FieldChain{"description"}.String(raw)
	doc.Topic, _ = FieldChain{"topic"}.String(raw)
	doc.Tags = FieldChain{"tags"}.Strings(raw)
	doc.Hashtags = FieldChain{"hashtags"}.Strings(raw)
	doc.BgmFile, _ = FieldChain{"bgmFile"}.String(raw)
	doc.ThumbnailFile, _ = FieldChain{"thumbnailFile"}.String(raw)
	doc.SelectedVoiceID, _ = FieldChain{"selectedVoiceId"}.String(raw)
	if v, ok := (FieldChain{"bgmVolume"}).Number(raw); ok {
		doc.BgmVolume = v
	}
	if v, ok := (FieldChain{"width"}).Number(raw); ok && v > 0 {
		doc.Width = int(v)
	}
	if v, ok := (FieldChain{"height"}).Number(raw); ok && v > 0 {
		doc.Height = int(v)
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.Hashtags == nil {
		doc.Hashtags = []string{}
	}
	return doc
}

// indexSections 按规范ID索引章节，未知ID和重复ID（保留第一个）被丢弃
func (n *Normalizer) indexSections(raw map[string]any, report *NormalizeReport) map[script.SectionID]map[string]any {
	out := make(map[script.SectionID]map[string]any)
	list, _ := asList(raw["sections"])
	for i, e := range list {
		m, ok := asMap(e)
		if !ok {
			report.DroppedSections = append(report.DroppedSections, fmt.Sprintf("#%d", i))
			continue
		}
		s, _ := FieldChain{"id"}.String(m)
		id := script.SectionID(strings.ToUpper(s))
		if !id.IsCanonical() {
			report.DroppedSections = append(report.DroppedSections, s)
			continue
		}
		if _, dup := out[id]; dup {
			report.DroppedSections = append(report.DroppedSections, s)
			continue
		}
		out[id] = m
	}
	return out
}

func (n *Normalizer) repairSection(id script.SectionID, raw map[string]any, ci *int, report *NormalizeReport) script.Section {
	sec := script.Section{
		ID:           id,
		AudioFile:    AudioFileFor(id),
		CaptionsFile: CaptionsFileFor(id),
	}

	if raw == nil {
		sec.Label = id.Label()
		sec.NarrationText = sec.Label + " 섹션입니다."
	} else {
		if l, ok := sectionLabelChain.String(raw); ok {
			sec.Label = l
		} else {
			sec.Label = id.Label()
			report.RepairedFields++
		}
		if t, ok := sectionNarrationChain.String(raw); ok {
			sec.NarrationText = t
		} else {
			sec.NarrationText = sec.Label + " 내용입니다."
			report.RepairedFields++
		}
		if a, ok := (FieldChain{"audioFile"}).String(raw); ok {
			sec.AudioFile = a
		}
		if c, ok := (FieldChain{"captionsFile"}).String(raw); ok {
			sec.CaptionsFile = c
		}
	}

	var rawScenes []map[string]any
	if v, ok := subScenesChain.Value(raw); ok {
		if l, ok := asList(v); ok {
			for _, e := range l {
				if m, ok := asMap(e); ok {
					rawScenes = append(rawScenes, m)
				}
			}
		}
	}

	if len(rawScenes) == 0 {
		sec.SubScenes = placeholderScenes(&sec)
		sec.Placeholder = true
		report.PlaceholderSections = append(report.PlaceholderSections, id)
		*ci += len(sec.SubScenes)
		return sec
	}
	if p, ok := raw["placeholder"].(bool); ok && p {
		sec.Placeholder = true
		report.PlaceholderSections = append(report.PlaceholderSections, id)
	}

	used := make(map[string]bool, len(rawScenes))
	for j, rs := range rawScenes {
		seg := n.repairSegment(&sec, j, rs, *ci, report)
		if used[seg.ID] {
			seg.ID = uniqueID(sec.ID, j, used)
			report.RepairedFields++
		}
		used[seg.ID] = true
		sec.SubScenes = append(sec.SubScenes, seg)
		*ci++
	}
	return sec
}

func uniqueID(sec script.SectionID, j int, used map[string]bool) string {
	id := segmentID(sec, j+1)
	for k := 2; used[id]; k++ {
		id = fmt.Sprintf("%s-%d-%d", sec, j+1, k)
	}
	return id
}

// placeholderScenes 无子场景时的三张占位卡片（标题卡、主文本卡、次文本卡）
func placeholderScenes(sec *script.Section) []script.Segment {
	narr := sec.NarrationText
	return []script.Segment{
		{
			ID: segmentID(sec.ID, 1), Type: script.SceneTitleImpact, DurationFrames: 180,
			Headline: sec.Label, Body: sliceRunes(narr, 0, 40),
			BgColor: "#0a0a1a", AccentColor: "#6c5ce7", TextColor: DefaultTextColor, Sfx: script.SfxImpact,
		},
		{
			ID: segmentID(sec.ID, 2), Type: script.SceneFullscreenText, DurationFrames: 240,
			Headline: "핵심 내용", Body: sliceRunes(narr, 0, 60),
			BgColor: "#0d1117", AccentColor: "#ffd600", TextColor: DefaultTextColor, Sfx: script.SfxNone,
		},
		{
			ID: segmentID(sec.ID, 3), Type: script.SceneFullscreenText, DurationFrames: 180,
			Headline: "", Body: sliceRunes(narr, 40, 100),
			BgColor: "#1a1a2e", AccentColor: "#4ECDC4", TextColor: DefaultTextColor, Sfx: script.SfxNone,
		},
	}
}

func (n *Normalizer) repairSegment(sec *script.Section, j int, raw map[string]any, ci int, report *NormalizeReport) script.Segment {
	seg := script.Segment{}
	fill := func(dst *string, chain FieldChain, def string) {
		if v, ok := chain.String(raw); ok {
			*dst = v
			return
		}
		*dst = def
		report.RepairedFields++
	}

	fill(&seg.ID, FieldChain{"id"}, segmentID(sec.ID, j+1))

	t, _ := FieldChain{"type"}.String(raw)
	seg.Type = script.SceneType(strings.ToLower(t))
	if !seg.Type.IsValid() {
		if t != "" {
			report.UnknownTypes++
		}
		seg.Type = script.SceneFullscreenText
		report.RepairedFields++
	}

	if d, ok := durationChain.Number(raw); ok && int(math.Round(d)) >= script.MinFloorFrames {
		seg.DurationFrames = int(math.Round(d))
	} else {
		seg.DurationFrames = RepairedSegmentFrames
		report.RepairedFields++
	}

	fill(&seg.BgColor, FieldChain{"bgColor"}, n.palette.Background(ci))
	fill(&seg.AccentColor, FieldChain{"accentColor"}, n.palette.Accent(ci))
	fill(&seg.TextColor, FieldChain{"textColor"}, DefaultTextColor)

	// caption 先于 headline 补全，使用原始的 headline/body
	fill(&seg.Caption, CaptionChain, "")
	fill(&seg.Headline, HeadlineChain, sec.Label)
	fill(&seg.Body, BodyChain, seg.Caption)

	sfx, _ := FieldChain{"sfx"}.String(raw)
	seg.Sfx = script.SfxType(strings.ToLower(sfx))
	if !seg.Sfx.IsValid() {
		seg.Sfx = DefaultSfx(seg.Type)
		report.RepairedFields++
	}
	seg.SfxFile, _ = FieldChain{"sfxFile"}.String(raw)
	seg.ImageFile, _ = FieldChain{"imageFile", "image"}.String(raw)

	parsePayload(&seg, raw)
	if EnsurePayload(&seg) {
		report.PayloadsFilled++
	}
	return seg
}

// parsePayload 读取调用方提供的类型数据（含别名形式）
func parsePayload(seg *script.Segment, raw map[string]any) {
	seg.Numbers = parseNumbers(seg, raw)
	seg.ChartData = parseChart(seg, raw)
	seg.Keywords = FieldChain{"keywords"}.Strings(raw)
	seg.ListItems = listItemsChain.Strings(raw)
	seg.Items = itemsChain.Strings(raw)
	if seg.Type == script.SceneListReveal && len(seg.ListItems) == 0 {
		seg.ListItems = seg.Items
	}
	seg.ComparisonLeft = parseSide(raw, comparisonLeftChain)
	seg.ComparisonRight = parseSide(raw, comparisonRightChain)
}

func parseNumbers(seg *script.Segment, raw map[string]any) []script.NumberItem {
	if l, ok := asList(raw["numbers"]); ok && len(l) > 0 {
		return numberItems(l, seg.AccentColor)
	}
	if seg.Type.Payload() != script.PayloadNumbers {
		return nil
	}
	if l, ok := asList(raw["data"]); ok && len(l) > 0 {
		return numberItems(l, seg.AccentColor)
	}
	_, hasStart := raw["startValue"]
	if end, ok := (FieldChain{"endValue"}).Number(raw); ok && hasStart {
		label, ok := (FieldChain{"label"}).String(raw)
		if !ok {
			label = "수치"
		}
		unit, _ := FieldChain{"suffix", "unit"}.String(raw)
		return []script.NumberItem{{Label: label, Value: end, Unit: unit, Color: seg.AccentColor}}
	}
	return nil
}

func numberItems(l []any, accent string) []script.NumberItem {
	var out []script.NumberItem
	for i, e := range l {
		m, ok := asMap(e)
		if !ok {
			if v, ok := asNumber(e); ok {
				out = append(out, script.NumberItem{Label: itemLabel(i), Value: v, Color: accent})
			}
			continue
		}
		item := script.NumberItem{Color: accent}
		if s, ok := (FieldChain{"label", "name"}).String(m); ok {
			item.Label = s
		} else {
			item.Label = itemLabel(i)
		}
		item.Value, _ = FieldChain{"value", "endValue"}.Number(m)
		item.Unit, _ = FieldChain{"unit", "suffix"}.String(m)
		if c, ok := (FieldChain{"color"}).String(m); ok {
			item.Color = c
		}
		out = append(out, item)
	}
	return out
}

func parseChart(seg *script.Segment, raw map[string]any) *script.ChartData {
	v, ok := raw["chartData"]
	if !ok || v == nil {
		if k := seg.Type.Payload(); k != script.PayloadChart && k != script.PayloadSlices {
			return nil
		}
		v, ok = raw["data"]
		if !ok {
			return nil
		}
	}
	cd := &script.ChartData{}
	switch t := v.(type) {
	case map[string]any:
		cd.Type, _ = FieldChain{"type"}.String(t)
		cd.Title, _ = FieldChain{"title"}.String(t)
		cd.Unit, _ = FieldChain{"unit"}.String(t)
		if l, ok := asList(t["data"]); ok {
			cd.Data = chartPoints(l)
		}
	case []any:
		cd.Data = chartPoints(t)
	default:
		return nil
	}
	if cd.Type == "" && seg.Type.Payload() != script.PayloadNone {
		cd.Type = chartKind(seg.Type)
	}
	if cd.Title == "" {
		cd.Title = seg.Headline
	}
	return cd
}

func chartPoints(l []any) []script.ChartPoint {
	var out []script.ChartPoint
	for i, e := range l {
		m, ok := asMap(e)
		if !ok {
			continue
		}
		p := script.ChartPoint{}
		if s, ok := (FieldChain{"label", "name", "x"}).String(m); ok {
			p.Label = s
		} else {
			p.Label = itemLabel(i)
		}
		p.Value, _ = FieldChain{"value", "y"}.Number(m)
		p.Color, _ = FieldChain{"color"}.String(m)
		out = append(out, p)
	}
	return out
}

func parseSide(raw map[string]any, chain FieldChain) *script.ComparisonSide {
	v, ok := chain.Value(raw)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		side := &script.ComparisonSide{}
		side.Label, _ = FieldChain{"label", "title"}.String(t)
		side.Value, _ = FieldChain{"value", "text"}.String(t)
		return side
	case string:
		return &script.ComparisonSide{Label: t, Value: t}
	}
	return nil
}

// scaleToTarget 全局缩放到目标帧数
//
// 按比例缩放（每个不低于 FillFloorFrames），残差均摊（每个不低于 MinFloorFrames），
// 最后由末尾修正保证总和精确等于目标。返回是否做了缩放。
func scaleToTarget(doc *script.Document, target int) bool {
	refs := segmentRefs(doc)
	sum := doc.SumFrames()
	if len(refs) == 0 || sum == target {
		return false
	}
	if sum > 0 {
		ratio := float64(target) / float64(sum)
		for _, r := range refs {
			seg := r.of(doc)
			seg.DurationFrames = max(script.FillFloorFrames, int(math.Round(float64(seg.DurationFrames)*ratio)))
		}
	}

	residual := target - doc.SumFrames()
	if residual != 0 {
		per := floorDiv(residual, len(refs))
		leftover := residual - per*len(refs)
		for _, r := range refs {
			seg := r.of(doc)
			seg.DurationFrames = max(script.MinFloorFrames, seg.DurationFrames+per)
		}
		last := refs[len(refs)-1].of(doc)
		last.DurationFrames = max(script.MinFloorFrames, last.DurationFrames+leftover)
	}

	applyTerminalCorrection(doc, target, script.MinFloorFrames)
	return true
}

// AudioFileFor 章节音频文件的约定路径
func AudioFileFor(id script.SectionID) string {
	return "voiceover/" + string(id) + ".mp3"
}

// CaptionsFileFor 章节字幕文件的约定路径
func CaptionsFileFor(id script.SectionID) string {
	return "voiceover/" + string(id) + "-subs.json"
}
