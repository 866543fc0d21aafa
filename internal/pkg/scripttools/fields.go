package scripttools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FieldChain 按顺序尝试的字段别名，取第一个非空值
type FieldChain []string

// 子场景文本字段的别名链
var (
	CaptionChain  = FieldChain{"caption", "headline", "body"}
	HeadlineChain = FieldChain{"headline", "title", "label"}
	BodyChain     = FieldChain{"body", "text", "content"}

	sectionLabelChain     = FieldChain{"label", "title"}
	sectionNarrationChain = FieldChain{"narrationText", "narration", "script", "text"}
	subScenesChain        = FieldChain{"subScenes", "subscenes", "scenes", "segments"}
	durationChain         = FieldChain{"durationFrames", "durationInFrames", "frames"}
	listItemsChain        = FieldChain{"listItems", "list", "bullets"}
	itemsChain            = FieldChain{"items", "levels"}
	comparisonLeftChain   = FieldChain{"comparisonLeft", "left"}
	comparisonRightChain  = FieldChain{"comparisonRight", "right"}
)

// String 返回第一个非空字符串值（数字会被格式化）
func (c FieldChain) String(m map[string]any) (string, bool) {
	for _, k := range c {
		if s, ok := asString(m[k]); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Value 返回第一个存在且非 nil 的原始值
func (c FieldChain) Value(m map[string]any) (any, bool) {
	for _, k := range c {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Number 返回第一个可解析为数字的值
func (c FieldChain) Number(m map[string]any) (float64, bool) {
	for _, k := range c {
		if f, ok := asNumber(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

// Strings 返回第一个非空字符串列表
func (c FieldChain) Strings(m map[string]any) []string {
	for _, k := range c {
		if l := asStrings(m[k]); len(l) > 0 {
			return l
		}
	}
	return nil
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// asStrings 接受字符串数组或逗号分隔的字符串
func asStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s, ok := asString(e); ok && s != "" {
				out = append(out, s)
			} else if m, ok := e.(map[string]any); ok {
				if s, ok := (FieldChain{"text", "label", "title", "value"}).String(m); ok {
					out = append(out, s)
				}
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}
