package scripttools

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Caption 一条字幕
type Caption struct {
	Text    string `json:"text"`
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
}

// Alignment TTS 返回的逐字符时间轴
type Alignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds"`
}

const (
	maxCaptionRunes    = 30
	defaultCaptionMs   = 10000
	minCaptionRunes    = 2
	captionSplitWindow = 5
)

var (
	captionSentencePattern = regexp.MustCompile(`[^.?!。]+[.?!。]?`)
	captionClausePattern   = regexp.MustCompile(`[^.?!。,]+[.?!。,]?`)
)

// BuildCaptionsFromAlignment 根据逐字符时间轴生成句级字幕
//
// 超过 30 个字符的句子在中点附近的逗号或空格处拆成两行，时间按字符比例切分。
func BuildCaptionsFromAlignment(a Alignment, text string) []Caption {
	sentences := captionSentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	var out []Caption
	charIndex := 0
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		n := utf8.RuneCountInString(trimmed)
		if n >= minCaptionRunes {
			start := charIndex
			end := min(charIndex+n-1, len(a.Characters)-1)
			if start < len(a.StartTimes) && end >= 0 && end < len(a.EndTimes) {
				startMs := int(math.Round(a.StartTimes[start] * 1000))
				endMs := int(math.Round(a.EndTimes[end] * 1000))
				out = append(out, splitCaption(trimmed, startMs, endMs)...)
			}
		}
		charIndex += utf8.RuneCountInString(sentence)
	}
	return out
}

func splitCaption(text string, startMs, endMs int) []Caption {
	r := []rune(text)
	if len(r) <= maxCaptionRunes {
		return []Caption{{Text: text, StartMs: startMs, EndMs: endMs}}
	}
	mid := len(r) / 2
	from := max(0, mid-captionSplitWindow)
	split := mid
	if c := indexRune(r, ',', from); c > 0 {
		split = c + 1
	} else if s := indexRune(r, ' ', from); s > 0 {
		split = s
	}
	midMs := startMs + int(math.Round(float64(endMs-startMs)*float64(split)/float64(len(r))))

	var out []Caption
	if first := strings.TrimSpace(string(r[:split])); first != "" {
		out = append(out, Caption{Text: first, StartMs: startMs, EndMs: midMs})
	}
	if second := strings.TrimSpace(string(r[split:])); second != "" {
		out = append(out, Caption{Text: second, StartMs: midMs, EndMs: endMs})
	}
	return out
}

func indexRune(r []rune, target rune, from int) int {
	for i := from; i < len(r); i++ {
		if r[i] == target {
			return i
		}
	}
	return -1
}

// BuildFallbackCaptions 无时间轴时按字数比例估算字幕
//
// totalMs <= 0 时使用 10 秒。
func BuildFallbackCaptions(text string, totalMs int) []Caption {
	if totalMs <= 0 {
		totalMs = defaultCaptionMs
	}
	clauses := captionClausePattern.FindAllString(text, -1)
	if len(clauses) == 0 {
		clauses = []string{text}
	}
	total := 0
	for _, c := range clauses {
		total += utf8.RuneCountInString(strings.TrimSpace(c))
	}
	if total == 0 {
		return nil
	}

	var out []Caption
	cur := 0
	for _, c := range clauses {
		trimmed := strings.TrimSpace(c)
		n := utf8.RuneCountInString(trimmed)
		if n < minCaptionRunes {
			continue
		}
		d := int(math.Round(float64(n) / float64(total) * float64(totalMs)))
		out = append(out, Caption{Text: trimmed, StartMs: cur, EndMs: cur + d})
		cur += d
	}
	return out
}

// MillisFromBytes 按码率估算音频毫秒数
func (e *Estimator) MillisFromBytes(size int64) int {
	if size <= 0 {
		return 0
	}
	return int(math.Round(float64(size) / float64(e.bytesPerSecond) * 1000))
}
