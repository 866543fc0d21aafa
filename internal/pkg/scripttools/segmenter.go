package scripttools

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// 句子；终止标点保留在句尾
var sentencePattern = regexp.MustCompile(`[^.!?。]+[.!?。]?`)

// minUnitRunes 短于等于该长度的片段被丢弃
const minUnitRunes = 3

// SplitSentences 将旁白切分为有序的句子单元
//
// 按 . ! ? 。 切分并保留标点，去除首尾空白，丢弃不超过 3 个字符的碎片。
// 若全部被过滤但原文非空，整段文本作为唯一单元返回。
//
// Args:
//   - text: 旁白原文
//
// Returns:
//   - []string: 句子列表，text 为空时返回 nil
func SplitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var units []string
	for _, m := range sentencePattern.FindAllString(trimmed, -1) {
		u := strings.TrimSpace(m)
		if utf8.RuneCountInString(u) > minUnitRunes {
			units = append(units, u)
		}
	}
	if len(units) == 0 {
		return []string{trimmed}
	}
	return units
}

// truncateRunes 取前 n 个字符
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// sliceRunes 取 [from, to) 范围内的字符，越界时截断
func sliceRunes(s string, from, to int) string {
	r := []rune(s)
	if from >= len(r) {
		return ""
	}
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}
