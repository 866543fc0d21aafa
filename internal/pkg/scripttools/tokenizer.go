package scripttools

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
)

// Tokenizer 分词接口，用于从句子中提取关键词
type Tokenizer interface {
	Tokens(text string) []string
}

// FieldsTokenizer 按空白切分（韩语以空格分词，足以应付测试和降级场景）
type FieldsTokenizer struct{}

// Tokens 实现 Tokenizer
func (FieldsTokenizer) Tokens(text string) []string {
	return strings.Fields(text)
}

// GseTokenizer 基于 gse 的分词器
type GseTokenizer struct {
	segmenter *gse.Segmenter
}

// NewGseTokenizer 加载默认词典创建分词器
func NewGseTokenizer() (*GseTokenizer, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, err
	}
	return &GseTokenizer{segmenter: &seg}, nil
}

// Tokens 实现 Tokenizer，先用 gse 切分，再按空白细分
func (t *GseTokenizer) Tokens(text string) []string {
	if t == nil || t.segmenter == nil {
		return FieldsTokenizer{}.Tokens(text)
	}
	var out []string
	for _, tok := range t.segmenter.Cut(text, true) {
		out = append(out, strings.Fields(tok)...)
	}
	return out
}

// ExtractKeywords 从句子中提取最多 n 个关键词
//
// 去掉首尾标点，跳过单字、纯数字和重复词，保持出现顺序。
func ExtractKeywords(tok Tokenizer, text string, n int) []string {
	if tok == nil || n <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, raw := range tok.Tokens(text) {
		w := strings.TrimFunc(raw, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
		})
		if utf8.RuneCountInString(w) < 2 || isNumeric(w) || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
