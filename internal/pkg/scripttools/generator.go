package scripttools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var toneStyles = map[string]string{
	"documentary": "다큐멘터리처럼 웅장하고 몰입감 있는 말투",
	"news":        "뉴스 앵커처럼 차분하고 객관적인 말투",
	"anchor":      "뉴스 앵커처럼 차분하고 객관적인 말투",
	"casual":      "친근한 유튜버처럼 편안한 말투",
	"youtuber":    "친근한 유튜버처럼 편안한 말투",
	"lecture":     "전문 강의처럼 논리적이고 체계적인 말투",
	"dramatic":    "긴장감 넘치는 드라마틱한 말투",
}

var categoryNames = map[string]string{
	"economy":       "경제/재테크",
	"tech":          "기술/IT",
	"society":       "사회/이슈",
	"science":       "과학/우주",
	"health":        "건강/의학",
	"history":       "역사/문화",
	"lifestyle":     "라이프스타일",
	"education":     "교육/학습",
	"entertainment": "엔터테인먼트",
	"politics":      "정치/국제",
	"realestate":    "부동산",
	"current":       "시사",
	"finance":       "금융",
	"policy":        "정책",
}

// GenerateRequest 脚本生成参数
type GenerateRequest struct {
	Topic           string
	Category        string
	Tone            string
	DurationMinutes int
}

// ErrEmptyScript LLM 返回内容中没有可用的脚本
var ErrEmptyScript = errors.New("llm returned no usable script")

// ScriptGenerator 调用 LLM 生成原始脚本
type ScriptGenerator struct {
	llm            LLMProvider
	fps            int
	charsPerSecond float64
}

// NewScriptGenerator 创建脚本生成器
func NewScriptGenerator(llm LLMProvider, fps int, charsPerSecond float64) *ScriptGenerator {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if charsPerSecond <= 0 {
		charsPerSecond = DefaultCharsPerSecond
	}
	return &ScriptGenerator{llm: llm, fps: fps, charsPerSecond: charsPerSecond}
}

// Generate 生成原始脚本文本（JSON），结构由 Normalizer 负责修复
func (g *ScriptGenerator) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	if g.llm == nil {
		return nil, errors.New("llm provider not configured")
	}
	if strings.TrimSpace(req.Topic) == "" {
		return nil, errors.New("topic is required")
	}
	text, err := g.llm.Generate(ctx, g.BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}
	m := jsonObjectPattern.FindString(text)
	if m == "" || !strings.Contains(m, "sections") {
		return nil, ErrEmptyScript
	}
	return []byte(m), nil
}

// BuildPrompt 构造生成提示词
func (g *ScriptGenerator) BuildPrompt(req GenerateRequest) string {
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 10
	}
	sections := 9
	targetFrames := duration * 60 * g.fps
	framesPerSection := targetFrames / sections
	totalChars := int(float64(duration*60) * g.charsPerSecond)
	charsPerSection := totalChars / sections

	tone := toneStyles[req.Tone]
	if tone == "" {
		tone = req.Tone
	}
	category := categoryNames[req.Category]
	if category == "" {
		category = req.Category
	}

	var b strings.Builder
	b.WriteString("유튜브 롱폼 영상 대본을 JSON으로 생성하세요.\n\n")
	fmt.Fprintf(&b, "주제: %s\n카테고리: %s\n말투: %s\n", req.Topic, category, tone)
	fmt.Fprintf(&b, "영상 길이: %d분 (총 %d프레임, %dfps)\n\n", duration, targetFrames, g.fps)
	b.WriteString("[필수 규칙 - 나레이션 길이]\n")
	fmt.Fprintf(&b, "- 한국어 TTS는 1초에 약 %g자를 읽습니다.\n", g.charsPerSecond)
	fmt.Fprintf(&b, "- 전체 나레이션은 최소 %d자, 각 섹션의 narrationText는 최소 %d자 이상이어야 합니다.\n", totalChars, charsPerSection)
	b.WriteString("- 구체적인 예시, 통계, 비유, 설명을 풍부하게 포함하세요.\n\n")
	b.WriteString("절대 규칙:\n")
	b.WriteString("1. JSON만 출력. 다른 텍스트 금지\n")
	b.WriteString("2. 섹션 9개 필수: HOOK, PROBLEM, BACKGROUND, ANALYSIS_1, ANALYSIS_2, ANALYSIS_3, TWIST, SUMMARY, OUTRO\n")
	fmt.Fprintf(&b, "3. 각 섹션의 subScenes durationFrames 합계 = 약 %d프레임\n", framesPerSection)
	fmt.Fprintf(&b, "4. 전체 subScenes durationFrames 총합 = %d\n", targetFrames)
	b.WriteString("5. 모든 subScenes에 반드시 포함: id, type, durationFrames, headline, bgColor, accentColor, textColor, sfx, caption\n")
	fmt.Fprintf(&b, "6. bgColor는 어두운 색상 (%s 중 선택)\n", strings.Join(RepairPalette.Backgrounds, ", "))
	b.WriteString("7. textColor는 항상 \"#ffffff\"\n")
	fmt.Fprintf(&b, "8. accentColor는 밝은 강조색 (%s 중 선택)\n", strings.Join(RepairPalette.Accents[:7], ", "))
	b.WriteString("9. sfx는 다음 중 선택: alarm, impact, whoosh, pop, bass-drop, reveal, typing, ding, swoosh, success\n\n")
	b.WriteString("서브씬 type별 필수 추가 필드:\n")
	b.WriteString(`- "stat-counter": numbers=[{"label":"텍스트","value":숫자,"unit":"단위","color":"#색상"}]` + "\n")
	b.WriteString(`- "chart-bar","chart-line","chart-pie": chartData={"type":"bar","title":"제목","data":[{"label":"이름","value":숫자}],"unit":"단위"}` + "\n")
	b.WriteString(`- "keyword-explosion", "emoji-rain": keywords=["단어1","단어2",...] (최소 5개)` + "\n")
	b.WriteString(`- "comparison-split": comparisonLeft={"label":"이름","value":"값"}, comparisonRight={"label":"이름","value":"값"}` + "\n")
	b.WriteString(`- "list-reveal", "timeline-progress": listItems=["항목1","항목2",...] (최소 3개)` + "\n\n")
	fmt.Fprintf(&b, `JSON 형식: {"title":"","description":"","tags":[],"hashtags":[],"topic":%q,"totalDurationFrames":%d,"sections":[{"id":"HOOK","label":"🔥 후킹","narrationText":"","subScenes":[...],"audioFile":"voiceover/HOOK.mp3"}, ...]}`, req.Topic, targetFrames)
	b.WriteString("\n\n서브씬은 섹션당 3~6개, 각 서브씬은 최소 120프레임(4초) 이상이어야 합니다.")
	return b.String()
}
