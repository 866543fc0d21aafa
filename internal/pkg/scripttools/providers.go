package scripttools

import "context"

// LLMProvider 定义了调用大模型的接口
// 具体实现由调用方注入，方便单测和替换
type LLMProvider interface {
	// Generate 根据提示词生成文本
	//
	// Args:
	//   - ctx: 上下文
	//   - prompt: 提示词
	//
	// Returns:
	//   - text: 生成的文本
	//   - err: 错误信息
	Generate(ctx context.Context, prompt string) (string, error)
}

// SpeechProvider 语音合成接口
type SpeechProvider interface {
	// Synthesize 将旁白合成为音频
	//
	// Args:
	//   - ctx: 上下文
	//   - text: 旁白文本
	//
	// Returns:
	//   - result: 音频数据及可选的逐字符时间轴
	//   - err: 错误信息
	Synthesize(ctx context.Context, text string) (*SpeechResult, error)
}

// SpeechResult 语音合成结果
type SpeechResult struct {
	Audio       []byte     // MP3 数据
	ContentType string     // 通常为 audio/mpeg
	Alignment   *Alignment // 逐字符时间轴（可能为空）
	Seconds     float64    // 时长（秒），由时间轴推得，未知时为 0
}
