package scripttools

// Palette 背景色与强调色的循环色板
type Palette struct {
	Backgrounds []string
	Accents     []string
}

// Background 按运行计数取背景色
func (p Palette) Background(i int) string {
	return p.Backgrounds[mod(i, len(p.Backgrounds))]
}

// Accent 按运行计数取强调色
func (p Palette) Accent(i int) string {
	return p.Accents[mod(i, len(p.Accents))]
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// DefaultTextColor 默认文字颜色
const DefaultTextColor = "#ffffff"

// RepairPalette 规范化补全字段时使用的色板
var RepairPalette = Palette{
	Backgrounds: []string{"#0a0a1a", "#0d1117", "#1a1a2e", "#16213e", "#0f3460", "#1a0a2e", "#533483"},
	Accents:     []string{"#ff0033", "#ffd600", "#00e676", "#4ECDC4", "#E74C3C", "#ff6b35", "#6c5ce7", "#FF9800", "#2196F3"},
}

// SynthesisPalette 从旁白生成场景时使用的色板
var SynthesisPalette = Palette{
	Backgrounds: []string{
		"#0a0a1a", "#0d1117", "#1a1a2e", "#16213e", "#0f3460", "#1a0a2e", "#533483",
		"#1e3a5f", "#2d1b69", "#0a192f", "#1b2838", "#0e1428", "#1c1c3a", "#0b1622", "#1a0533",
	},
	Accents: []string{
		"#ff0033", "#ffd600", "#00e676", "#4ECDC4", "#E74C3C", "#ff6b35", "#6c5ce7", "#FF9800",
		"#2196F3", "#e91e63", "#26de81", "#fd9644", "#a55eea", "#45aaf2", "#fc5c65",
	},
}

// 整段占位场景的配色
const (
	placeholderBg     = "#1a1a2e"
	placeholderAccent = "#e94560"
)
