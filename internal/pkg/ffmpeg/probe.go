package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Prober 通过 ffprobe 读取音频实测时长
type Prober struct {
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewProber 创建 Prober，可用 FFPROBE_PATH 覆盖可执行文件路径
func NewProber() *Prober {
	path := os.Getenv("FFPROBE_PATH")
	if path == "" {
		path = "ffprobe"
	}
	return &Prober{ffprobePath: path}
}

// Available ffprobe 是否可执行
func (p *Prober) Available() bool {
	_, err := exec.LookPath(p.ffprobePath)
	return err == nil
}

// Duration 返回音频时长（秒）
func (p *Prober) Duration(ctx context.Context, audioPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", audioPath, err)
	}
	return parseDuration(output)
}

// parseDuration 解析 ffprobe -of json 的输出
func parseDuration(output []byte) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	raw := strings.TrimSpace(probe.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %v", d)
	}
	return d, nil
}
