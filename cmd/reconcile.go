package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"reel/internal/config"
	"reel/internal/model/script"
	"reel/internal/pkg/ffmpeg"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/scripttools"
	"reel/internal/pkg/storage"
	"reel/internal/pkg/storage/local"
)

// reconcileOptions reconcile 子命令参数
type reconcileOptions struct {
	input         string
	output        string
	minutes       float64
	targetFrames  int
	voiceDir      string
	format        string
	synthesisMode string
	report        bool
	probe         bool
}

// durationProber 读取本地音频实测时长，由 ffmpeg.Prober 实现
type durationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

var reconcileOpts reconcileOptions

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Normalize a raw script and reconcile frames offline",
	Long: `Read a raw LLM script (JSON or YAML), repair it into the canonical
9-section document, synthesize scenes and redistribute frames so the total
equals the target exactly. Audio sizes are read from --voice-dir when given,
using each section's audioFile relative to that directory.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	flags := reconcileCmd.Flags()
	flags.StringVarP(&reconcileOpts.input, "input", "i", "-", "raw script file (- for stdin)")
	flags.StringVarP(&reconcileOpts.output, "output", "o", "-", "output file (- for stdout)")
	flags.Float64Var(&reconcileOpts.minutes, "minutes", 0, "target duration in minutes (default: pipeline.default_duration_minutes)")
	flags.IntVar(&reconcileOpts.targetFrames, "target-frames", 0, "target frames, overrides --minutes")
	flags.StringVar(&reconcileOpts.voiceDir, "voice-dir", "", "asset root holding voiceover/<SECTION>.mp3")
	flags.StringVar(&reconcileOpts.format, "format", "json", "output format (json/yaml)")
	flags.StringVar(&reconcileOpts.synthesisMode, "synthesis-mode", "", "scene synthesis mode (empty/always/never)")
	flags.BoolVar(&reconcileOpts.report, "report", false, "print the normalize and finalize reports to stderr")
	flags.BoolVar(&reconcileOpts.probe, "probe", false, "measure voice durations with ffprobe instead of file size")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	in, err := openInput(reconcileOpts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(reconcileOpts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	var reports io.Writer
	if reconcileOpts.report {
		reports = os.Stderr
	}
	var prober durationProber
	if reconcileOpts.probe {
		p := ffmpeg.NewProber()
		if !p.Available() {
			return fmt.Errorf("--probe requires ffprobe in PATH or FFPROBE_PATH")
		}
		prober = p
	}
	return reconcileStream(cmd.Context(), reconcileOpts, cfg.Pipeline, prober, in, out, reports)
}

// reconcileStream 读取原始脚本，定稿后写出；reports 非空时写出报告
func reconcileStream(ctx context.Context, opts reconcileOptions, pipeline config.PipelineConfig, prober durationProber, in io.Reader, out, reports io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if isYAMLPath(opts.input) {
		if raw, err = yamlToJSON(raw); err != nil {
			return err
		}
	}

	target := opts.targetFrames
	if target <= 0 {
		target = pipeline.TargetFrames(opts.minutes)
	}
	if target < script.MinTargetFrames {
		return fmt.Errorf("target %d frames is below minimum %d", target, script.MinTargetFrames)
	}
	mode := opts.synthesisMode
	if mode == "" {
		mode = pipeline.SynthesisMode
	}

	engine := scripttools.NewEngine(scripttools.EngineOptions{
		FPS:            pipeline.FPS,
		BytesPerSecond: pipeline.AudioBytesPerSecond,
		CharsPerSecond: pipeline.CharsPerSecond,
		Tokenizer:      newTokenizer(),
	})
	normalized, nr := engine.Normalizer.NormalizeJSON(raw, target)

	assets, err := voiceAssets(ctx, opts.voiceDir, normalized, prober)
	if err != nil {
		return err
	}
	doc, fr := engine.Finalize(normalized, target, assets, scripttools.ParseSynthesisMode(mode))

	rlog := logger.Component("reconcile")
	rlog.Info().
		Int("target_frames", target).
		Int("total_frames", doc.TotalDurationFrames).
		Int("segments", doc.SegmentCount()).
		Bool("parse_failed", nr.ParseFailed).
		Int("issues", len(fr.Issues)).
		Msg("script reconciled")

	if err := writeDocument(out, doc, opts.format); err != nil {
		return err
	}
	if reports != nil {
		enc := json.NewEncoder(reports)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"normalize": nr, "finalize": fr}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

// voiceAssets 按各章节的 audioFile 读取语音目录下的音频大小，prober 非空时同时读取实测时长
func voiceAssets(ctx context.Context, dir string, doc *script.Document, prober durationProber) (map[script.SectionID]scripttools.AudioAsset, error) {
	if dir == "" {
		return nil, nil
	}
	store, err := local.NewLocalStorage(dir, "")
	if err != nil {
		return nil, fmt.Errorf("open voice dir: %w", err)
	}

	keys := make([]string, len(doc.Sections))
	stat := make([]string, 0, len(doc.Sections))
	for i, sec := range doc.Sections {
		keys[i] = strings.TrimPrefix(sec.AudioFile, "/")
		if keys[i] != "" {
			stat = append(stat, keys[i])
		}
	}
	infos, err := storage.StatAll(ctx, store, stat, 0)
	if err != nil {
		return nil, err
	}

	assets := make(map[script.SectionID]scripttools.AudioAsset, len(keys))
	for i, sec := range doc.Sections {
		key := keys[i]
		asset := scripttools.AudioAsset{Key: key}
		if info, ok := infos[key]; ok && key != "" {
			asset.Size = info.Size
			asset.Exists = true
			if prober != nil {
				seconds, err := prober.Duration(ctx, filepath.Join(dir, key))
				if err != nil {
					log.Warn().Err(err).Str("section_id", string(sec.ID)).Msg("probe failed, using file size")
				} else {
					asset.Seconds = seconds
				}
			}
		}
		assets[sec.ID] = asset
	}
	return assets, nil
}
