package script

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 帧数下限
const (
	// FillFloorFrames 初次分配（全局缩放、章节内均分）时每个子场景的最小帧数
	FillFloorFrames = 90
	// MinFloorFrames 残差修正时每个子场景的最小帧数
	MinFloorFrames = 60
	// MinTargetFrames 可接受的最小目标帧数，9 个规范章节各 MinFloorFrames
	MinTargetFrames = MinFloorFrames * 9
)

// Status 文档状态
type Status string

const (
	StatusNormalized Status = "normalized" // 已规范化，时长未对齐
	StatusFinalized  Status = "finalized"  // 已按语音时长对齐
)

// Document 一部长视频的完整脚本
// JSON 字段沿用渲染端约定的 camelCase
type Document struct {
	ID                   string    `bson:"id" json:"id,omitempty"`
	Title                string    `bson:"title" json:"title"`
	Description          string    `bson:"description" json:"description"`
	Tags                 []string  `bson:"tags" json:"tags"`
	Hashtags             []string  `bson:"hashtags" json:"hashtags"`
	Topic                string    `bson:"topic,omitempty" json:"topic,omitempty"`
	FPS                  int       `bson:"fps" json:"fps"`
	Width                int       `bson:"width" json:"width"`
	Height               int       `bson:"height" json:"height"`
	BgmFile              string    `bson:"bgm_file,omitempty" json:"bgmFile,omitempty"`
	BgmVolume            float64   `bson:"bgm_volume,omitempty" json:"bgmVolume,omitempty"`
	ThumbnailFile        string    `bson:"thumbnail_file,omitempty" json:"thumbnailFile,omitempty"`
	SelectedVoiceID      string    `bson:"selected_voice_id,omitempty" json:"selectedVoiceId,omitempty"`
	TargetDurationFrames int       `bson:"target_duration_frames" json:"targetDurationFrames"`
	TotalDurationFrames  int       `bson:"total_duration_frames" json:"totalDurationFrames"`
	Sections             []Section `bson:"sections" json:"sections"`
	Status               Status    `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt            time.Time `bson:"created_at" json:"createdAt,omitempty"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updatedAt,omitempty"`
}

// Section 章节，对应一段旁白音频
type Section struct {
	ID            SectionID `bson:"id" json:"id"`
	Label         string    `bson:"label" json:"label"`
	NarrationText string    `bson:"narration_text" json:"narrationText"`
	AudioFile     string    `bson:"audio_file" json:"audioFile"`
	CaptionsFile  string    `bson:"captions_file,omitempty" json:"captionsFile,omitempty"`
	SubScenes     []Segment `bson:"sub_scenes" json:"subScenes"`
	// Placeholder 子场景为占位卡片，等待从旁白生成
	Placeholder bool `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
}

// Segment 子场景，渲染的最小单元
type Segment struct {
	ID              string          `bson:"id" json:"id"`
	Type            SceneType       `bson:"type" json:"type"`
	DurationFrames  int             `bson:"duration_frames" json:"durationFrames"`
	Headline        string          `bson:"headline" json:"headline"`
	Body            string          `bson:"body" json:"body"`
	Caption         string          `bson:"caption" json:"caption"`
	Numbers         []NumberItem    `bson:"numbers,omitempty" json:"numbers,omitempty"`
	ChartData       *ChartData      `bson:"chart_data,omitempty" json:"chartData,omitempty"`
	Keywords        []string        `bson:"keywords,omitempty" json:"keywords,omitempty"`
	ComparisonLeft  *ComparisonSide `bson:"comparison_left,omitempty" json:"comparisonLeft,omitempty"`
	ComparisonRight *ComparisonSide `bson:"comparison_right,omitempty" json:"comparisonRight,omitempty"`
	ListItems       []string        `bson:"list_items,omitempty" json:"listItems,omitempty"`
	Items           []string        `bson:"items,omitempty" json:"items,omitempty"`
	BgColor         string          `bson:"bg_color" json:"bgColor"`
	AccentColor     string          `bson:"accent_color" json:"accentColor"`
	TextColor       string          `bson:"text_color" json:"textColor"`
	Sfx             SfxType         `bson:"sfx" json:"sfx"`
	SfxFile         string          `bson:"sfx_file,omitempty" json:"sfxFile,omitempty"`
	ImageFile       string          `bson:"image_file,omitempty" json:"imageFile,omitempty"`
}

// NumberItem 数值类场景的一项
type NumberItem struct {
	Label string  `bson:"label" json:"label"`
	Value float64 `bson:"value" json:"value"`
	Unit  string  `bson:"unit" json:"unit"`
	Color string  `bson:"color,omitempty" json:"color,omitempty"`
}

// ChartData 图表数据
type ChartData struct {
	Type  string       `bson:"type" json:"type"` // bar, line, pie, donut
	Title string       `bson:"title" json:"title"`
	Data  []ChartPoint `bson:"data" json:"data"`
	Unit  string       `bson:"unit,omitempty" json:"unit,omitempty"`
}

// ChartPoint 图表数据点
type ChartPoint struct {
	Label string  `bson:"label" json:"label"`
	Value float64 `bson:"value" json:"value"`
	Color string  `bson:"color,omitempty" json:"color,omitempty"`
}

// ComparisonSide 对比场景的一侧
type ComparisonSide struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// Collection 返回集合名称
func (d *Document) Collection() string { return "scripts" }

// EnsureIndexes 创建和维护索引
func (d *Document) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(d.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_status_updated"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// Section 按ID查找章节
func (d *Document) Section(id SectionID) *Section {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i]
		}
	}
	return nil
}

// SumFrames 所有子场景帧数之和
func (d *Document) SumFrames() int {
	total := 0
	for i := range d.Sections {
		total += d.Sections[i].SumFrames()
	}
	return total
}

// SegmentCount 子场景总数
func (d *Document) SegmentCount() int {
	n := 0
	for i := range d.Sections {
		n += len(d.Sections[i].SubScenes)
	}
	return n
}

// SumFrames 章节内子场景帧数之和
func (s *Section) SumFrames() int {
	total := 0
	for _, seg := range s.SubScenes {
		total += seg.DurationFrames
	}
	return total
}

// Clone 深拷贝文档，返回的副本与原文档不共享任何切片或指针
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Tags = cloneSlice(d.Tags)
	out.Hashtags = cloneSlice(d.Hashtags)
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i := range d.Sections {
			out.Sections[i] = d.Sections[i].Clone()
		}
	}
	return &out
}

// Clone 深拷贝章节
func (s Section) Clone() Section {
	out := s
	if s.SubScenes != nil {
		out.SubScenes = make([]Segment, len(s.SubScenes))
		for i := range s.SubScenes {
			out.SubScenes[i] = s.SubScenes[i].Clone()
		}
	}
	return out
}

// Clone 深拷贝子场景
func (s Segment) Clone() Segment {
	out := s
	out.Numbers = cloneSlice(s.Numbers)
	if s.ChartData != nil {
		cd := *s.ChartData
		cd.Data = cloneSlice(s.ChartData.Data)
		out.ChartData = &cd
	}
	if s.ComparisonLeft != nil {
		l := *s.ComparisonLeft
		out.ComparisonLeft = &l
	}
	if s.ComparisonRight != nil {
		r := *s.ComparisonRight
		out.ComparisonRight = &r
	}
	out.Keywords = cloneSlice(s.Keywords)
	out.ListItems = cloneSlice(s.ListItems)
	out.Items = cloneSlice(s.Items)
	return out
}

// cloneSlice 复制切片，保留 nil 与空切片的区别
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
