package script

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/config"
	"reel/internal/model/script"
	"reel/internal/pkg/cache"
	"reel/internal/pkg/id"
	"reel/internal/pkg/scripttools"
	"reel/internal/pkg/storage/local"
	scriptrepo "reel/internal/repository/script"
)

const rawScript = `{
  "title": "금리 인상의 진실",
  "sections": [
    {
      "id": "HOOK",
      "narrationText": "금리가 또 올랐습니다. 대출 이자가 얼마나 늘어날까요?",
      "subScenes": [{"type": "breaking-banner", "headline": "속보", "durationFrames": 200}]
    },
    {
      "id": "PROBLEM",
      "narrationText": "문제는 가계 부채입니다. 부채 비율이 역대 최고 수준입니다."
    }
  ]
}`

type fakeRepo struct {
	mu   sync.Mutex
	docs map[string]*script.Document
}

func newFakeRepo() *fakeRepo { return &fakeRepo{docs: map[string]*script.Document{}} }

func (r *fakeRepo) Create(ctx context.Context, doc *script.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id string) (*script.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, scriptrepo.ErrNotFound
	}
	return doc.Clone(), nil
}

func (r *fakeRepo) Replace(ctx context.Context, doc *script.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return scriptrepo.ErrNotFound
	}
	r.docs[doc.ID] = doc.Clone()
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter scriptrepo.ListFilter) ([]*script.Document, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*script.Document
	for _, d := range r.docs {
		if filter.Status == "" || d.Status == filter.Status {
			out = append(out, d.Clone())
		}
	}
	total := int64(len(out))
	if int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	locked map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, locked: map[string]bool{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked[key] {
		return nil, cache.ErrLocked
	}
	c.locked[key] = true
	return func(context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.locked, key)
		return nil
	}, nil
}

type fakeLLM struct{ reply string }

func (l *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.reply, nil
}

type fakeSpeech struct {
	mu    sync.Mutex
	calls int
	voice string
}

func (s *fakeSpeech) Synthesize(ctx context.Context, text string) (*scripttools.SpeechResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &scripttools.SpeechResult{Audio: make([]byte, 32000), ContentType: "audio/mpeg", Seconds: 3}, nil
}

func (s *fakeSpeech) ForVoice(voiceID string) scripttools.SpeechProvider {
	s.voice = voiceID
	return s
}

func testPipeline() config.PipelineConfig {
	return config.PipelineConfig{
		FPS:                    30,
		AudioBytesPerSecond:    16000,
		CharsPerSecond:         5,
		DefaultDurationMinutes: 10,
		SynthesisMode:          "empty",
		CacheTTL:               time.Minute,
		LockTTL:                time.Minute,
	}
}

type fixture struct {
	svc    ScriptService
	repo   *fakeRepo
	cache  *fakeCache
	store  *local.LocalStorage
	speech *fakeSpeech
}

func newFixture(t *testing.T) *fixture {
	store, err := local.NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	f := &fixture{repo: newFakeRepo(), cache: newFakeCache(), store: store, speech: &fakeSpeech{}}
	svc, err := NewScriptService(Deps{
		Repo:     f.repo,
		Storage:  store,
		Cache:    f.cache,
		LLM:      &fakeLLM{reply: "다음은 대본입니다.\n" + rawScript + "\n끝"},
		Speech:   f.speech,
		Pipeline: testPipeline(),
	}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func TestCreateAndGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Create 规范化并保存", t, func() {
		f := newFixture(t)
		doc, report, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{DurationMinutes: 10})
		So(err, ShouldBeNil)
		So(id.IsValid(doc.ID), ShouldBeTrue)
		So(doc.Status, ShouldEqual, script.StatusNormalized)
		So(len(doc.Sections), ShouldEqual, 9)
		So(doc.TotalDurationFrames, ShouldEqual, 18000)
		So(len(report.MissingSections), ShouldEqual, 7)

		stored, err := f.repo.FindByID(ctx, doc.ID)
		So(err, ShouldBeNil)
		So(stored.Title, ShouldEqual, "금리 인상의 진실")
	})

	Convey("TargetFrames 优先于分钟数", t, func() {
		f := newFixture(t)
		doc, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{DurationMinutes: 10, TargetFrames: 9000})
		So(err, ShouldBeNil)
		So(doc.TotalDurationFrames, ShouldEqual, 9000)
	})

	Convey("目标帧数低于下限返回 ErrInvalidInput", t, func() {
		f := newFixture(t)
		_, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{TargetFrames: 300})
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
		So(f.repo.docs, ShouldBeEmpty)

		_, _, err = f.svc.Reconcile(ctx, ReconcileInput{Document: []byte(rawScript), TargetFrames: script.MinTargetFrames - 1})
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)

		final, _, err := f.svc.Reconcile(ctx, ReconcileInput{Document: []byte(rawScript), TargetFrames: script.MinTargetFrames})
		So(err, ShouldBeNil)
		So(final.TotalDurationFrames, ShouldEqual, script.MinTargetFrames)
	})

	Convey("空文档返回 ErrInvalidInput", t, func() {
		f := newFixture(t)
		_, _, err := f.svc.Create(ctx, nil, CreateInput{})
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
	})

	Convey("Generate 从 LLM 回复中提取脚本", t, func() {
		f := newFixture(t)
		doc, report, err := f.svc.Generate(ctx, GenerateInput{Topic: "금리", Category: "economy", DurationMinutes: 5})
		So(err, ShouldBeNil)
		So(report.ParseFailed, ShouldBeFalse)
		So(doc.Topic, ShouldEqual, "금리")
		So(doc.TotalDurationFrames, ShouldEqual, 9000)

		_, _, err = f.svc.Generate(ctx, GenerateInput{Topic: "  "})
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
	})
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	Convey("Finalize 按音频大小对齐时长并缓存", t, func() {
		f := newFixture(t)
		doc, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		So(err, ShouldBeNil)

		_, err = f.store.Upload(ctx, assetKey(doc.ID, "voiceover/HOOK.mp3"), strings.NewReader(strings.Repeat("a", 320000)), "audio/mpeg")
		So(err, ShouldBeNil)

		final, report, err := f.svc.Finalize(ctx, doc.ID, FinalizeInput{})
		So(err, ShouldBeNil)
		So(final.Status, ShouldEqual, script.StatusFinalized)
		So(final.TotalDurationFrames, ShouldEqual, 18000)
		So(final.SumFrames(), ShouldEqual, 18000)
		So(report.Issues, ShouldBeEmpty)
		So(report.Voices[0], ShouldResemble, scripttools.VoiceEstimate{SectionID: script.SectionHook, Frames: 600, Source: scripttools.VoiceSourceAudioSize})
		So(report.Voices[1].Source, ShouldEqual, scripttools.VoiceSourceText)
		So(report.Synthesized, ShouldContain, script.SectionProblem)

		stored, _ := f.repo.FindByID(ctx, doc.ID)
		So(stored.Status, ShouldEqual, script.StatusFinalized)

		cached, err := f.svc.Get(ctx, doc.ID)
		So(err, ShouldBeNil)
		So(cached.TotalDurationFrames, ShouldEqual, 18000)
		So(len(f.cache.data), ShouldEqual, 1)
		So(f.cache.locked, ShouldBeEmpty)
	})

	Convey("分钟数覆盖文档记录的目标帧数", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		final, _, err := f.svc.Finalize(ctx, doc.ID, FinalizeInput{DurationMinutes: 8, SynthesisMode: "never"})
		So(err, ShouldBeNil)
		So(final.TotalDurationFrames, ShouldEqual, 14400)
	})

	Convey("合成语音后使用实测时长并写入字幕", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		stored, _ := f.repo.FindByID(ctx, doc.ID)
		stored.SelectedVoiceID = "voice-kr"
		_ = f.repo.Replace(ctx, stored)

		_, report, err := f.svc.Finalize(ctx, doc.ID, FinalizeInput{Voice: true})
		So(err, ShouldBeNil)
		So(f.speech.calls, ShouldEqual, 9)
		So(f.speech.voice, ShouldEqual, "voice-kr")
		for _, v := range report.Voices {
			So(v.Source, ShouldEqual, scripttools.VoiceSourceMeasured)
			So(v.Frames, ShouldEqual, 90)
		}

		rc, err := f.store.Download(ctx, assetKey(doc.ID, "voiceover/HOOK-subs.json"))
		So(err, ShouldBeNil)
		data, _ := io.ReadAll(rc)
		rc.Close()
		var captions []scripttools.Caption
		So(json.Unmarshal(data, &captions), ShouldBeNil)
		So(captions, ShouldNotBeEmpty)
		So(captions[0].StartMs, ShouldEqual, 0)
		So(captions[len(captions)-1].EndMs, ShouldBeBetweenOrEqual, 2990, 3010)
	})

	Convey("文档不存在", t, func() {
		f := newFixture(t)
		_, _, err := f.svc.Finalize(ctx, "missing", FinalizeInput{})
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)

		_, err = f.svc.Get(ctx, "missing")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("参数不同的并发定稿不共享结果", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})

		inputs := []FinalizeInput{
			{SynthesisMode: "never"},
			{DurationMinutes: 8, SynthesisMode: "never"},
		}
		want := []int{18000, 14400}
		type outcome struct {
			doc *script.Document
			err error
		}
		outcomes := make([]outcome, len(inputs))
		var wg sync.WaitGroup
		for i, in := range inputs {
			wg.Add(1)
			go func(i int, in FinalizeInput) {
				defer wg.Done()
				d, _, err := f.svc.Finalize(ctx, doc.ID, in)
				outcomes[i] = outcome{doc: d, err: err}
			}(i, in)
		}
		wg.Wait()

		for i, o := range outcomes {
			if o.err != nil {
				So(errors.Is(o.err, ErrBusy), ShouldBeTrue)
				continue
			}
			So(o.doc.TotalDurationFrames, ShouldEqual, want[i])
		}
	})

	Convey("合并键包含定稿参数", t, func() {
		a := finalizeFlightKey("doc-1", FinalizeInput{})
		So(finalizeFlightKey("doc-1", FinalizeInput{}), ShouldEqual, a)
		So(finalizeFlightKey("doc-2", FinalizeInput{}), ShouldNotEqual, a)
		So(finalizeFlightKey("doc-1", FinalizeInput{DurationMinutes: 8}), ShouldNotEqual, a)
		So(finalizeFlightKey("doc-1", FinalizeInput{SynthesisMode: "always"}), ShouldNotEqual, a)
		So(finalizeFlightKey("doc-1", FinalizeInput{Voice: true}), ShouldNotEqual, a)
	})

	Convey("调用方已取消时不等待合并执行", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		f.cache.locked[cache.ScriptLockKey(doc.ID)] = true

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := f.svc.Finalize(cctx, doc.ID, FinalizeInput{})
		So(errors.Is(err, context.Canceled) || errors.Is(err, ErrBusy), ShouldBeTrue)
	})

	Convey("目标帧数过小时拒绝定稿", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		_, _, err := f.svc.Finalize(ctx, doc.ID, FinalizeInput{DurationMinutes: 0.1})
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
	})

	Convey("锁被其他进程持有时返回 ErrBusy", t, func() {
		f := newFixture(t)
		doc, _, _ := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		f.cache.locked[cache.ScriptLockKey(doc.ID)] = true

		_, _, err := f.svc.Finalize(ctx, doc.ID, FinalizeInput{})
		So(errors.Is(err, ErrBusy), ShouldBeTrue)
	})
}

func TestReconcileAndList(t *testing.T) {
	ctx := context.Background()

	Convey("无状态定稿不落库", t, func() {
		f := newFixture(t)
		final, report, err := f.svc.Reconcile(ctx, ReconcileInput{
			Document:     []byte(rawScript),
			TargetFrames: 12000,
			VoiceFrames:  map[script.SectionID]int{script.SectionHook: 450},
		})
		So(err, ShouldBeNil)
		So(final.TotalDurationFrames, ShouldEqual, 12000)
		So(report.Voices[0].Frames, ShouldEqual, 450)
		So(report.Issues, ShouldBeEmpty)
		So(f.repo.docs, ShouldBeEmpty)
	})

	Convey("List 使用默认分页", t, func() {
		f := newFixture(t)
		for i := 0; i < 3; i++ {
			_, _, _ = f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		}
		docs, total, err := f.svc.List(ctx, scriptrepo.ListFilter{Limit: 2})
		So(err, ShouldBeNil)
		So(total, ShouldEqual, 3)
		So(len(docs), ShouldEqual, 2)
	})

	Convey("缺少依赖时创建失败", t, func() {
		_, err := NewScriptService(Deps{Pipeline: testPipeline()}, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestUploadAudio(t *testing.T) {
	ctx := context.Background()

	Convey("上传音频写入 audioFile 并让定稿文档失效", t, func() {
		f := newFixture(t)
		doc, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		So(err, ShouldBeNil)
		_, _, err = f.svc.Finalize(ctx, doc.ID, FinalizeInput{})
		So(err, ShouldBeNil)
		_, err = f.svc.Get(ctx, doc.ID)
		So(err, ShouldBeNil)
		So(f.cache.data, ShouldContainKey, cache.ScriptCacheKey(doc.ID))

		up, err := f.svc.UploadAudio(ctx, doc.ID, script.SectionProblem, strings.NewReader(strings.Repeat("b", 160000)), "")
		So(err, ShouldBeNil)
		So(up.AudioFile, ShouldEqual, "voiceover/PROBLEM.mp3")
		So(up.Key, ShouldEqual, "scripts/"+doc.ID+"/voiceover/PROBLEM.mp3")
		So(up.Size, ShouldEqual, 160000)
		So(up.Frames, ShouldEqual, 300)

		exists, err := f.store.Exists(ctx, up.Key)
		So(err, ShouldBeNil)
		So(exists, ShouldBeTrue)
		So(f.cache.data, ShouldNotContainKey, cache.ScriptCacheKey(doc.ID))

		stored, err := f.repo.FindByID(ctx, doc.ID)
		So(err, ShouldBeNil)
		So(stored.Status, ShouldEqual, script.StatusNormalized)
	})

	Convey("音频按文档隔离，不影响其他文档的估算", t, func() {
		f := newFixture(t)
		a, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		So(err, ShouldBeNil)
		b, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		So(err, ShouldBeNil)

		_, err = f.svc.UploadAudio(ctx, a.ID, script.SectionHook, strings.NewReader(strings.Repeat("c", 16000*300)), "audio/mpeg")
		So(err, ShouldBeNil)

		finalB, reportB, err := f.svc.Finalize(ctx, b.ID, FinalizeInput{})
		So(err, ShouldBeNil)
		So(reportB.Voices[0].SectionID, ShouldEqual, script.SectionHook)
		So(reportB.Voices[0].Source, ShouldEqual, scripttools.VoiceSourceText)
		So(finalB.Sections[0].AudioFile, ShouldEqual, "voiceover/HOOK.mp3")

		_, reportA, err := f.svc.Finalize(ctx, a.ID, FinalizeInput{})
		So(err, ShouldBeNil)
		So(reportA.Voices[0], ShouldResemble, scripttools.VoiceEstimate{SectionID: script.SectionHook, Frames: 9000, Source: scripttools.VoiceSourceAudioSize})
	})

	Convey("未知章节返回 ErrInvalidInput", t, func() {
		f := newFixture(t)
		doc, _, err := f.svc.Create(ctx, []byte(rawScript), CreateInput{})
		So(err, ShouldBeNil)
		_, err = f.svc.UploadAudio(ctx, doc.ID, script.SectionID("INTRO"), strings.NewReader("x"), "")
		So(errors.Is(err, ErrInvalidInput), ShouldBeTrue)
	})
}
