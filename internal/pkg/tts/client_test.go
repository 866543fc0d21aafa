package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"reel/internal/config"
)

func TestGenerateVoiceWithTimestamps(t *testing.T) {
	Convey("调用 with-timestamps 接口", t, func() {
		var gotPath, gotKey string
		var gotBody synthesizeRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("xi-api-key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"audio_base64": base64.StdEncoding.EncodeToString([]byte("mp3")),
				"alignment": map[string]any{
					"characters":                    []string{"안", "녕"},
					"character_start_times_seconds": []float64{0, 0.2},
					"character_end_times_seconds":   []float64{0.2, 0.5},
				},
			})
		}))
		defer srv.Close()

		c, err := NewClient(config.TTSConfig{APIKey: "key", VoiceID: "v1", BaseURL: srv.URL})
		So(err, ShouldBeNil)

		res, err := c.GenerateVoiceWithTimestamps(context.Background(), "안녕")
		So(err, ShouldBeNil)
		So(gotPath, ShouldEqual, "/v1/text-to-speech/v1/with-timestamps")
		So(gotKey, ShouldEqual, "key")
		So(gotBody.ModelID, ShouldEqual, DefaultModelID)
		So(gotBody.Text, ShouldEqual, "안녕")
		So(string(res.AudioData), ShouldEqual, "mp3")
		So(res.Alignment.Characters, ShouldResemble, []string{"안", "녕"})
		So(res.Duration, ShouldEqual, 0.5)
	})

	Convey("WithVoice 切换音色", t, func() {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(`{"audio_base64":"bXAz"}`))
		}))
		defer srv.Close()

		c, _ := NewClient(config.TTSConfig{APIKey: "key", VoiceID: "v1", BaseURL: srv.URL})
		res, err := c.WithVoice("v2").GenerateVoiceWithTimestamps(context.Background(), "텍스트")
		So(err, ShouldBeNil)
		So(gotPath, ShouldEqual, "/v1/text-to-speech/v2/with-timestamps")
		So(res.Alignment, ShouldBeNil)
		So(res.Duration, ShouldEqual, 0)
	})

	Convey("非 200 返回错误", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c, _ := NewClient(config.TTSConfig{APIKey: "key", VoiceID: "v1", BaseURL: srv.URL})
		_, err := c.GenerateVoiceWithTimestamps(context.Background(), "텍스트")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "429")
	})

	Convey("缺少 api key 或 voice id", t, func() {
		_, err := NewClient(config.TTSConfig{VoiceID: "v"})
		So(err, ShouldNotBeNil)
		_, err = NewClient(config.TTSConfig{APIKey: "k"})
		So(err, ShouldNotBeNil)
	})
}

func TestParseAlignment(t *testing.T) {
	Convey("兼容包在 characters 里的时间轴", t, func() {
		raw := json.RawMessage(`{"characters":{"characters":["a"],"character_start_times_seconds":[0],"character_end_times_seconds":[1]}}`)
		a := parseAlignment(raw)
		So(a, ShouldNotBeNil)
		So(a.Duration(), ShouldEqual, 1)
	})

	Convey("长度不一致时忽略", t, func() {
		raw := json.RawMessage(`{"characters":["a","b"],"character_start_times_seconds":[0],"character_end_times_seconds":[1]}`)
		So(parseAlignment(raw), ShouldBeNil)
		So(parseAlignment(nil), ShouldBeNil)
	})
}
