package scripttools

import "reel/internal/model/script"

var defaultSfx = map[script.SceneType]script.SfxType{
	script.SceneTitleImpact:      script.SfxImpact,
	script.SceneStatCounter:      script.SfxDing,
	script.SceneChartBar:         script.SfxReveal,
	script.SceneChartLine:        script.SfxReveal,
	script.SceneChartPie:         script.SfxReveal,
	script.SceneQuoteHighlight:   script.SfxReveal,
	script.SceneKeywordExplosion: script.SfxPop,
	script.SceneComparisonSplit:  script.SfxImpact,
	script.SceneListReveal:       script.SfxTyping,
	script.SceneFullscreenText:   script.SfxWhoosh,
	script.SceneImageKenburns:    script.SfxNone,
	script.SceneBreakingBanner:   script.SfxAlarm,
	script.SceneDataCardStack:    script.SfxDing,
	script.SceneTransitionSwoosh: script.SfxSwoosh,
	script.SceneCTASubscribe:     script.SfxSuccess,
	script.SceneEmojiRain:        script.SfxPop,
	script.SceneMapHighlight:     script.SfxClick,
	script.SceneTimelineProgress: script.SfxTyping,
	script.SceneVerdictStamp:     script.SfxImpact,
	script.SceneRecapScroll:      script.SfxTyping,
	script.SceneGaugeMeter:       script.SfxReveal,
	script.SceneDonutChart:       script.SfxReveal,
	script.SceneNumberCounter:    script.SfxDing,
	script.SceneProgressBarMulti: script.SfxReveal,
	script.ScenePyramidChart:     script.SfxReveal,
}

// DefaultSfx 场景类型对应的默认音效
func DefaultSfx(t script.SceneType) script.SfxType {
	if s, ok := defaultSfx[t]; ok {
		return s
	}
	return script.SfxNone
}
