package scripttools

import (
	"fmt"

	"reel/internal/model/script"
)

// EnsurePayload 保证子场景具备其类型渲染所需的全部数据
//
// 已有数据保持不变，只补缺失部分，返回是否做了补全。
func EnsurePayload(seg *script.Segment) bool {
	switch seg.Type.Payload() {
	case script.PayloadNumbers:
		if len(seg.Numbers) == 0 {
			seg.Numbers = []script.NumberItem{{Label: "수치", Value: 0, Unit: "%", Color: seg.AccentColor}}
			return true
		}
	case script.PayloadChart:
		if seg.ChartData == nil || len(seg.ChartData.Data) == 0 {
			title := seg.Headline
			if title == "" {
				title = "차트"
			}
			seg.ChartData = &script.ChartData{
				Type:  chartKind(seg.Type),
				Title: title,
				Data:  defaultChartSeries(),
			}
			return true
		}
		if seg.ChartData.Type == "" {
			seg.ChartData.Type = chartKind(seg.Type)
			return true
		}
	case script.PayloadSlices:
		if seg.ChartData == nil || len(seg.ChartData.Data) == 0 {
			seg.ChartData = &script.ChartData{
				Type:  chartKind(seg.Type),
				Title: seg.Headline,
				Data:  defaultSlices(),
				Unit:  "%",
			}
			return true
		}
	case script.PayloadLevels:
		if len(seg.Items) == 0 {
			seg.Items = defaultLevels()
			return true
		}
	case script.PayloadKeywords:
		if len(seg.Keywords) == 0 {
			if seg.Type == script.SceneEmojiRain {
				seg.Keywords = []string{"🏠", "📈", "💰"}
			} else {
				seg.Keywords = []string{"키워드1", "키워드2", "키워드3"}
			}
			return true
		}
	case script.PayloadComparison:
		changed := false
		if seg.ComparisonLeft == nil {
			seg.ComparisonLeft = &script.ComparisonSide{Label: "비교 A", Value: "항목 A"}
			changed = true
		}
		if seg.ComparisonRight == nil {
			seg.ComparisonRight = &script.ComparisonSide{Label: "비교 B", Value: "항목 B"}
			changed = true
		}
		return changed
	case script.PayloadListItems:
		if len(seg.ListItems) == 0 {
			seg.ListItems = []string{"항목 1", "항목 2", "항목 3"}
			return true
		}
	}
	return false
}

// HasPayload 子场景是否具备其类型所需数据
func HasPayload(seg *script.Segment) bool {
	switch seg.Type.Payload() {
	case script.PayloadNumbers:
		return len(seg.Numbers) > 0
	case script.PayloadChart, script.PayloadSlices:
		return seg.ChartData != nil && len(seg.ChartData.Data) > 0
	case script.PayloadLevels:
		return len(seg.Items) > 0
	case script.PayloadKeywords:
		return len(seg.Keywords) > 0
	case script.PayloadComparison:
		return seg.ComparisonLeft != nil && seg.ComparisonRight != nil
	case script.PayloadListItems:
		return len(seg.ListItems) > 0
	}
	return true
}

func chartKind(t script.SceneType) string {
	switch t {
	case script.SceneChartLine:
		return "line"
	case script.SceneChartPie:
		return "pie"
	case script.SceneDonutChart:
		return "donut"
	default:
		return "bar"
	}
}

func defaultChartSeries() []script.ChartPoint {
	return []script.ChartPoint{
		{Label: "A", Value: 40},
		{Label: "B", Value: 70},
		{Label: "C", Value: 55},
	}
}

func defaultSlices() []script.ChartPoint {
	return []script.ChartPoint{
		{Label: "A", Value: 40},
		{Label: "B", Value: 30},
		{Label: "C", Value: 20},
		{Label: "D", Value: 10},
	}
}

func defaultLevels() []string {
	return []string{"최상위", "상위", "중간", "하위", "기반"}
}

func itemLabel(i int) string {
	return fmt.Sprintf("항목%d", i+1)
}
