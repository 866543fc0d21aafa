package scripttools

import "reel/internal/model/script"

// minSegmentFrames 目标过小时子场景最少保留的帧数
const minSegmentFrames = 1

// segmentRef 指向文档中的一个子场景
type segmentRef struct {
	section int
	segment int
}

// segmentRefs 按文档顺序列出所有子场景
func segmentRefs(doc *script.Document) []segmentRef {
	refs := make([]segmentRef, 0, doc.SegmentCount())
	for i := range doc.Sections {
		for j := range doc.Sections[i].SubScenes {
			refs = append(refs, segmentRef{section: i, segment: j})
		}
	}
	return refs
}

func (r segmentRef) of(doc *script.Document) *script.Segment {
	return &doc.Sections[r.section].SubScenes[r.segment]
}

// applyTerminalCorrection 把总帧数与目标的差值补到最后一个子场景上
//
// 差值为负且会把最后一个子场景压到 floor 以下时，不足部分从后往前依次由前面的
// 子场景承担，每个都不低于 floor。全部到达 floor 后仍有剩余，再按同样顺序压到
// minSegmentFrames（此时总数精确优先于下限）。返回施加在最后一个子场景上的修正量
// 和由前面子场景承担的帧数。
func applyTerminalCorrection(doc *script.Document, target, floor int) (lastDelta int, carried int) {
	refs := segmentRefs(doc)
	if len(refs) == 0 {
		return 0, 0
	}
	diff := target - doc.SumFrames()
	if diff == 0 {
		return 0, 0
	}
	last := refs[len(refs)-1].of(doc)
	if diff > 0 {
		last.DurationFrames += diff
		return diff, 0
	}

	need := -diff
	for _, f := range []int{floor, minSegmentFrames} {
		take := min(need, max(0, last.DurationFrames-f))
		last.DurationFrames -= take
		lastDelta -= take
		need -= take

		for k := len(refs) - 2; k >= 0 && need > 0; k-- {
			seg := refs[k].of(doc)
			t := min(need, max(0, seg.DurationFrames-f))
			seg.DurationFrames -= t
			carried += t
			need -= t
		}
		if need == 0 {
			break
		}
	}

	// 只有目标小于子场景数时才会走到这里
	if need > 0 {
		last.DurationFrames -= need
		lastDelta -= need
	}
	return lastDelta, carried
}

// floorDiv 向下取整的整数除法，b > 0
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// recomputeTotal 重新计算 totalDurationFrames
func recomputeTotal(doc *script.Document) {
	doc.TotalDurationFrames = doc.SumFrames()
}
