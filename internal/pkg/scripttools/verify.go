package scripttools

import (
	"fmt"

	"reel/internal/model/script"
)

// Issue 校验发现的问题
type Issue struct {
	SectionID script.SectionID `json:"sectionId,omitempty"`
	SegmentID string           `json:"segmentId,omitempty"`
	Message   string           `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.SegmentID != "":
		return fmt.Sprintf("%s/%s: %s", i.SectionID, i.SegmentID, i.Message)
	case i.SectionID != "":
		return fmt.Sprintf("%s: %s", i.SectionID, i.Message)
	default:
		return i.Message
	}
}

// Verify 校验定稿文档对渲染端的保证
//
// 检查规范章节、子场景非空且ID唯一、帧数下限、类型数据完整、总帧数与目标一致。
// floor 通常为 script.MinFloorFrames；target <= 0 时不校验总数。
func Verify(doc *script.Document, target, floor int) []Issue {
	var issues []Issue
	if len(doc.Sections) != len(script.CanonicalSections) {
		issues = append(issues, Issue{Message: fmt.Sprintf("expected %d sections, got %d", len(script.CanonicalSections), len(doc.Sections))})
	}
	for i, sec := range doc.Sections {
		if i < len(script.CanonicalSections) && sec.ID != script.CanonicalSections[i] {
			issues = append(issues, Issue{SectionID: sec.ID, Message: fmt.Sprintf("out of canonical order at position %d", i)})
		}
		if len(sec.SubScenes) == 0 {
			issues = append(issues, Issue{SectionID: sec.ID, Message: "no segments"})
		}
		seen := make(map[string]bool, len(sec.SubScenes))
		for _, seg := range sec.SubScenes {
			if seen[seg.ID] {
				issues = append(issues, Issue{SectionID: sec.ID, SegmentID: seg.ID, Message: "duplicate segment id"})
			}
			seen[seg.ID] = true
			if !seg.Type.IsValid() {
				issues = append(issues, Issue{SectionID: sec.ID, SegmentID: seg.ID, Message: fmt.Sprintf("unknown type %q", seg.Type)})
			}
			if seg.DurationFrames < floor {
				issues = append(issues, Issue{SectionID: sec.ID, SegmentID: seg.ID, Message: fmt.Sprintf("duration %d below floor %d", seg.DurationFrames, floor)})
			}
			if !HasPayload(&seg) {
				issues = append(issues, Issue{SectionID: sec.ID, SegmentID: seg.ID, Message: fmt.Sprintf("missing payload for %s", seg.Type)})
			}
		}
	}
	sum := doc.SumFrames()
	if doc.TotalDurationFrames != sum {
		issues = append(issues, Issue{Message: fmt.Sprintf("totalDurationFrames %d != sum %d", doc.TotalDurationFrames, sum)})
	}
	if target > 0 && sum != target {
		issues = append(issues, Issue{Message: fmt.Sprintf("sum %d != target %d", sum, target)})
	}
	return issues
}
