package script

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"reel/internal/model/script"
	httputil "reel/internal/pkg/http"
	"reel/internal/pkg/scripttools"
	scriptsvc "reel/internal/service/script"
)

// ReconcileScriptRequest 无状态定稿请求
type ReconcileScriptRequest struct {
	Document      json.RawMessage          `json:"document" binding:"required"` // 原始脚本
	TargetFrames  int                      `json:"target_frames"`               // 目标帧数
	VoiceFrames   map[script.SectionID]int `json:"voice_frames"`                // 各章节语音帧数
	SynthesisMode string                   `json:"synthesis_mode"`              // empty / always / never
}

// FinalizeResponseData 定稿文档与过程记录
type FinalizeResponseData struct {
	Script *script.Document             `json:"script"`
	Report *scripttools.FinalizeReport `json:"report"`
}

// ReconcileScript 无状态定稿
// @Summary      无状态定稿
// @Description  规范化、生成场景并按给定语音帧数对齐时长，不落库
// @Tags         脚本
// @Accept       json
// @Produce      json
// @Param        request  body      ReconcileScriptRequest  true  "定稿请求"
// @Success      200      {object}  httputil.SuccessResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /api/v1/scripts/reconcile [post]
func (h *Handler) ReconcileScript(c *gin.Context) {
	var req ReconcileScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.TargetFrames < 0 {
		badRequest(c, "target_frames must not be negative", nil)
		return
	}

	doc, report, err := h.scriptService.Reconcile(c.Request.Context(), scriptsvc.ReconcileInput{
		Document:      req.Document,
		TargetFrames:  req.TargetFrames,
		VoiceFrames:   req.VoiceFrames,
		SynthesisMode: req.SynthesisMode,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", FinalizeResponseData{Script: doc, Report: report}))
}
