package script

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "reel/internal/pkg/http"
	scriptsvc "reel/internal/service/script"
)

// FinalizeScriptRequest 定稿请求，请求体可为空
type FinalizeScriptRequest struct {
	DurationMinutes float64 `json:"duration_minutes"` // 覆盖文档记录的目标时长
	SynthesisMode   string  `json:"synthesis_mode"`   // empty / always / never
	Voice           bool    `json:"voice"`            // 先合成语音和字幕
}

// FinalizeScript 定稿已保存的脚本
// @Summary      定稿脚本
// @Description  可选合成语音，按音频时长生成场景并对齐，结果落库
// @Tags         脚本
// @Accept       json
// @Produce      json
// @Param        script_id  path      string                 true   "脚本ID"
// @Param        request    body      FinalizeScriptRequest  false  "定稿参数"
// @Success      200        {object}  httputil.SuccessResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse  "正在被其他请求定稿"
// @Failure      500        {object}  ErrorResponse
// @Router       /api/v1/scripts/{script_id}/finalize [post]
func (h *Handler) FinalizeScript(c *gin.Context) {
	var uri ScriptIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "Invalid script_id", err)
		return
	}

	var req FinalizeScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body", err)
		return
	}

	doc, report, err := h.scriptService.Finalize(c.Request.Context(), uri.ScriptID, scriptsvc.FinalizeInput{
		DurationMinutes: req.DurationMinutes,
		SynthesisMode:   req.SynthesisMode,
		Voice:           req.Voice,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("脚本定稿成功", FinalizeResponseData{Script: doc, Report: report}))
}
