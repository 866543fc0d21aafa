package script

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reel/internal/model/script"
	httputil "reel/internal/pkg/http"
	"reel/internal/pkg/scripttools"
	scriptsvc "reel/internal/service/script"
)

// GenerateScriptRequest 生成脚本请求
type GenerateScriptRequest struct {
	Topic           string  `json:"topic" binding:"required"` // 主题（必填）
	Category        string  `json:"category"`                 // 分类，如 economy
	Tone            string  `json:"tone"`                     // 语气，如 documentary
	DurationMinutes float64 `json:"duration_minutes"`         // 目标时长（分钟）
}

// ScriptResponseData 脚本与规范化记录
type ScriptResponseData struct {
	Script *script.Document              `json:"script"`
	Report *scripttools.NormalizeReport `json:"report"`
}

// GenerateScript 调用 LLM 生成脚本
// @Summary      生成脚本
// @Description  根据主题调用 LLM 生成 9 章节脚本，规范化后保存
// @Tags         脚本
// @Accept       json
// @Produce      json
// @Param        request  body      GenerateScriptRequest  true  "生成请求"
// @Success      201      {object}  httputil.SuccessResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      500      {object}  ErrorResponse
// @Router       /api/v1/scripts/generate [post]
func (h *Handler) GenerateScript(c *gin.Context) {
	var req GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	doc, report, err := h.scriptService.Generate(c.Request.Context(), scriptsvc.GenerateInput{
		Topic:           req.Topic,
		Category:        req.Category,
		Tone:            req.Tone,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httputil.NewSuccessResponse("脚本生成成功", ScriptResponseData{Script: doc, Report: report}))
}
