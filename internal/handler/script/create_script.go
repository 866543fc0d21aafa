package script

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "reel/internal/pkg/http"
	scriptsvc "reel/internal/service/script"
)

// CreateScriptQuery 提交脚本的查询参数
type CreateScriptQuery struct {
	DurationMinutes float64 `form:"duration_minutes"`
	TargetFrames    int     `form:"target_frames"`
}

// CreateScript 规范化并保存原始脚本
// @Summary      提交脚本
// @Description  请求体为任意形状的原始脚本 JSON，规范化修复后保存
// @Tags         脚本
// @Accept       json
// @Produce      json
// @Param        duration_minutes  query     number  false  "目标时长（分钟）"
// @Param        target_frames     query     int     false  "目标帧数，优先于分钟数"
// @Success      201               {object}  httputil.SuccessResponse
// @Failure      400               {object}  ErrorResponse
// @Failure      500               {object}  ErrorResponse
// @Router       /api/v1/scripts [post]
func (h *Handler) CreateScript(c *gin.Context) {
	var q CreateScriptQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query", err)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	doc, report, err := h.scriptService.Create(c.Request.Context(), raw, scriptsvc.CreateInput{
		DurationMinutes: q.DurationMinutes,
		TargetFrames:    q.TargetFrames,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httputil.NewSuccessResponse("脚本已保存", ScriptResponseData{Script: doc, Report: report}))
}
