package script

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reel/internal/model/script"
	httputil "reel/internal/pkg/http"
	scriptrepo "reel/internal/repository/script"
)

// ListScriptsQuery 列表查询参数
type ListScriptsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=normalized finalized"`
	Limit  int64  `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int64  `form:"offset" binding:"omitempty,min=0"`
}

// ListScripts 分页列出脚本
// @Summary      脚本列表
// @Description  按更新时间倒序，不含章节内容
// @Tags         脚本
// @Produce      json
// @Param        status  query     string  false  "normalized / finalized"
// @Param        limit   query     int     false  "每页数量（默认20，最大100）"
// @Param        offset  query     int     false  "偏移量"
// @Success      200     {object}  httputil.SuccessResponse
// @Router       /api/v1/scripts [get]
func (h *Handler) ListScripts(c *gin.Context) {
	var q ListScriptsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query", err)
		return
	}

	docs, total, err := h.scriptService.List(c.Request.Context(), scriptrepo.ListFilter{
		Status: script.Status(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", httputil.PageData{
		Items:  docs,
		Total:  total,
		Limit:  limit,
		Offset: q.Offset,
	}))
}
