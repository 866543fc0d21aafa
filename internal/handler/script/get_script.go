package script

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "reel/internal/pkg/http"
)

// GetScript 获取脚本
// @Summary      获取脚本
// @Tags         脚本
// @Produce      json
// @Param        script_id  path      string  true  "脚本ID"
// @Success      200        {object}  httputil.SuccessResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /api/v1/scripts/{script_id} [get]
func (h *Handler) GetScript(c *gin.Context) {
	var uri ScriptIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "Invalid script_id", err)
		return
	}

	doc, err := h.scriptService.Get(c.Request.Context(), uri.ScriptID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("success", doc))
}
