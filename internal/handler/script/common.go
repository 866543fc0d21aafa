package script

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "reel/internal/pkg/http"
	scriptsvc "reel/internal/service/script"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// ScriptIDRequest 路径参数
type ScriptIDRequest struct {
	ScriptID string `uri:"script_id" binding:"required"` // 脚本ID
}

// writeServiceError 按服务层错误类型映射 HTTP 状态和业务码
func writeServiceError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, httputil.CodeInternal
	switch {
	case errors.Is(err, scriptsvc.ErrInvalidInput):
		status, code = http.StatusBadRequest, httputil.CodeBadRequest
	case errors.Is(err, scriptsvc.ErrNotFound):
		status, code = http.StatusNotFound, httputil.CodeNotFound
	case errors.Is(err, scriptsvc.ErrBusy):
		status, code = http.StatusConflict, httputil.CodeBusy
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("script request failed")
	}
	c.JSON(status, httputil.NewErrorResponse(code, err.Error()))
}

func badRequest(c *gin.Context, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(httputil.CodeBadRequest, message, detail))
}
