package script

import (
	scriptsvc "reel/internal/service/script"
)

// Handler 脚本处理器
type Handler struct {
	scriptService scriptsvc.ScriptService
}

// NewHandler 创建脚本处理器
func NewHandler(scriptService scriptsvc.ScriptService) *Handler {
	return &Handler{
		scriptService: scriptService,
	}
}
