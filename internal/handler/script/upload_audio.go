package script

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reel/internal/model/script"
	httputil "reel/internal/pkg/http"
)

// SectionAudioRequest 路径参数
type SectionAudioRequest struct {
	ScriptID  string `uri:"script_id" binding:"required"`  // 脚本ID
	SectionID string `uri:"section_id" binding:"required"` // 章节ID，例如 HOOK
}

// UploadAudio 上传章节旁白音频
// @Summary      上传章节音频
// @Description  通过 multipart/form-data 上传章节旁白音频，按文档隔离保存到 audioFile 路径；已定稿的文档需要重新定稿
// @Tags         脚本
// @Accept       multipart/form-data
// @Produce      json
// @Param        script_id   path      string  true  "脚本ID"
// @Param        section_id  path      string  true  "章节ID"
// @Param        file        formData  file    true  "音频文件（mp3）"
// @Success      200         {object}  httputil.SuccessResponse
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /api/v1/scripts/{script_id}/sections/{section_id}/audio [put]
func (h *Handler) UploadAudio(c *gin.Context) {
	var uri SectionAudioRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, "Invalid path parameters", err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Invalid file", err)
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "Failed to open file", err)
		return
	}
	defer f.Close()

	up, err := h.scriptService.UploadAudio(c.Request.Context(), uri.ScriptID, script.SectionID(uri.SectionID), f, file.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.NewSuccessResponse("音频上传成功", up))
}
