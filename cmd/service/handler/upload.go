package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
)

type GenUploadKeyRequest struct {
	FileName   string `json:"file_name" binding:"required"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size" binding:"required"`
	Visibility string `json:"visibility"`
}

// GenUploadKey 生成客户端直传所需的预签名地址
func (s *HttpSrv) GenUploadKey(c *gin.Context) {
	var req GenUploadKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.APIError(c, err)
		return
	}

	key, err := v1.NewUploadLogic(c, s.Core).GenClientUploadKey(req.FileName, req.MimeType, req.Size, req.Visibility)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, key)
}
