package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
	"github.com/filecab/filecab/pkg/types"
)

type AttachFileRequest struct {
	FileID     string `json:"file_id" binding:"required"`
	RecordID   string `json:"record_id" binding:"required"`
	RecordType string `json:"record_type" binding:"required"`
	Category   string `json:"category" binding:"required"`
}

func (s *HttpSrv) AttachFile(c *gin.Context) {
	var req AttachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.APIError(c, err)
		return
	}

	link, err := v1.NewAttachmentLogic(c, s.Core).Attach(req.FileID, req.RecordID, req.RecordType, req.Category)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, link)
}

func (s *HttpSrv) DetachFile(c *gin.Context) {
	linkID, _ := c.Params.Get("linkid")

	if err := v1.NewAttachmentLogic(c, s.Core).Detach(linkID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type ListLinksRequest struct {
	RecordID   string `form:"record_id" binding:"required"`
	RecordType string `form:"record_type" binding:"required"`
	Category   string `form:"category"`
}

type ListLinksResponse struct {
	List []types.FileLink `json:"list"`
}

func (s *HttpSrv) ListRecordLinks(c *gin.Context) {
	var req ListLinksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.APIError(c, err)
		return
	}

	links, err := v1.NewAttachmentLogic(c, s.Core).FindLinks(req.RecordID, req.RecordType, req.Category)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ListLinksResponse{List: links})
}

func (s *HttpSrv) ListFileLinks(c *gin.Context) {
	fileID, _ := c.Params.Get("fileid")

	links, err := v1.NewAttachmentLogic(c, s.Core).FindByFile(fileID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ListLinksResponse{List: links})
}
