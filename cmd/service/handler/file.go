package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
	"github.com/filecab/filecab/pkg/types"
)

type ListFilesRequest struct {
	// Path addresses a branch of the virtual tree, segments joined by "/",
	// e.g. "users/381/avatar" or "Uncategorized". Empty means everything.
	Path     string `form:"path"`
	Keywords string `form:"keywords"`
	Page     uint64 `form:"page"`
	PageSize uint64 `form:"pagesize" binding:"max=50"`
}

type ListFilesResponse struct {
	List  []types.File `json:"list"`
	Total int64        `json:"total"`
}

func (s *HttpSrv) ListFiles(c *gin.Context) {
	var req ListFilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	var segments []string
	if req.Path != "" {
		segments = strings.Split(strings.Trim(req.Path, "/"), "/")
	}

	list, total, err := v1.NewFileLogic(c, s.Core).List(segments, req.Keywords, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListFilesResponse{
		List:  list,
		Total: total,
	})
}

func (s *HttpSrv) GetFile(c *gin.Context) {
	fileID, _ := c.Params.Get("fileid")

	file, err := v1.NewFileLogic(c, s.Core).GetFile(fileID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, file)
}

type FileDownloadURLResponse struct {
	URL string `json:"url"`
}

func (s *HttpSrv) GetFileDownloadURL(c *gin.Context) {
	fileID, _ := c.Params.Get("fileid")

	url, err := v1.NewFileLogic(c, s.Core).GetDownloadURL(fileID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, FileDownloadURLResponse{URL: url})
}
