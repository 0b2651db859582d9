package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
	"github.com/filecab/filecab/pkg/types"
)

type MoveToBinRequest struct {
	ResourceType string `json:"resource_type" binding:"required"`
	ResourceID   string `json:"resource_id" binding:"required"`
}

func (s *HttpSrv) MoveToBin(c *gin.Context) {
	var req MoveToBinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.APIError(c, err)
		return
	}

	if err := v1.NewRecycleLogic(c, s.Core).MoveToBin(req.ResourceType, req.ResourceID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) RestoreFromBin(c *gin.Context) {
	binID, _ := c.Params.Get("binid")

	if err := v1.NewRecycleLogic(c, s.Core).Restore(binID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) ForceDelete(c *gin.Context) {
	binID, _ := c.Params.Get("binid")

	if err := v1.NewRecycleLogic(c, s.Core).ForceDelete(binID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type ListBinEntriesRequest struct {
	ResourceType string `form:"resource_type"`
	Keywords     string `form:"keywords"`
	Page         uint64 `form:"page"`
	PageSize     uint64 `form:"pagesize" binding:"max=50"`
}

type ListBinEntriesResponse struct {
	List  []types.RecycleBinEntry `json:"list"`
	Total int64                   `json:"total"`
}

func (s *HttpSrv) ListBinEntries(c *gin.Context) {
	var req ListBinEntriesRequest
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

	list, total, err := v1.NewRecycleLogic(c, s.Core).ListBinEntries(types.ListRecycleBinOptions{
		ResourceType: req.ResourceType,
		Keywords:     req.Keywords,
	}, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, ListBinEntriesResponse{
		List:  list,
		Total: total,
	})
}
