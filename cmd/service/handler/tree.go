package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
)

func (s *HttpSrv) GetFileTree(c *gin.Context) {
	tree, err := v1.NewTreeLogic(c, s.Core).BuildTree()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, tree)
}
