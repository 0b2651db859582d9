package service

import (
	"github.com/filecab/filecab/app/core"
	"github.com/filecab/filecab/app/response"
	"github.com/filecab/filecab/cmd/service/handler"
	"github.com/filecab/filecab/cmd/service/middleware"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)

	apiV1 := s.Engine.Group("/api/v1")
	{
		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		authed.GET("/connect", handler.Websocket(s.Core))

		file := authed.Group("/file")
		{
			file.GET("/list", s.ListFiles)
			file.GET("/tree", s.GetFileTree)
			file.GET("/:fileid", s.GetFile)
			file.GET("/:fileid/url", s.GetFileDownloadURL)
			file.GET("/:fileid/links", s.ListFileLinks)
			file.POST("/upload/key", s.GenUploadKey)
		}

		link := authed.Group("/link")
		{
			link.GET("/list", s.ListRecordLinks)
			link.POST("", s.AttachFile)
			link.DELETE("/:linkid", s.DetachFile)
		}

		recycle := authed.Group("/recycle")
		{
			recycle.GET("/list", s.ListBinEntries)
			recycle.POST("", s.MoveToBin)
			recycle.POST("/:binid/restore", s.RestoreFromBin)
			recycle.DELETE("/:binid", s.ForceDelete)
		}
	}
}
