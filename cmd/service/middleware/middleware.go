package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filecab/filecab/app/core"
	v1 "github.com/filecab/filecab/app/logic/v1"
	"github.com/filecab/filecab/app/response"
	"github.com/filecab/filecab/pkg/errors"
	"github.com/filecab/filecab/pkg/i18n"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

const (
	ACTOR_ID_HEADER_KEY   = "X-Actor-ID"
	ACTOR_ROLE_HEADER_KEY = "X-Actor-Role"
)

// Authorization trusts the identity headers stamped by the gateway in front
// of this service. Requests without an actor id never reach the logic layer.
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ACTOR_ID_HEADER_KEY)
		if actorID == "" {
			response.APIError(c, errors.New("middleware.Authorization", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized))
			return
		}

		c.Set("user", actorID)
		c.Set(v1.TOKEN_CONTEXT_KEY, v1.AccessClaims{
			User: actorID,
			Role: c.GetHeader(ACTOR_ROLE_HEADER_KEY),
		})
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Actor-ID, X-Actor-Role")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}
