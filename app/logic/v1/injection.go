package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/filecab/filecab/app/core"
)

// TOKEN_CONTEXT_KEY carries the caller's identity, resolved by the gateway
// before a request reaches this service.
const TOKEN_CONTEXT_KEY = "filecab.access.claims"

type AccessClaims struct {
	User string `json:"user"`
	Role string `json:"role"`
}

func InjectTokenClaim(c *gin.Context) (AccessClaims, bool) {
	value, exist := c.Get(TOKEN_CONTEXT_KEY)
	if !exist {
		return AccessClaims{}, false
	}
	claims, ok := value.(AccessClaims)
	return claims, ok
}

type UserInfo struct {
	claims AccessClaims
}

func SetupUserInfo(ctx context.Context, _ *core.Core) UserInfo {
	claims, _ := ctx.Value(TOKEN_CONTEXT_KEY).(AccessClaims)
	return UserInfo{claims: claims}
}

func (u UserInfo) GetUserInfo() AccessClaims {
	return u.claims
}
