package router

import (
	"net/http"

	"kbase/controllers"
	"kbase/permissions"

	"github.com/gin-gonic/gin"
)

// Authorize blocks the route when the logged user lacks the required
// permission token. Sempre roda depois do AuthRequired.
func Authorize(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "usuário não autenticado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		perms := user.PermissionList()
		role := permissions.ResolveRole(user.IsMaster, perms)

		if !permissions.HasPermission(role, perms, required) {
			controllers.RespondError(c,
				"acesso negado. permissão necessária: "+required,
				http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
