package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"kbase/controllers"
	"kbase/permissions"

	"github.com/gin-gonic/gin"
)

// SectorAccess blocks the route when the requested sector doesn't match
// the user's sector nor an extra sector grant. O setor pedido sai, nesta
// ordem, do path param, da query ?sector= e do campo sector do body;
// ausente em todos, a operação não é restrita por setor.
func SectorAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "usuário não autenticado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		requested := c.Param(param)
		if requested == "" {
			requested = c.Query("sector")
		}
		if requested == "" {
			requested = c.PostForm("sector")
		}
		// body JSON não aparece em PostForm; o gate precisa enxergar o
		// setor pelos dois formatos que o handler aceita
		if requested == "" && c.ContentType() == "application/json" {
			requested = peekJSONSector(c)
		}

		perms := user.PermissionList()
		role := permissions.ResolveRole(user.IsMaster, perms)
		sector := permissions.ResolveSector(perms)

		if !permissions.HasSectorAccess(role, perms, sector, requested) {
			controllers.RespondError(c, "acesso negado: setor não corresponde", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

// peekJSONSector lê o campo sector de um body JSON sem consumi-lo: o
// handler ainda faz o bind depois do gate.
func peekJSONSector(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(b))

	var body struct {
		Sector string `json:"sector"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return ""
	}
	return body.Sector
}
