package controllers

import (
	"net/http"
	"strings"

	dbpkg "kbase/db"
	"kbase/models"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "auth_user"

// AuthRequired valida o Bearer token e carrega o usuário do banco para
// o contexto. O usuário é sempre recarregado: permissões editadas valem
// já na request seguinte, sem role velha presa no token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, "token de autenticação não fornecido", http.StatusUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(h[len("Bearer "):])
		if token == "" {
			RespondError(c, "token de autenticação inválido", http.StatusUnauthorized)
			c.Abort()
			return
		}

		userID, err := parseToken(token)
		if err != nil {
			RespondError(c, err.Error(), http.StatusUnauthorized)
			c.Abort()
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
			c.Abort()
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			RespondError(c, "usuário não encontrado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// AuthOptional deixa a request seguir anônima quando NENHUMA credencial
// veio. Credencial apresentada passa pela validação completa e falha
// fechada: token inválido ou expirado é 401, nunca downgrade para
// anônimo. Usado no registro: anônimo registra sem conceder nada, ator
// logado concede dentro do limite da role.
func AuthOptional() gin.HandlerFunc {
	required := AuthRequired()
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// GetUserLogged returns the user loaded by AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
