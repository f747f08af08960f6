package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Me(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "usuário não autenticado", http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.View()})
}
