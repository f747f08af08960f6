package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" é obrigatório", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, name+" inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// isUniqueViolation reconhece violação de constraint unique do sqlite3
// e do postgres. A checagem prévia de e-mail tem uma janela de corrida;
// quando o banco pega a duplicata, a resposta continua sendo 409.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
