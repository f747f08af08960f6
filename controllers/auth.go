package controllers

import (
	"net/http"

	dbpkg "kbase/db"
	"kbase/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email e password são obrigatórios", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	// mesma mensagem para e-mail desconhecido e senha errada
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		RespondError(c, "usuário ou senha inválidos", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		RespondError(c, "usuário ou senha inválidos", http.StatusUnauthorized)
		return
	}

	signed, err := signToken(user)
	if err != nil {
		RespondError(c, "erro ao assinar token", http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, LoginResponse{Token: signed, User: user.View()})
}
