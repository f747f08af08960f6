package controllers

import (
	"net/http"

	dbpkg "kbase/db"
	"kbase/models"
	"kbase/permissions"
	"kbase/tools"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserPayload struct {
	Name        string   `json:"name" form:"name"`
	Email       string   `json:"email" form:"email"`
	Password    string   `json:"password" form:"password"`
	IsMaster    *bool    `json:"is_master" form:"is_master"`
	Permissions []string `json:"permissions" form:"permissions"`
}

func CheckUserExists(c *gin.Context, email string) (bool, *models.User) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		return false, nil
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return false, nil
	}
	return true, &user
}

// POST /api/users
// Rota pública de registro. Quando chamada por um ator autenticado de
// nível admin, as permissões concedidas ficam limitadas ao que a role
// dele pode conceder.
func CreateUser(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var payload UserPayload
	if err := c.Bind(&payload); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	user := models.User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	}

	missing := user.MissingFields()
	if missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}

	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "E-mail inválido!", http.StatusBadRequest)
		return
	}

	exists, _ := CheckUserExists(c, user.Email)
	if exists {
		RespondError(c, "E-mail já está em uso", http.StatusConflict)
		return
	}

	// registro anônimo nunca concede nada; ator logado concede só o
	// que a role dele permite
	if actor, logged := GetUserLogged(c); logged {
		if !permissions.CanGrant(actor.Role(), payload.Permissions) {
			RespondError(c, "acesso negado: permissões fora do escopo concedível", http.StatusForbidden)
			return
		}
		user.SetPermissions(payload.Permissions)
		if payload.IsMaster != nil && actor.Role() == permissions.ROLE_SUPER_ADMIN {
			user.IsMaster = *payload.IsMaster
		}
	} else {
		user.SetPermissions(nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), 10)
	if err != nil {
		RespondError(c, "erro ao processar a senha", http.StatusInternalServerError)
		return
	}
	user.Password = string(hash)

	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			RespondError(c, "E-mail já está em uso", http.StatusConflict)
			return
		}
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"user": user.View()})
}

// GET /api/users (read_user)
func GetUsers(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var users []models.User
	if err := db.Order("id asc").Find(&users).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	RespondSuccess(c, gin.H{"users": views})
}

// GET /api/users/:id (read_user)
func GetUserByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		RespondError(c, "usuário não encontrado", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"user": user.View()})
}

// DELETE /api/users/:id (delete_user)
func DeleteUser(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		RespondError(c, "usuário não encontrado", http.StatusNotFound)
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
