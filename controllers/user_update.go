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

// PUT /api/users/:id (update_user, ou o próprio usuário)
// Campos omitidos ficam como estão; permissões e flag master só mudam
// dentro do que o ator pode conceder.
func UpdateUser(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	actor, logged := GetUserLogged(c)
	if !logged {
		RespondError(c, "usuário não autenticado", http.StatusUnauthorized)
		return
	}

	// editar outro usuário exige update_user; a si mesmo pode sempre
	if actor.ID != id {
		if !permissions.HasPermission(actor.Role(), actor.PermissionList(), permissions.PERMISSION_UPDATE_USER) {
			RespondError(c, "acesso negado. permissão necessária: "+permissions.PERMISSION_UPDATE_USER, http.StatusForbidden)
			return
		}
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		RespondError(c, "usuário não encontrado", http.StatusNotFound)
		return
	}

	var payload UserPayload
	if err := c.Bind(&payload); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}

	if payload.Email != "" && payload.Email != user.Email {
		if !tools.ValidateEmail(payload.Email) {
			RespondError(c, "E-mail inválido!", http.StatusBadRequest)
			return
		}
		if exists, _ := CheckUserExists(c, payload.Email); exists {
			RespondError(c, "E-mail já está em uso", http.StatusConflict)
			return
		}
		user.Email = payload.Email
	}

	if payload.Password != "" {
		if msg := tools.CheckPassword(payload.Password); msg != "" {
			RespondError(c, "Faltando campo "+msg, http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), 10)
		if err != nil {
			RespondError(c, "erro ao processar a senha", http.StatusInternalServerError)
			return
		}
		user.Password = string(hash)
	}

	if payload.Permissions != nil {
		if !permissions.CanGrant(actor.Role(), payload.Permissions) {
			RespondError(c, "acesso negado: permissões fora do escopo concedível", http.StatusForbidden)
			return
		}
		user.SetPermissions(payload.Permissions)
	}

	if payload.IsMaster != nil && actor.Role() == permissions.ROLE_SUPER_ADMIN {
		user.IsMaster = *payload.IsMaster
	}

	if err := db.Save(&user).Error; err != nil {
		if isUniqueViolation(err) {
			RespondError(c, "E-mail já está em uso", http.StatusConflict)
			return
		}
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"user": user.View()})
}
