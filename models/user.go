package models

import (
	"encoding/json"
	"time"

	"kbase/permissions"
	"kbase/tools"
)

// User representa um usuario do sistema. Role e setor nunca são
// persistidos: sempre derivados de IsMaster + Permissions.
type User struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name        string     `gorm:"not null" json:"name" form:"name"`
	Email       string     `gorm:"not null;unique" json:"email" form:"email"`
	Password    string     `gorm:"not null" json:"password,omitempty" form:"password"`
	IsMaster    bool       `gorm:"not null; default: false" json:"is_master" form:"is_master"`
	Permissions string     `gorm:"type:text" json:"-"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// UserView é o formato devolvido para o frontend: sem senha, com role
// e setor derivados na hora.
type UserView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Sector      string     `json:"sector,omitempty"`
	Permissions []string   `json:"permissions"`
	CreatedAt   *time.Time `json:"created_at"`
}

func (user User) MissingFields() string {
	if user.Name == "" {
		return "name"
	} else if user.Email == "" {
		return "email"
	} else if user.Password == "" {
		return "password"
	} else if tools.CheckPassword(user.Password) != "" {
		return tools.CheckPassword(user.Password)
	}
	return ""
}

// PermissionList desserializa a coluna de permissões. Coluna vazia ou
// ilegível vale lista vazia.
func (user User) PermissionList() []string {
	if user.Permissions == "" {
		return []string{}
	}
	var perms []string
	if err := json.Unmarshal([]byte(user.Permissions), &perms); err != nil {
		return []string{}
	}
	return perms
}

func (user *User) SetPermissions(perms []string) {
	if perms == nil {
		perms = []string{}
	}
	b, _ := json.Marshal(perms)
	user.Permissions = string(b)
}

func (user User) Role() string {
	return permissions.ResolveRole(user.IsMaster, user.PermissionList())
}

func (user User) Sector() string {
	return permissions.ResolveSector(user.PermissionList())
}

func (user User) View() UserView {
	perms := user.PermissionList()
	return UserView{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        permissions.ResolveRole(user.IsMaster, perms),
		Sector:      permissions.ResolveSector(perms),
		Permissions: perms,
		CreatedAt:   user.CreatedAt,
	}
}
