package db

import (
	"log"
	"os"

	"kbase/models"
	"kbase/permissions"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

// SeedSuperAdmin cria o usuário master inicial quando ADMIN_EMAIL e
// ADMIN_PASSWORD estão no ambiente e o e-mail ainda não existe.
func SeedSuperAdmin(database *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var existing models.User
	if err := database.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Printf("seed: erro ao gerar hash do super admin: %v", err)
		return
	}

	user := models.User{
		Name:     "Super Admin",
		Email:    email,
		Password: string(hash),
		IsMaster: true,
	}
	user.SetPermissions([]string{permissions.PERMISSION_ALL})

	if err := database.Create(&user).Error; err != nil {
		log.Printf("seed: erro ao criar super admin: %v", err)
		return
	}
	log.Printf("seed: super admin criado email=%s", email)
}
