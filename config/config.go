package config

import (
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Configuration struct {
	ApiPort string `json:"api_port"`
	LogPath string `json:"log_path"`

	Database string `json:"database"` // "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	UploadDir string `json:"upload_dir"`

	// Intervalo em minutos da varredura de arquivos órfãos (0 desliga).
	SweepIntervalMin int `json:"sweep_interval_min"`

	Security struct {
		JwtSecret     string `json:"jwt_secret"`
		TokenTTLHours int    `json:"token_ttl_hours"`
	} `json:"security"`
}

func Get(path string) Configuration {
	// .env primeiro: variáveis de ambiente vencem o arquivo JSON
	_ = godotenv.Load()

	var c Configuration
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &c); err != nil {
			log.Fatal(err)
		}
	} else {
		log.Printf("config: arquivo %s não lido (%v), usando defaults+env", path, err)
	}

	if v := os.Getenv("PORT"); v != "" {
		c.ApiPort = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Security.JwtSecret = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("DATABASE"); v != "" {
		c.Database = v
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/server.log"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.SweepIntervalMin <= 0 {
		c.SweepIntervalMin = 60
	}
	if c.Security.TokenTTLHours <= 0 {
		c.Security.TokenTTLHours = 24
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}

	return c
}
