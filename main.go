package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"kbase/config"
	"kbase/controllers"
	"kbase/db"
	"kbase/router"
	"kbase/storage"
	"kbase/workers"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config.json", "caminho do arquivo de configuração")
	flag.Parse()

	cfg := config.Get(*configPath)

	if cfg.LogPath != "" {
		os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755)
		if f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		} else {
			log.Printf("log: não foi possível abrir %s: %v", cfg.LogPath, err)
		}
	}

	controllers.InitAuth(cfg.Security.JwtSecret, cfg.Security.TokenTTLHours)

	db.SetConfigurations(cfg)
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("erro ao conectar no banco: %v", err)
	}
	defer database.Close()

	db.SeedSuperAdmin(database)

	store, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("erro ao preparar diretório de upload: %v", err)
	}
	controllers.SetFileStore(store)

	workers.StartOrphanSweeper(database, store,
		time.Duration(cfg.SweepIntervalMin)*time.Minute)

	r := gin.Default()
	r.MaxMultipartMemory = 10 << 20 // 10 MB
	r.Use(db.SetDBtoContext(database))
	router.Initialize(r)

	log.Printf("kbase listening on :%s", cfg.ApiPort)
	log.Fatal(r.Run(":" + cfg.ApiPort))
}
