package workers

import (
	"log"
	"os"
	"time"

	"kbase/ledger"
	"kbase/models"
	"kbase/storage"

	"github.com/jinzhu/gorm"
)

// Grace period: arquivo recém-gravado pode pertencer a uma request em
// voo (blob salvo antes da linha). Não recolher antes disso.
const sweepMinAge = 15 * time.Minute

// StartOrphanSweeper starts a loop that removes stored files no content
// row references anymore. Gravação de arquivo e escrita no banco não
// são transacionais: um crash entre as duas deixa um órfão em disco, e
// é esta varredura que limita o vazamento.
func StartOrphanSweeper(db *gorm.DB, store *storage.DiskStore, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			SweepOrphans(db, store)
		}
	}()
}

func SweepOrphans(db *gorm.DB, store *storage.DiskStore) {
	names, err := store.List()
	if err != nil {
		log.Printf("sweeper: erro ao listar uploads: %v", err)
		return
	}
	if len(names) == 0 {
		return
	}

	referenced, err := referencedFiles(db)
	if err != nil {
		log.Printf("sweeper: erro ao carregar referências: %v", err)
		return
	}

	removed := 0
	for _, name := range names {
		if referenced[name] {
			continue
		}
		info, err := os.Stat(store.Path(name))
		if err != nil || time.Since(info.ModTime()) < sweepMinAge {
			continue
		}
		if err := store.Delete(name); err != nil {
			log.Printf("sweeper: erro ao remover órfão file=%s err=%v", name, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("sweeper: removidos %d arquivos órfãos", removed)
	}
}

// referencedFiles coleta os nomes referenciados pelo file_path das
// linhas de conteúdo e pelos anexos dentro dos ledgers de adições.
func referencedFiles(db *gorm.DB) (map[string]bool, error) {
	var contents []models.Content
	if err := db.Select("id, file_path, steps, steps_kind").Find(&contents).Error; err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(contents))
	for _, content := range contents {
		if content.FilePath != "" {
			referenced[content.FilePath] = true
		}
		if content.StepsKind != models.STEPS_KIND_ADDITIONS {
			continue
		}
		l := ledger.Parse(content.Steps, content.ID)
		for _, add := range l.Additions {
			if add.FilePath != "" {
				referenced[add.FilePath] = true
			}
		}
	}
	return referenced, nil
}
