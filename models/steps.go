package models

import (
	"encoding/json"
	"time"
)

/************************************************
/**** MARK: STEPS KIND ****/
/************************************************/
// O campo steps aceita duas formas distintas; o discriminante fica
// persistido em steps_kind para não depender de sniffing na leitura.
const STEPS_KIND_NONE = ""
const STEPS_KIND_TREE = "steps"
const STEPS_KIND_ADDITIONS = "additions"

// Step é um nó da árvore de passos de um tutorial estruturado.
type Step struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Order    int    `json:"order"`
	SubSteps []Step `json:"subSteps,omitempty"`
}

// Addition é uma contribuição incremental anexada ao histórico de um
// conteúdo existente.
type Addition struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content"`
	FilePath      string     `json:"file_path,omitempty"`
	Order         int        `json:"order"`
	CreatedBy     int64      `json:"created_by"`
	CreatedByName string     `json:"created_by_name"`
	CreatedAt     *time.Time `json:"created_at"`
}

// AdditionLedger é o objeto serializado em steps quando o registro é
// endereçado como histórico de adições.
type AdditionLedger struct {
	Additions []Addition `json:"additions"`
}

// SniffStepsKind classifica payloads legados gravados antes da coluna
// steps_kind existir. Objeto com array additions vale ledger, array
// vale árvore de passos, qualquer outra coisa vale "sem payload".
func SniffStepsKind(raw string) string {
	if raw == "" {
		return STEPS_KIND_NONE
	}

	var obj struct {
		Additions *json.RawMessage `json:"additions"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.Additions != nil {
		return STEPS_KIND_ADDITIONS
	}

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return STEPS_KIND_TREE
	}

	return STEPS_KIND_NONE
}
