package ledger

import (
	"encoding/json"
	"log"
	"time"

	"kbase/apperr"
	"kbase/models"
)

// Input é o que o autor fornece numa adição. O nome de exibição do
// autor NÃO entra aqui: é resolvido do usuário autenticado.
type Input struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	FilePath string `json:"-"`
}

// Parse recupera o ledger gravado em steps. Payload ausente, ilegível
// ou com forma errada (array, escalar) vale ledger vazio: a request
// nunca quebra por histórico corrompido, só registra o aviso.
func Parse(raw string, contentID int64) models.AdditionLedger {
	if raw == "" {
		return models.AdditionLedger{Additions: []models.Addition{}}
	}

	var l models.AdditionLedger
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		log.Printf("ledger: payload irrecuperável, recomeçando vazio content_id=%d err=%v", contentID, err)
		return models.AdditionLedger{Additions: []models.Addition{}}
	}
	if l.Additions == nil {
		// objeto válido mas sem array additions (ex.: árvore de passos)
		log.Printf("ledger: payload sem additions, recomeçando vazio content_id=%d", contentID)
		l.Additions = []models.Addition{}
	}
	return l
}

// Append monta a nova adição, anexa ao ledger existente e devolve o
// steps reserializado. O id vem do relógio (UnixMilli) e é empurrado
// para frente se não superar o último id do registro, garantindo ids
// estritamente crescentes por conteúdo sob o lock por registro.
func Append(raw string, contentID int64, in Input, author models.User, now time.Time) (string, models.Addition, error) {
	if in.Content == "" {
		return "", models.Addition{}, apperr.Invalid("content é obrigatório")
	}

	l := Parse(raw, contentID)

	id := now.UnixMilli()
	if n := len(l.Additions); n > 0 && id <= l.Additions[n-1].ID {
		id = l.Additions[n-1].ID + 1
	}

	createdAt := now
	addition := models.Addition{
		ID:            id,
		Title:         in.Title,
		Content:       in.Content,
		FilePath:      in.FilePath,
		Order:         len(l.Additions) + 1,
		CreatedBy:     author.ID,
		CreatedByName: author.Name,
		CreatedAt:     &createdAt,
	}

	l.Additions = append(l.Additions, addition)

	b, err := json.Marshal(l)
	if err != nil {
		return "", models.Addition{}, apperr.Internal("erro ao serializar histórico")
	}
	return string(b), addition, nil
}
