package controllers

import (
	"net/http"
	"time"

	"kbase/apperr"
	dbpkg "kbase/db"
	"kbase/ledger"
	"kbase/models"

	"github.com/gin-gonic/gin"
)

// POST /api/contents/:id/additions (update_content)
// Ciclo read-parse-append-reserialize do histórico de adições. O lock
// por registro serializa writers simultâneos no mesmo conteúdo; sem
// ele, dois appends leriam o mesmo array e um apagaria o outro.
func AddAddition(c *gin.Context) {
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

	input := ledger.Input{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}

	// valida antes de tocar storage ou banco
	if input.Content == "" {
		RespondError(c, "content é obrigatório", http.StatusBadRequest)
		return
	}

	ledger.Lock(id)
	defer ledger.Unlock(id)

	// releitura dentro do lock: steps fresco
	var content models.Content
	if err := db.First(&content, id).Error; err != nil {
		RespondError(c, "conteúdo não encontrado", http.StatusNotFound)
		return
	}

	// anexo só depois de confirmar que o registro existe: adição a
	// conteúdo inexistente não deixa órfão pra varredura recolher
	data, name, err := readUpload(c)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if data != nil {
		stored, err := fileStore.Save(data, name)
		if err != nil {
			RespondError(c, "erro ao armazenar arquivo", http.StatusInternalServerError)
			return
		}
		input.FilePath = stored
	}

	raw := ""
	if content.StepsKind == models.STEPS_KIND_ADDITIONS ||
		(content.StepsKind == models.STEPS_KIND_NONE && content.Steps != "") {
		raw = content.Steps
	}

	serialized, addition, err := ledger.Append(raw, content.ID, input, actor, time.Now())
	if err != nil {
		RespondError(c, err.Error(), apperr.Status(err))
		return
	}

	// toca só steps, steps_kind e updated_by
	updates := map[string]interface{}{
		"steps":      serialized,
		"steps_kind": models.STEPS_KIND_ADDITIONS,
		"updated_by": actor.ID,
	}
	if err := db.Model(&content).Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"addition": addition})
}
