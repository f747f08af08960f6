package controllers

import (
	"io"
	"log"
	"net/http"
	"strconv"

	dbpkg "kbase/db"
	"kbase/models"
	"kbase/storage"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

var fileStore storage.Store

// SetFileStore injeta o armazenamento de blobs usado pelos handlers de
// conteúdo. Chamar uma vez no boot.
func SetFileStore(s storage.Store) {
	fileStore = s
}

// readUpload lê o arquivo do multipart, se veio algum.
func readUpload(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// ensureStepsKind classifica payloads gravados antes da coluna
// steps_kind existir, uma vez só, e persiste o resultado.
func ensureStepsKind(db *gorm.DB, content *models.Content) {
	if content.Steps == "" || content.StepsKind != models.STEPS_KIND_NONE {
		return
	}
	kind := models.SniffStepsKind(content.Steps)
	if kind == models.STEPS_KIND_NONE {
		return
	}
	content.StepsKind = kind
	if err := db.Model(content).UpdateColumn("steps_kind", kind).Error; err != nil {
		log.Printf("content: erro ao gravar steps_kind content_id=%d err=%v", content.ID, err)
	}
}

// POST /api/contents (create_content + setor)
func CreateContent(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	actor, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "usuário não autenticado", http.StatusUnauthorized)
		return
	}

	var content models.Content
	if err := c.Bind(&content); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	// referência de arquivo só nasce do upload desta request
	content.FilePath = ""

	missing := content.MissingFields()
	if missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}
	if !models.IsValidContentType(content.Type) {
		RespondError(c, "tipo de conteúdo inválido", http.StatusBadRequest)
		return
	}

	data, name, err := readUpload(c)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if models.IsMediaType(content.Type) && data == nil {
		RespondError(c, "arquivo é obrigatório para conteúdo de mídia", http.StatusBadRequest)
		return
	}

	// arquivo primeiro; se a persistência falhar depois, sobra um
	// órfão em disco que a varredura recolhe
	if data != nil {
		stored, err := fileStore.Save(data, name)
		if err != nil {
			RespondError(c, "erro ao armazenar arquivo", http.StatusInternalServerError)
			return
		}
		content.FilePath = stored
	}

	if steps := c.PostForm("steps"); steps != "" {
		content.Steps = steps
	}
	content.StepsKind = models.SniffStepsKind(content.Steps)

	content.Views = 0
	content.CreatedBy = actor.ID
	content.UpdatedBy = actor.ID

	if err := db.Create(&content).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"content": content})
}

// GET /api/contents (público, ?sector= opcional)
func GetContents(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Order("created_at desc")
	if sector := c.Query("sector"); sector != "" {
		query = query.Where("sector = ?", sector)
	}

	var contents []models.Content
	if err := query.Find(&contents).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"contents": contents})
}

// GET /api/contents/type/:type (público, ?sector= opcional)
func GetContentsByType(c *gin.Context) {
	contentType := c.Param("type")
	if !models.IsValidContentType(contentType) {
		RespondError(c, "tipo de conteúdo inválido", http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	query := db.Where("type = ?", contentType).Order("created_at desc")
	if sector := c.Query("sector"); sector != "" {
		query = query.Where("sector = ?", sector)
	}

	var contents []models.Content
	if err := query.Find(&contents).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"contents": contents})
}

// GET /api/contents/sector/:sector (público)
func GetContentsBySector(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var contents []models.Content
	if err := db.Where("sector = ?", c.Param("sector")).
		Order("created_at desc").Find(&contents).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"contents": contents})
}

// GET /api/contents/:id (público)
func GetContentByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var content models.Content
	if err := db.First(&content, id).Error; err != nil {
		RespondError(c, "conteúdo não encontrado", http.StatusNotFound)
		return
	}
	ensureStepsKind(db, &content)
	RespondSuccess(c, gin.H{"content": content})
}

// POST /api/contents/:id/view (público)
// Bump monotônico do contador; telemetria do caminho de leitura, sem
// controle de acesso.
func IncrementViews(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var content models.Content
	if err := db.First(&content, id).Error; err != nil {
		RespondError(c, "conteúdo não encontrado", http.StatusNotFound)
		return
	}

	if err := db.Model(&content).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"views": content.Views + 1})
}

// PUT /api/contents/:id (update_content)
// Substitui só os campos enviados. Arquivo novo é gravado antes do
// antigo ser apagado: o registro nunca aponta para arquivo removido.
func UpdateContent(c *gin.Context) {
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

	var content models.Content
	if err := db.First(&content, id).Error; err != nil {
		RespondError(c, "conteúdo não encontrado", http.StatusNotFound)
		return
	}

	if v := c.PostForm("title"); v != "" {
		content.Title = v
	}
	if v, present := c.GetPostForm("description"); present {
		content.Description = v
	}
	if v := c.PostForm("sector"); v != "" {
		content.Sector = v
	}
	if v, present := c.GetPostForm("text_content"); present {
		content.TextContent = v
	}
	if v := c.PostForm("priority"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			content.Priority = n
		}
	}
	if v := c.PostForm("complexity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			content.Complexity = n
		}
	}
	if v := c.PostForm("steps"); v != "" {
		content.Steps = v
		content.StepsKind = models.SniffStepsKind(v)
	}

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
		old := content.FilePath
		content.FilePath = stored
		if old != "" {
			if err := fileStore.Delete(old); err != nil {
				log.Printf("content: erro ao remover arquivo antigo content_id=%d file=%s err=%v", content.ID, old, err)
			}
		}
	}

	content.UpdatedBy = actor.ID

	if err := db.Save(&content).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"content": content})
}

// DELETE /api/contents/:id (delete_content)
func DeleteContent(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var content models.Content
	if err := db.First(&content, id).Error; err != nil {
		RespondError(c, "conteúdo não encontrado", http.StatusNotFound)
		return
	}

	if content.FilePath != "" {
		if err := fileStore.Delete(content.FilePath); err != nil {
			log.Printf("content: erro ao remover arquivo content_id=%d file=%s err=%v", content.ID, content.FilePath, err)
		}
	}

	if err := db.Delete(&content).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
