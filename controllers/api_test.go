package controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kbase/controllers"
	dbpkg "kbase/db"
	"kbase/ledger"
	"kbase/models"
	"kbase/router"
	"kbase/storage"
)

func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// :memory: é por conexão; uma conexão só mantém o schema vivo
	database.DB().SetMaxOpenConns(1)
	database.LogMode(false)
	require.NoError(t, database.AutoMigrate(&models.User{}, &models.Content{}).Error)
	t.Cleanup(func() { database.Close() })

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	controllers.SetFileStore(store)
	controllers.InitAuth("segredo-de-teste", 1)

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(database))
	router.Initialize(r)
	return r, database
}

func seedUser(t *testing.T, database *gorm.DB, name, email string, isMaster bool, perms []string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("senha123"), 10)
	require.NoError(t, err)

	user := models.User{Name: name, Email: email, Password: string(hash), IsMaster: isMaster}
	user.SetPermissions(perms)
	require.NoError(t, database.Create(&user).Error)
	return user
}

func login(t *testing.T, r *gin.Engine, email string) string {
	w := doJSON(r, "POST", "/api/login", "", gin.H{"email": email, "password": "senha123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r *gin.Engine, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(r *gin.Engine, path, token string, fields map[string]string, fileName string, file []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if fileName != "" {
		fw, _ := mw.CreateFormFile("file", fileName)
		fw.Write(file)
	}
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginAndMe(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Ana", "ana@empresa.com", false, []string{"suporte"})

	// senha errada e e-mail desconhecido: mesma resposta
	w := doJSON(r, "POST", "/api/login", "", gin.H{"email": "ana@empresa.com", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, "POST", "/api/login", "", gin.H{"email": "ghost@empresa.com", "password": "senha123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r, "ana@empresa.com")

	// sem token / token lixo: 401
	w = doJSON(r, "GET", "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, "GET", "/api/users/me", "nem.um.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, "GET", "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ana@empresa.com"`)
	assert.Contains(t, w.Body.String(), `"sector":"suporte"`)
	// senha nunca sai
	assert.NotContains(t, w.Body.String(), "senha")
}

func TestAuthorizeDeleteContent(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Comum", "comum@empresa.com", false, nil)
	seedUser(t, database, "Chefe", "chefe@empresa.com", true, nil)

	content := models.Content{Title: "Guia", Type: models.CONTENT_TYPE_TEXT, Sector: "suporte"}
	require.NoError(t, database.Create(&content).Error)

	userToken := login(t, r, "comum@empresa.com")
	adminToken := login(t, r, "chefe@empresa.com")

	path := "/api/contents/1"

	w := doJSON(r, "DELETE", path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, "DELETE", path, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// re-delete é 404, não crash
	w = doJSON(r, "DELETE", path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSectorGateOnCreate(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Tec", "tec@empresa.com", true, []string{"tecnico"})
	seedUser(t, database, "Multi", "multi@empresa.com", true, []string{"tecnico", "suporte"})
	seedUser(t, database, "Root", "root@empresa.com", true, []string{"all"})

	form := url.Values{}
	form.Set("title", "Procedimento X")
	form.Set("type", models.CONTENT_TYPE_PROCEDURE)
	form.Set("sector", "suporte")

	// admin de outro setor: negado
	w := doForm(r, "POST", "/api/contents", login(t, r, "tec@empresa.com"), form)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// token extra do setor pedido: liberado
	w = doForm(r, "POST", "/api/contents", login(t, r, "multi@empresa.com"), form)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// super admin cruza setores
	w = doForm(r, "POST", "/api/contents", login(t, r, "root@empresa.com"), form)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSectorGateOnCreateJSON(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Tec", "tec@empresa.com", true, []string{"tecnico"})
	seedUser(t, database, "Root", "root@empresa.com", true, []string{"all"})

	body := gin.H{
		"title":  "Procedimento Y",
		"type":   models.CONTENT_TYPE_PROCEDURE,
		"sector": "suporte",
	}

	// body JSON não pode escapar do gate que o form respeita
	w := doJSON(r, "POST", "/api/contents", login(t, r, "tec@empresa.com"), body)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	var count int64
	require.NoError(t, database.Model(&models.Content{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// mesmo body, setor do próprio usuário: passa e o bind ainda funciona
	body["sector"] = "tecnico"
	w = doJSON(r, "POST", "/api/contents", login(t, r, "tec@empresa.com"), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var content models.Content
	require.NoError(t, database.First(&content, "title = ?", "Procedimento Y").Error)
	assert.Equal(t, "tecnico", content.Sector)

	body["sector"] = "suporte"
	w = doJSON(r, "POST", "/api/contents", login(t, r, "root@empresa.com"), body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateContentValidation(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Root", "root@empresa.com", true, []string{"all"})
	token := login(t, r, "root@empresa.com")

	// campo obrigatório faltando
	form := url.Values{}
	form.Set("type", models.CONTENT_TYPE_TEXT)
	form.Set("sector", "noc")
	w := doForm(r, "POST", "/api/contents", token, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// tipo inválido
	form.Set("title", "T")
	form.Set("type", "podcast")
	w = doForm(r, "POST", "/api/contents", token, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// mídia sem arquivo
	form.Set("type", models.CONTENT_TYPE_PHOTO)
	w = doForm(r, "POST", "/api/contents", token, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// views começa em zero mesmo se o cliente mandar outro valor
	form.Set("type", models.CONTENT_TYPE_TEXT)
	w = doForm(r, "POST", "/api/contents", token, form)
	require.Equal(t, http.StatusCreated, w.Code)
	var content models.Content
	require.NoError(t, database.First(&content, "title = ?", "T").Error)
	assert.Equal(t, int64(0), content.Views)
}

func TestAdditionsFlow(t *testing.T) {
	r, database := setupAPI(t)
	author := seedUser(t, database, "Marta Lima", "marta@empresa.com", false, []string{"manager", "noc"})
	token := login(t, r, "marta@empresa.com")

	content := models.Content{Title: "Troubleshooting VPN", Type: models.CONTENT_TYPE_TROUBLESHOOTING, Sector: "noc"}
	require.NoError(t, database.Create(&content).Error)

	// sem content: rejeita antes de tocar storage
	form := url.Values{}
	form.Set("title", "só título")
	w := doForm(r, "POST", "/api/contents/1/additions", token, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	form = url.Values{}
	form.Set("content", "Reiniciar o concentrador resolve")
	w = doForm(r, "POST", "/api/contents/1/additions", token, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	form.Set("content", "Verificar MTU antes")
	w = doForm(r, "POST", "/api/contents/1/additions", token, form)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, database.First(&content, 1).Error)
	assert.Equal(t, models.STEPS_KIND_ADDITIONS, content.StepsKind)
	assert.Equal(t, author.ID, content.UpdatedBy)

	l := ledger.Parse(content.Steps, content.ID)
	require.Len(t, l.Additions, 2)
	assert.Equal(t, 1, l.Additions[0].Order)
	assert.Equal(t, 2, l.Additions[1].Order)
	assert.Equal(t, "Reiniciar o concentrador resolve", l.Additions[0].Content)

	// nome do autor vem do usuário autenticado, não do cliente
	assert.Equal(t, "Marta Lima", l.Additions[0].CreatedByName)

	// registro inexistente
	w = doForm(r, "POST", "/api/contents/999/additions", token, form)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdditionsRecoverFromLegacyGarbage(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Root", "root@empresa.com", true, []string{"all"})
	token := login(t, r, "root@empresa.com")

	content := models.Content{
		Title:  "Legado",
		Type:   models.CONTENT_TYPE_TEXT,
		Sector: "adm",
		Steps:  "### não é json ###",
	}
	require.NoError(t, database.Create(&content).Error)

	form := url.Values{}
	form.Set("content", "recomeço limpo")
	w := doForm(r, "POST", "/api/contents/1/additions", token, form)
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, database.First(&content, 1).Error)
	l := ledger.Parse(content.Steps, content.ID)
	require.Len(t, l.Additions, 1)
	assert.Equal(t, 1, l.Additions[0].Order)
}

func TestViewIncrement(t *testing.T) {
	r, database := setupAPI(t)

	content := models.Content{Title: "Mapa da rede", Type: models.CONTENT_TYPE_EQUIPMENT, Sector: "noc"}
	require.NoError(t, database.Create(&content).Error)

	// caminho público, sem token
	w := doJSON(r, "POST", "/api/contents/1/view", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, "POST", "/api/contents/1/view", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, database.First(&content, 1).Error)
	assert.Equal(t, int64(2), content.Views)

	w = doJSON(r, "POST", "/api/contents/999/view", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGrantBoundsOnRegister(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Chefe", "chefe@empresa.com", true, nil)
	adminToken := login(t, r, "chefe@empresa.com")

	// admin não concede delete_content
	w := doJSON(r, "POST", "/api/users", adminToken, gin.H{
		"name": "Novo", "email": "novo@empresa.com", "password": "senha123",
		"permissions": []string{"delete_content"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// dentro do concedível passa
	w = doJSON(r, "POST", "/api/users", adminToken, gin.H{
		"name": "Novo", "email": "novo@empresa.com", "password": "senha123",
		"permissions": []string{"read_content", "update_content"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// registro anônimo ignora permissões pedidas
	w = doJSON(r, "POST", "/api/users", "", gin.H{
		"name": "Anon", "email": "anon@empresa.com", "password": "senha123",
		"permissions": []string{"all"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var anon models.User
	require.NoError(t, database.First(&anon, "email = ?", "anon@empresa.com").Error)
	assert.Empty(t, anon.PermissionList())

	// e-mail duplicado
	w = doJSON(r, "POST", "/api/users", "", gin.H{
		"name": "Outra", "email": "anon@empresa.com", "password": "senha123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterWithBadTokenFailsClosed(t *testing.T) {
	r, database := setupAPI(t)

	// credencial apresentada mas inválida: 401, nunca downgrade anônimo
	w := doJSON(r, "POST", "/api/users", "nem.um.jwt", gin.H{
		"name": "Intruso", "email": "intruso@empresa.com", "password": "senha123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, database.Model(&models.User{}).Where("email = ?", "intruso@empresa.com").Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// sem header nenhum segue anônimo normalmente
	w = doJSON(r, "POST", "/api/users", "", gin.H{
		"name": "Anon", "email": "anon@empresa.com", "password": "senha123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdditionToMissingRecordStoresNothing(t *testing.T) {
	r, database := setupAPI(t)
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	controllers.SetFileStore(store)

	seedUser(t, database, "Root", "root@empresa.com", true, []string{"all"})
	token := login(t, r, "root@empresa.com")

	w := doMultipart(r, "/api/contents/999/additions", token,
		map[string]string{"content": "nota perdida"}, "anexo.png", []byte("img"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// nada ficou pra varredura recolher
	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUserListNeedsReadUser(t *testing.T) {
	r, database := setupAPI(t)
	seedUser(t, database, "Comum", "comum@empresa.com", false, nil)
	seedUser(t, database, "Chefe", "chefe@empresa.com", true, nil)

	w := doJSON(r, "GET", "/api/users", login(t, r, "comum@empresa.com"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// read_user é implícito da role admin
	w = doJSON(r, "GET", "/api/users", login(t, r, "chefe@empresa.com"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"password"`)
}
