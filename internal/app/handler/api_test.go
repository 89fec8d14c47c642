package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasanhatam/Damonservice/internal/app/config"
	"github.com/sasanhatam/Damonservice/internal/app/middleware"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
)

func newTestServer(t *testing.T) (*gin.Engine, repository.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.NewFile(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repository.EnsureSeedData(repo))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Token:         "test",
			ExpiresIn:     time.Hour,
			SigningMethod: jwt.SigningMethodHS256,
		},
	}

	authHandler := NewAuthHandler(repo, nil, cfg)
	apiHandler := NewAPIHandler(repo, nil, authHandler)
	authMiddleware := middleware.NewAuthMiddleware(nil, cfg)

	r := gin.New()
	apiHandler.RegisterAPIRoutes(r, authMiddleware)
	return r, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine, loginName, password string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login": loginName, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLogin(t *testing.T) {
	router, _ := newTestServer(t)

	token := login(t, router, "admin", "admin")
	assert.NotEmpty(t, token)

	// неверный пароль и неизвестный логин дают одинаковый отказ
	wrongPass := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login": "admin", "password": "wrong",
	})
	unknown := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login": "ghost", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String())
}

func TestLogin_InactiveUser(t *testing.T) {
	router, repo := newTestServer(t)

	user, err := repo.GetUserByLogin("ali")
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, repo.SaveUser(user))

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"login": "ali", "password": "123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogRedaction(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")

	// без токена каталог закрыт
	anon := doJSON(t, router, http.MethodGet, "/api/devices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)

	w := doJSON(t, router, http.MethodGet, "/api/devices", employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "VRF-Outdoor-20HP")
	assert.Contains(t, body, "category_name")
	// закрытые поля не попадают в ответ ни под каким именем
	assert.NotContains(t, body, "factory_price")
	assert.NotContains(t, body, "length")
	assert.NotContains(t, body, "weight")
	assert.NotContains(t, body, "15000")

	// полный каталог для сотрудника запрещен
	full := doJSON(t, router, http.MethodGet, "/api/devices/all", employee, nil)
	assert.Equal(t, http.StatusForbidden, full.Code)

	// администратор видит закрытые поля
	admin := login(t, router, "admin", "admin")
	adminView := doJSON(t, router, http.MethodGet, "/api/devices/all", admin, nil)
	require.Equal(t, http.StatusOK, adminView.Code)
	assert.Contains(t, adminView.Body.String(), "factory_price")
}

func TestCatalogSearchFilters(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")

	w := doJSON(t, router, http.MethodGet, "/api/devices?query=chiller", employee, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Devices []struct {
			ModelName string `json:"model_name"`
		} `json:"devices"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	for _, d := range resp.Devices {
		assert.Contains(t, d.ModelName, "Chiller")
	}
}

func TestPriceRequestLifecycle(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")
	admin := login(t, router, "admin", "admin")

	// проект сотрудника
	w := doJSON(t, router, http.MethodPost, "/api/projects", employee, gin.H{"name": "Hotel Espinas"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	// запрос цены: цена не возвращается до одобрения
	w = doJSON(t, router, http.MethodPost, "/api/inquiries", employee, gin.H{
		"device_id": 1, "project_id": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		RequestID uint     `json:"request_id"`
		Status    string   `json:"status"`
		SellPrice *float64 `json:"sell_price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.SellPrice)

	// повторный запрос не создает дубликат
	w = doJSON(t, router, http.MethodPost, "/api/inquiries", employee, gin.H{
		"device_id": 1, "project_id": project.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var repeated struct {
		RequestID uint `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repeated))
	assert.Equal(t, created.RequestID, repeated.RequestID)

	// сотруднику запрещено решать запросы
	forbidden := doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/api/inquiries/%d/status", created.RequestID), employee, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	// администратор видит вычисленную цену в журнале
	w = doJSON(t, router, http.MethodGet, "/api/inquiries", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var journal struct {
		Inquiries []struct {
			ID        uint    `json:"id"`
			SellPrice float64 `json:"sell_price"`
		} `json:"inquiries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &journal))
	require.Len(t, journal.Inquiries, 1)
	assert.Equal(t, float64(16056), journal.Inquiries[0].SellPrice)

	// одобрение открывает цену сотруднику
	w = doJSON(t, router, http.MethodPut,
		fmt.Sprintf("/api/inquiries/%d/status", created.RequestID), admin, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/inquiries/my", employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []struct {
		Status    string   `json:"status"`
		SellPrice *float64 `json:"sell_price"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "approved", mine[0].Status)
	require.NotNil(t, mine[0].SellPrice)
	assert.Equal(t, float64(16056), *mine[0].SellPrice)
}

func TestPriceRequest_MissingRefs(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")

	w := doJSON(t, router, http.MethodPost, "/api/projects", employee, gin.H{"name": "Hotel Espinas"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))

	// несуществующее устройство: отказ, а не запись с нулевой ценой
	missingDevice := doJSON(t, router, http.MethodPost, "/api/inquiries", employee, gin.H{
		"device_id": 999, "project_id": project.ID,
	})
	assert.Equal(t, http.StatusNotFound, missingDevice.Code)

	missingProject := doJSON(t, router, http.MethodPost, "/api/inquiries", employee, gin.H{
		"device_id": 1, "project_id": 999,
	})
	assert.Equal(t, http.StatusNotFound, missingProject.Code)

	// чужой проект недоступен
	sara := login(t, router, "sara", "123")
	foreign := doJSON(t, router, http.MethodPost, "/api/inquiries", sara, gin.H{
		"device_id": 1, "project_id": project.ID,
	})
	assert.Equal(t, http.StatusForbidden, foreign.Code)
}

func TestProjectChat(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")
	admin := login(t, router, "admin", "admin")

	w := doJSON(t, router, http.MethodPost, "/api/projects", employee, gin.H{"name": "Hotel Espinas"})
	require.Equal(t, http.StatusCreated, w.Code)
	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
	chatPath := fmt.Sprintf("/api/projects/%d/comments", project.ID)

	// чужой сотрудник не видит чат, администратор видит
	sara := login(t, router, "sara", "123")
	foreign := doJSON(t, router, http.MethodGet, chatPath, sara, nil)
	assert.Equal(t, http.StatusForbidden, foreign.Code)

	w = doJSON(t, router, http.MethodPost, chatPath, employee, gin.H{"content": "когда будет цена?"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, chatPath, admin, gin.H{"content": "проверяю"})
	require.Equal(t, http.StatusCreated, w.Code)

	// бейдж сотрудника считает сообщения администратора
	w = doJSON(t, router, http.MethodGet, "/api/projects/unread", employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var badge struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &badge))
	assert.Equal(t, 1, badge.Count)

	// сводки администратора показывают непрочитанное сообщение сотрудника
	w = doJSON(t, router, http.MethodGet, "/api/projects/summaries", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []struct {
		ID          uint `json:"id"`
		UnreadCount int  `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].UnreadCount)

	// отметка прочитанного сбрасывает бейдж
	w = doJSON(t, router, http.MethodPost, chatPath+"/read", employee, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/projects/unread", employee, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &badge))
	assert.Equal(t, 0, badge.Count)
}

func TestSettingsAdminOnly(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")
	admin := login(t, router, "admin", "admin")

	forbidden := doJSON(t, router, http.MethodGet, "/api/settings", employee, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	w := doJSON(t, router, http.MethodGet, "/api/settings", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "profit_factor")

	// частичная замена отклоняется
	partial := doJSON(t, router, http.MethodPut, "/api/settings", admin, gin.H{
		"profit_factor": 0.7,
	})
	assert.Equal(t, http.StatusBadRequest, partial.Code)

	full := doJSON(t, router, http.MethodPut, "/api/settings", admin, gin.H{
		"discount_multiplier": 0.4,
		"freight_rate":        1200,
		"customs_numerator":   400000,
		"customs_denominator": 160000,
		"warranty_rate":       0.06,
		"commission_factor":   0.9,
		"office_factor":       0.9,
		"profit_factor":       0.7,
	})
	assert.Equal(t, http.StatusOK, full.Code, full.Body.String())
}

func TestUserManagement(t *testing.T) {
	router, repo := newTestServer(t)
	admin := login(t, router, "admin", "admin")

	// создание сотрудника
	w := doJSON(t, router, http.MethodPost, "/api/users", admin, gin.H{
		"login": "reza", "password": "secret", "full_name": "Reza Karimi",
		"role": "employee", "is_active": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// пароль хранится хешем
	created, err := repo.GetUserByLogin("reza")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", created.Password)

	// новый сотрудник может войти
	login(t, router, "reza", "secret")

	// дубликат логина отклоняется
	dup := doJSON(t, router, http.MethodPost, "/api/users", admin, gin.H{
		"login": "reza", "password": "x", "full_name": "Other",
		"role": "employee", "is_active": true,
	})
	assert.Equal(t, http.StatusConflict, dup.Code)

	// последний администратор защищен от удаления
	adminUser, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	guarded := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/users/%d", adminUser.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, guarded.Code)
}

func TestUserManagement_LastAdminUpdateGuard(t *testing.T) {
	router, repo := newTestServer(t)
	admin := login(t, router, "admin", "admin")

	adminUser, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	path := fmt.Sprintf("/api/users/%d", adminUser.ID)

	// понижение единственного администратора до сотрудника
	demote := doJSON(t, router, http.MethodPut, path, admin, gin.H{
		"login": "admin", "password": "", "full_name": "System Administrator",
		"role": "employee", "is_active": true,
	})
	assert.Equal(t, http.StatusConflict, demote.Code, demote.Body.String())

	// деактивация единственного администратора
	deactivate := doJSON(t, router, http.MethodPut, path, admin, gin.H{
		"login": "admin", "password": "", "full_name": "System Administrator",
		"role": "admin", "is_active": false,
	})
	assert.Equal(t, http.StatusConflict, deactivate.Code)

	// учетная запись не изменилась, вход продолжает работать
	after, err := repo.GetUserByLogin("admin")
	require.NoError(t, err)
	assert.True(t, after.IsActive)
	login(t, router, "admin", "admin")

	// чужой логин при обновлении отклоняется
	aliUser, err := repo.GetUserByLogin("ali")
	require.NoError(t, err)
	steal := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/users/%d", aliUser.ID), admin, gin.H{
		"login": "sara", "password": "", "full_name": "Ali Mohammadi",
		"role": "employee", "is_active": true,
	})
	assert.Equal(t, http.StatusConflict, steal.Code)
}

func TestUserManagement_EmptyPasswordKeepsHash(t *testing.T) {
	router, repo := newTestServer(t)
	admin := login(t, router, "admin", "admin")

	before, err := repo.GetUserByLogin("ali")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/users/%d", before.ID), admin, gin.H{
		"login": "ali", "password": "", "full_name": "Ali M.",
		"role": "employee", "is_active": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after, err := repo.GetUserByLogin("ali")
	require.NoError(t, err)
	assert.Equal(t, before.Password, after.Password)
	assert.Equal(t, "Ali M.", after.FullName)

	// прежний пароль продолжает работать
	login(t, router, "ali", "123")
}

func TestBreakdownAdminOnly(t *testing.T) {
	router, _ := newTestServer(t)
	employee := login(t, router, "ali", "123")
	admin := login(t, router, "admin", "admin")

	forbidden := doJSON(t, router, http.MethodGet, "/api/devices/1/breakdown", employee, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	w := doJSON(t, router, http.MethodGet, "/api/devices/1/breakdown", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Breakdown struct {
			CompanyPrice float64 `json:"company_price"`
			SellPrice    float64 `json:"sell_price"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(5700), resp.Breakdown.CompanyPrice)
	assert.Equal(t, float64(16056), resp.Breakdown.SellPrice)
}
