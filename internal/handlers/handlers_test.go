package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type handlerTestEnv struct {
	db           *gorm.DB
	router       *gin.Engine
	authService  *services.AuthService
	tokenService *services.TokenService
	teamService  *services.TeamService
	todoService  *services.TodoService
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Todo{},
	)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	authService := services.NewAuthService(userRepo, nil, nil)
	tokenService := services.NewTokenService("test-secret", time.Hour, nil)
	teamService := services.NewTeamService(teamRepo, userRepo, nil)
	todoService := services.NewTodoService(todoRepo, teamRepo, nil)

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(router.Group("/api"), Routes{
		Auth:   NewAuthHandler(authService, tokenService, nil, "http://localhost:3000", nil),
		Teams:  NewTeamHandler(teamService, nil),
		Todos:  NewTodoHandler(todoService, nil),
		Tokens: tokenService,
	})

	return handlerTestEnv{
		db:           db,
		router:       router,
		authService:  authService,
		tokenService: tokenService,
		teamService:  teamService,
		todoService:  todoService,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		FullName:     username,
		AuthProvider: models.AuthProviderLocal,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// do sends a JSON request as user (nil for anonymous) and returns the recorder.
func (env handlerTestEnv) do(t *testing.T, method, url string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := env.tokenService.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]interface{}](t, w)
	code, _ := body["code"].(string)
	return code
}

