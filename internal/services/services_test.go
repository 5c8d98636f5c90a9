package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type serviceTestEnv struct {
	db          *gorm.DB
	ctx         context.Context
	teamService *TeamService
	todoService *TodoService
	userRepo    repository.UserRepository
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Team{}, &models.TeamMember{}, &models.Todo{}))

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	return serviceTestEnv{
		db:          db,
		ctx:         context.Background(),
		teamService: NewTeamService(teamRepo, userRepo, fixedClock),
		todoService: NewTodoService(todoRepo, teamRepo, fixedClock),
		userRepo:    userRepo,
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

func statusPtr(s models.TodoStatus) *models.TodoStatus { return &s }

func uint64Ptr(v uint64) *uint64 { return &v }

func todoIDs(todos []models.Todo) []uint64 {
	ids := make([]uint64, len(todos))
	for i, todo := range todos {
		ids[i] = todo.ID
	}
	return ids
}
