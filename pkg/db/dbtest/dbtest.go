// Package dbtest opens throwaway sqlite databases carrying the real schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rhoodstudio/studio-backend/pkg/db"
	"github.com/rhoodstudio/studio-backend/pkg/db/models"
	"github.com/rhoodstudio/studio-backend/pkg/enums"
	"github.com/rhoodstudio/studio-backend/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns a migrated in-memory database private to the test.
func New(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true, NowFunc: db.NowUTC})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a single connection keeps the shared-cache db alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Up(context.Background(), sqlDB, migrate.DialectSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db.NewFromGorm(conn)
}

// SeedUser inserts a user with the given role and credit balance.
func SeedUser(t *testing.T, client *db.Client, role enums.UserRole, credits int, createdAt time.Time) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s@rhood.test", uuid.NewString()[:8]),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		Credits:   credits,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if err := client.DB().Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedOpportunity inserts an opportunity. Inactive rows are written with an
// explicit update since gorm skips zero-valued fields that carry a default.
func SeedOpportunity(t *testing.T, client *db.Client, title string, active bool) models.Opportunity {
	t.Helper()
	opp := models.Opportunity{ID: uuid.New(), Title: title, IsActive: true}
	if err := client.DB().Create(&opp).Error; err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	if !active {
		if err := client.DB().Model(&models.Opportunity{}).Where("id = ?", opp.ID).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate opportunity: %v", err)
		}
		opp.IsActive = false
	}
	return opp
}
