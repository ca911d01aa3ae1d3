//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/picklemart/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.User{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderLine{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresUserRepository(t *testing.T) {
	runUserRepositoryContract(t, NewUserRepository(setupPostgresIntegrationDB(t)))
}

func TestPostgresCartRepository(t *testing.T) {
	runCartRepositoryContract(t, NewCartRepository(setupPostgresIntegrationDB(t)))
}

func TestPostgresOrderRepositoryDuplicateRollsBack(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewOrderRepository(db)
	batch := sampleOrderLines("pg-order")
	batch[1].LineID = batch[0].LineID
	if err := repo.CreateLines(t.Context(), batch); err != ErrAlreadyExists {
		t.Fatalf("duplicate line want ErrAlreadyExists got %v", err)
	}
	var count int64
	db.Model(&models.OrderLine{}).Where("order_id = ?", "pg-order").Count(&count)
	if count != 0 {
		t.Fatalf("rolled back order want 0 rows got %d", count)
	}
}
