//go:build db
// +build db

package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("FIELDMARK_DB_DSN")
	if dsn == "" {
		t.Skip("FIELDMARK_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func TestRepositoryCatalogLookups(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	store := &models.Store{
		ID:       uuid.New(),
		Name:     fmt.Sprintf("fm_test_store_%s", uuid.NewString()),
		Address:  "Av. Constitución 400",
		City:     "Monterrey",
		State:    "NL",
		IsActive: true,
	}
	if err := tx.Create(store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}

	industry := &models.Industry{
		ID:       uuid.New(),
		Name:     fmt.Sprintf("fm_test_industry_%s", uuid.NewString()),
		IsActive: true,
	}
	if err := tx.Create(industry).Error; err != nil {
		t.Fatalf("create industry: %v", err)
	}

	link := &models.StoreIndustry{
		ID:         uuid.New(),
		StoreID:    store.ID,
		IndustryID: industry.ID,
		IsActive:   true,
	}
	if err := tx.Create(link).Error; err != nil {
		t.Fatalf("create store industry: %v", err)
	}

	found, err := repo.FindStoreByID(ctx, store.ID)
	if err != nil {
		t.Fatalf("find store: %v", err)
	}
	if found.Name != store.Name {
		t.Fatalf("expected store %s, got %s", store.Name, found.Name)
	}

	links, err := repo.ListStoreIndustries(ctx, store.ID)
	if err != nil {
		t.Fatalf("list store industries: %v", err)
	}
	if len(links) != 1 || links[0].IndustryID != industry.ID {
		t.Fatalf("expected the created link, got %+v", links)
	}

	link.IsActive = false
	if err := tx.Save(link).Error; err != nil {
		t.Fatalf("deactivate link: %v", err)
	}
	links, err = repo.ListStoreIndustries(ctx, store.ID)
	if err != nil {
		t.Fatalf("list store industries: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("deactivated link must not be listed, got %+v", links)
	}
}
