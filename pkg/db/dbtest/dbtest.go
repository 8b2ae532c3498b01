// Package dbtest opens migrated in-memory sqlite databases for package tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/resellerhub-backend/pkg/db"
	"github.com/angelmondragon/resellerhub-backend/pkg/db/models"
	"github.com/angelmondragon/resellerhub-backend/pkg/enums"
)


// Open returns a fresh, migrated database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return conn
}

// OpenClient wraps Open in a db.Client so services get a real WithTx.
func OpenClient(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// SeedLevels inserts tiers 1-10 with the production discount and commission tables.
func SeedLevels(t *testing.T, conn *gorm.DB) map[int]models.ResellerLevel {
	t.Helper()
	discounts := []int64{5, 8, 12, 15, 18, 22, 25, 28, 32, 35}
	commissions := []int64{2, 3, 4, 5, 6, 7, 8, 9, 10, 12}
	minSales := []int64{0, 1_000_000, 5_000_000, 10_000_000, 20_000_000, 35_000_000, 50_000_000, 65_000_000, 80_000_000, 100_000_000}
	names := []string{"Bronze", "Silver", "Gold", "Platinum", "Diamond", "Master", "Grand Master", "Elite", "Champion", "Legendary"}
	levels := make(map[int]models.ResellerLevel, len(names))
	for i, name := range names {
		level := models.ResellerLevel{
			Level:                i + 1,
			Name:                 name,
			DiscountPercentage:   decimal.NewFromInt(discounts[i]),
			CommissionPercentage: decimal.NewFromInt(commissions[i]),
			MinSales:             decimal.NewFromInt(minSales[i]),
			IsActive:             true,
		}
		if err := conn.Create(&level).Error; err != nil {
			t.Fatalf("seed level %d: %v", i+1, err)
		}
		levels[level.Level] = level
	}
	return levels
}

// CreateAccount inserts an account with an optional tier and sponsor.
func CreateAccount(t *testing.T, conn *gorm.DB, name string, level *models.ResellerLevel, sponsor *models.Account) models.Account {
	t.Helper()
	account := models.Account{
		Name:  name,
		Email: name + "-" + uuid.NewString()[:8] + "@example.test",
		Role:  enums.AccountRoleBuyer,
	}
	if level != nil {
		account.ResellerLevelID = &level.ID
		account.Role = enums.AccountRoleReseller
	}
	if sponsor != nil {
		account.SponsorID = &sponsor.ID
	}
	if err := conn.Create(&account).Error; err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return account
}

// CreateProduct inserts an active product.
func CreateProduct(t *testing.T, conn *gorm.DB, sku string, price int64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         decimal.NewFromInt(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("create product %s: %v", sku, err)
	}
	return product
}
