package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/stock"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	storePostgres "github.com/AtirathTechnologies/warehouse-hub/internal/store/postgres"
	"github.com/AtirathTechnologies/warehouse-hub/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed one user per role, the default settings documents and a small product catalog.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(ctx, gormDB); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := seedUsers(ctx, gormDB, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("failed to seed users: %v", err)
		}

		// published through the store so running servers pick the documents up
		repo := storePostgres.NewDocumentRepository(gormDB, cfg.Store.NotifyChannel)
		docs := store.NewPersistent(repo, logger.LoggerWrapper())
		if err := seedSettings(ctx, repo, docs); err != nil {
			log.Fatalf("failed to seed settings: %v", err)
		}

		if err := seedStock(ctx, gormDB); err != nil {
			log.Fatalf("failed to seed stock: %v", err)
		}

		fmt.Println("Seeding complete")
	},
}

func clearSeedData(ctx context.Context, db *gorm.DB) error {
	tables := []string{
		"stock_movements",
		"inventory",
		"products",
		"warehouses",
		"generated_reports",
		"audit_logs",
		"settings_documents",
		"users",
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func seedUsers(ctx context.Context, db *gorm.DB, cost int) error {
	hash, err := auth.HashPassword(seedPassword, cost)
	if err != nil {
		return err
	}

	for _, role := range permission.Roles {
		email := strings.ToLower(string(role)) + "@warehouse.local"
		u := userDatamodel.User{
			Email:        email,
			Name:         string(role) + " User",
			PasswordHash: hash,
			Role:         string(role),
			IsActive:     true,
		}

		res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&u)
		if res.Error != nil {
			return fmt.Errorf("insert %s: %w", email, res.Error)
		}
		if res.RowsAffected == 0 {
			fmt.Println("user already exists:", email)
			continue
		}
		fmt.Printf("Seeded %s user: %s / %s\n", role, email, seedPassword)
	}
	return nil
}

// seedSettings publishes the defaults only for documents that do not exist yet,
// so reseeding never overwrites an administrator's changes.
func seedSettings(ctx context.Context, repo store.Repository, docs store.DocumentStore) error {
	now := time.Now()
	bodies := map[store.Key]func() (json.RawMessage, error){
		store.KeyUserRules: func() (json.RawMessage, error) {
			return permission.EncodeMatrix(permission.DefaultMatrix(), now)
		},
		store.KeyReports: func() (json.RawMessage, error) {
			return permission.EncodeReportAvailability(permission.DefaultReportAvailability(), now)
		},
	}

	for _, key := range []store.Key{store.KeyUserRules, store.KeyReports} {
		current, err := repo.Get(ctx, key)
		if err != nil {
			return err
		}
		if current.Exists {
			fmt.Println("settings document already exists:", key)
			continue
		}

		body, err := bodies[key]()
		if err != nil {
			return err
		}
		if err := docs.Publish(ctx, key, body); err != nil {
			return err
		}
		fmt.Println("Seeded settings document:", key)
	}
	return nil
}

func seedStock(ctx context.Context, db *gorm.DB) error {
	products := []stockDatamodel.Product{
		{SKU: "RICE-25", Name: "Basmati Rice 25kg", Category: "Grains", Unit: "bags"},
		{SKU: "WHEAT-50", Name: "Wheat 50kg", Category: "Grains", Unit: "bags"},
		{SKU: "DAL-10", Name: "Toor Dal 10kg", Category: "Pulses", Unit: "bags"},
		{SKU: "OIL-15", Name: "Sunflower Oil 15L", Category: "Oils", Unit: "tins"},
	}
	levels := map[string]map[string]int64{
		"Main":  {"RICE-25": 120, "WHEAT-50": 80, "DAL-10": 60, "OIL-15": 40},
		"North": {"RICE-25": 30, "OIL-15": 12},
	}

	warehouses := []stockDatamodel.Warehouse{
		{Code: "Main", Name: "Main Warehouse", Location: "Hyderabad", IsActive: true},
		{Code: "North", Name: "North Depot", Location: "Secunderabad", IsActive: true},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range warehouses {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&warehouses[i]).Error; err != nil {
				return fmt.Errorf("insert warehouse %s: %w", warehouses[i].Code, err)
			}
		}

		for i := range products {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&products[i]).Error; err != nil {
				return fmt.Errorf("insert product %s: %w", products[i].SKU, err)
			}
		}

		for warehouse, bySKU := range levels {
			for sku, qty := range bySKU {
				row := stockDatamodel.Inventory{
					ID:        stock.InventoryID(sku, warehouse),
					SKU:       sku,
					Warehouse: warehouse,
					Quantity:  qty,
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
					return fmt.Errorf("insert inventory %s: %w", row.ID, err)
				}
			}
		}
		fmt.Printf("Seeded %d warehouses and %d products\n", len(warehouses), len(products))
		return nil
	})
}
