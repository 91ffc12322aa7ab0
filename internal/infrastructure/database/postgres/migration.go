// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/domain/code"
	"github.com/your-org/storefront-backend/internal/domain/credit"
	"github.com/your-org/storefront-backend/internal/domain/ledger"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// Code families
		&code.Discount{},
		&code.Affiliate{},
		&code.AffiliateCode{},
		&code.SMSCode{},

		// Shipping
		&shipping.Method{},

		// Orders and the number sequence
		&order.Order{},
		&order.Item{},
		&order.PaymentEvent{},
		&order.Sequence{},

		// Store credit
		&credit.Balance{},
		&credit.Transaction{},

		// Ledger
		&ledger.CodeUsage{},
		&ledger.Commission{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_email_created ON orders(email, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_test ON orders(test_order)",

		// Code usage lookups by code and customer, used for per-customer caps
		"CREATE INDEX IF NOT EXISTS idx_code_usages_code ON code_usages(code_type, code_id)",
		"CREATE INDEX IF NOT EXISTS idx_code_usages_customer ON code_usages(code_type, code_id, customer_email)",

		// Commission payout listing
		"CREATE INDEX IF NOT EXISTS idx_commissions_affiliate_paid ON commissions(affiliate_id, paid)",

		// Shipping method ordering
		"CREATE INDEX IF NOT EXISTS idx_shipping_methods_active_sort ON shipping_methods(active, sort_order)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	if err := m.seedShippingMethods(); err != nil {
		return fmt.Errorf("failed to seed shipping methods: %w", err)
	}

	if err := m.seedSampleCodes(); err != nil {
		return fmt.Errorf("failed to seed sample codes: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedShippingMethods inserts the standard shipping method set. Existing
// rows are left untouched so operator edits survive restarts.
func (m *Migration) seedShippingMethods() error {
	methods := []shipping.Method{
		{
			ID:            "domestic-standard",
			Name:          "Standard Shipping",
			Description:   "5-7 business days",
			Price:         1500,
			FreeThreshold: 25000,
			Regions:       []string{"US"},
			Active:        true,
			SortOrder:     1,
		},
		{
			ID:           "domestic-express",
			Name:         "Express Shipping",
			Description:  "1-2 business days",
			Price:        4000,
			Regions:      []string{"US"},
			SpeedUpgrade: true,
			Active:       true,
			SortOrder:    2,
		},
		{
			ID:            "international",
			Name:          "International Shipping",
			Description:   "10-20 business days",
			Price:         4500,
			FreeThreshold: 50000,
			Regions:       []string{},
			Active:        true,
			SortOrder:     3,
		},
	}

	for _, method := range methods {
		err := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&method).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// seedSampleCodes inserts development-only discount and affiliate codes
func (m *Migration) seedSampleCodes() error {
	discounts := []code.Discount{
		{Code: "WELCOME10", Type: "percentage", Value: 10, Active: true},
		{Code: "SAVE20", Type: "fixed", Value: 2000, Active: true, MinPurchase: 10000},
	}
	for _, d := range discounts {
		err := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&d).Error
		if err != nil {
			return err
		}
	}

	var affiliate code.Affiliate
	err := m.db.Where(code.Affiliate{Name: "Sample Partner"}).
		Attrs(code.Affiliate{Email: "partner@example.com", CommissionRate: 15, Active: true}).
		FirstOrCreate(&affiliate).Error
	if err != nil {
		return err
	}

	ac := code.AffiliateCode{
		AffiliateID: affiliate.ID,
		Code:        "PARTNER15",
		Percent:     15,
		Active:      true,
	}
	return m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ac).Error
}

// DropAllTables drops all tables. Test environments only.
func (m *Migration) DropAllTables() error {
	log.Println("⚠️  Dropping all database tables...")

	tables := []string{
		"commissions",
		"code_usages",
		"credit_transactions",
		"credit_balances",
		"payment_events",
		"order_items",
		"orders",
		"order_sequences",
		"shipping_methods",
		"sms_codes",
		"affiliate_codes",
		"affiliates",
		"discounts",
	}

	for _, table := range tables {
		if err := m.db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	log.Println("✅ All tables dropped")
	return nil
}

// CleanupTestData removes orders flagged as test orders, with their
// dependent ledger rows
func (m *Migration) CleanupTestData() error {
	cutoff := time.Now().AddDate(0, 0, -30)

	return m.db.Transaction(func(tx *gorm.DB) error {
		var numbers []int64
		err := tx.Model(&order.Order{}).
			Where("test_order = ? AND created_at < ?", true, cutoff).
			Pluck("order_number", &numbers).Error
		if err != nil {
			return err
		}
		if len(numbers) == 0 {
			return nil
		}

		if err := tx.Where("order_number IN ?", numbers).Delete(&ledger.CodeUsage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_number IN ?", numbers).Delete(&ledger.Commission{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("order_number IN ?", numbers).Delete(&order.Order{}).Error
	})
}
