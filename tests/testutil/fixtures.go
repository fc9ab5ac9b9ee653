package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/infrastructure/postgres"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is skipped when
// DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.NewMigrator(dbURL, migrationsPath(t), zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     dbURL,
		MaxConns:        20,
		ApplicationName: "smartlink-test",
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{Pool: pool, t: t}
}

// migrationsPath walks up from the working directory to the repository's migrations.
func migrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("migrations directory not found")
		}
		dir = parent
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE analytics_events, referral_earnings, transaction_logs, withdrawals,
			ad_slot_campaigns, creatives, campaigns, ad_slots, sites, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateUser inserts a user with a zero balance.
func (db *TestDB) CreateUser(ctx context.Context, role domain.Role, referrerID *int64) int64 {
	db.t.Helper()

	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, name, role, referrer_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		GenerateID()+"@example.com", "test user", string(role), referrerID,
	).Scan(&id)
	if err != nil {
		db.t.Fatalf("failed to create user: %v", err)
	}
	return id
}

// CreateAdSlot inserts an active site and an active banner slot owned by ownerID.
func (db *TestDB) CreateAdSlot(ctx context.Context, ownerID int64, pricePerImpression decimal.Decimal) int64 {
	db.t.Helper()

	var siteID, slotID int64
	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO sites (user_id, name, url) VALUES ($1, 'site', 'https://example.com') RETURNING id`,
		ownerID,
	).Scan(&siteID); err != nil {
		db.t.Fatalf("failed to create site: %v", err)
	}

	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO ad_slots (site_id, name, type, width, height, price_per_impression)
		 VALUES ($1, 'slot', 'banner', 300, 250, $2) RETURNING id`,
		siteID, pricePerImpression.String(),
	).Scan(&slotID); err != nil {
		db.t.Fatalf("failed to create ad slot: %v", err)
	}
	return slotID
}

// CreateCreative inserts an active banner creative for campaignID.
func (db *TestDB) CreateCreative(ctx context.Context, campaignID int64) int64 {
	db.t.Helper()

	var id int64
	if err := db.Pool.QueryRow(ctx,
		`INSERT INTO creatives (campaign_id, name, type, content, url)
		 VALUES ($1, 'creative', 'banner', '{"image":"banner.png"}', 'https://advertiser.example.com') RETURNING id`,
		campaignID,
	).Scan(&id); err != nil {
		db.t.Fatalf("failed to create creative: %v", err)
	}
	return id
}

// CountRows counts rows in table matching a simple where clause.
func (db *TestDB) CountRows(ctx context.Context, table, where string, args ...any) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&n); err != nil {
		db.t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
