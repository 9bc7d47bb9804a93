package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		first_name TEXT,
		last_name TEXT,
		password_hash TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_meta (
		user_id INTEGER NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT,
		PRIMARY KEY (user_id, meta_key)
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		price DECIMAL(10,2),
		status TEXT DEFAULT 'draft',
		image_id INTEGER,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS product_meta (
		product_id INTEGER NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT,
		PRIMARY KEY (product_id, meta_key)
	);

	CREATE TABLE IF NOT EXISTS attachments (
		id INTEGER PRIMARY KEY,
		file_name TEXT NOT NULL,
		file_path TEXT NOT NULL,
		mime_type TEXT,
		metadata TEXT,
		created_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER,
		status TEXT,
		total DECIMAL(10,2),
		shipping_total DECIMAL(10,2),
		billing_email TEXT,
		billing_phone TEXT,
		billing_first_name TEXT,
		billing_last_name TEXT,
		billing_address1 TEXT,
		billing_address2 TEXT,
		billing_city TEXT,
		billing_state TEXT,
		billing_postcode TEXT,
		billing_country TEXT,
		shipping_address1 TEXT,
		shipping_address2 TEXT,
		shipping_city TEXT,
		shipping_state TEXT,
		shipping_postcode TEXT,
		shipping_country TEXT,
		payment_method TEXT,
		payment_method_title TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id INTEGER PRIMARY KEY,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		total DECIMAL(10,2)
	);

	CREATE TABLE IF NOT EXISTS order_meta (
		order_id INTEGER NOT NULL,
		meta_key TEXT NOT NULL,
		meta_value TEXT,
		PRIMARY KEY (order_id, meta_key)
	);

	CREATE TABLE IF NOT EXISTS sync_jobs (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sync_chunks (
		job_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		data TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		PRIMARY KEY (job_id, idx)
	);

	CREATE TABLE IF NOT EXISTS sync_state (
		state_key TEXT PRIMARY KEY,
		state_value TEXT,
		updated_at TIMESTAMP
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
