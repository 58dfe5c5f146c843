package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DriverName is the database/sql driver registered with the catalog SQL
// functions below.
const DriverName = "sqlite3_catalog"

// SQL functions available on every connection opened through DriverName.
const (
	// LowerFunc lowercases its argument with full Unicode case folding.
	// The builtin LOWER only folds ASCII.
	LowerFunc = "catalog_lower"
	// DecimalCmpFunc compares two decimal strings and returns -1, 0 or 1.
	DecimalCmpFunc = "catalog_decimal_cmp"
)

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc(LowerFunc, strings.ToLower, true); err != nil {
				return fmt.Errorf("register %s: %w", LowerFunc, err)
			}
			if err := conn.RegisterFunc(DecimalCmpFunc, decimalCmp, true); err != nil {
				return fmt.Errorf("register %s: %w", DecimalCmpFunc, err)
			}
			return nil
		},
	})
}

func decimalCmp(a, b string) (int, error) {
	x, err := decimal.NewFromString(a)
	if err != nil {
		return 0, err
	}
	y, err := decimal.NewFromString(b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y), nil
}

// Product is the GORM mapping of the products table. Price is kept as text so
// SQLite never rounds it through a float; range predicates use DecimalCmpFunc.
type Product struct {
	ID       int64           `gorm:"primaryKey;autoIncrement"`
	Name     string          `gorm:"type:varchar(255);not null"`
	Price    decimal.Decimal `gorm:"type:text;not null;check:products_price_check,price >= 0"`
	ImageURL *string         `gorm:"column:image_url;type:varchar(500)"`
}

func (Product) TableName() string {
	return "products"
}

// Client wraps a GORM handle on a SQLite database.
type Client struct {
	*gorm.DB
}

// Open connects to the SQLite database at dsn and creates the products table
// when missing.
func Open(dsn string) (*Client, error) {
	gdb, err := gorm.Open(gormsqlite.New(gormsqlite.Config{
		DriverName: DriverName,
		DSN:        dsn,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := gdb.AutoMigrate(&Product{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Client{gdb}, nil
}

func (c *Client) IsHealthy(ctx context.Context) (bool, error) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return false, fmt.Errorf("get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}
	return true, nil
}

func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}
