package config

import (
	"fmt"
	"strings"
)

type Storage struct {
	Driver StorageDriver `env:"STORAGE_DRIVER" envDefault:"POSTGRES"`
}

// StorageDriver selects the backing store for the products table.
type StorageDriver uint8

const (
	StorageDriverPostgres StorageDriver = iota
	StorageDriverSQLite
)

func (d StorageDriver) String() string {
	return []string{"POSTGRES", "SQLITE"}[d]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StorageDriver) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*d = StorageDriverPostgres
	case "SQLITE":
		*d = StorageDriverSQLite
	default:
		return fmt.Errorf("unknown storage driver: %s", text)
	}
	return nil
}

func (d StorageDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type SQLite struct {
	DSN string `env:"SQLITE_DSN" envDefault:"file:catalog.db?_foreign_keys=on"`
}
