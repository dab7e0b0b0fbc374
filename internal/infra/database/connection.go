package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// NewDBConnection opens the pool and pings it.
func NewDBConnection(ctx context.Context, driver, connString string) (*sql.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// one writer; keeps in-memory databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Handle opens the pool on first use and hands out the same *sql.DB for the
// life of the process.
type Handle struct {
	driver string
	dsn    string

	once sync.Once
	db   *sql.DB
	err  error
}

func NewHandle(driver, dsn string) *Handle {
	return &Handle{driver: driver, dsn: dsn}
}

func (h *Handle) DB(ctx context.Context) (*sql.DB, error) {
	h.once.Do(func() {
		h.db, h.err = NewDBConnection(ctx, h.driver, h.dsn)
	})
	return h.db, h.err
}

func (h *Handle) Driver() string {
	return h.driver
}
