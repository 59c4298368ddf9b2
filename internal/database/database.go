// Package database centralises sqlx connection helpers for MySQL/MariaDB.
//
// Public entry points:
//
//	Open(dsn)                              – conservative pool defaults.
//	OpenWithOptions(dsn, maxOpen, maxIdle) – fine-grained control.
//	IsDuplicate(err)                       – duplicate-key detection.
//
// Both open helpers Ping before returning so bootstrap fails fast.  The DSN
// must carry `parseTime=true`; every date column in the schema scans into
// time.Time.
package database

import (
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlDupEntry is server error 1062, raised when an INSERT or UPDATE
// violates a UNIQUE index.
const mysqlDupEntry = 1062

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// IsDuplicate reports whether err is a MySQL duplicate-key violation.  The
// hive allocator treats this as the authoritative signal that a candidate
// serial or token lost a race, and retries with fresh ones.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDupEntry
}
