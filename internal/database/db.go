package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL, sizes the pool for maxConns concurrent
// queries and verifies the connection before returning it.
func Open(user, pass, host, port, name string, maxConns int) (*sql.DB, error) {
	// parseTime + loc: DATETIME columns scan into time.Time in UTC
	// instead of []byte.
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name,
		"charset=utf8mb4&parseTime=true&loc=UTC"))
	if err != nil {
		return nil, err
	}

	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// dsn assembles a go-sql-driver DSN from the discrete config values;
// the colon after the user is omitted when there is no password.
func dsn(user, pass, host, port, name, params string) string {
	auth := user
	if pass != "" {
		auth = user + ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?%s", auth, host, port, name, params)
}
