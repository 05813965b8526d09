package db

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"simpleink/config"
	"simpleink/logger"

	"github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/mattn/go-sqlite3"  // SQLite driver for local runs and tests
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Pool 是固定大小的数据库连接池，所有仓库都通过它访问数据库
type Pool struct {
	DB     *sql.DB
	Driver string
}

// ExecResult is the outcome of a single write statement.
type ExecResult struct {
	RowsAffected int64
}

// NewPool wraps an already opened *sql.DB.
func NewPool(conn *sql.DB, driver string) *Pool {
	return &Pool{DB: conn, Driver: driver}
}

// Open establishes the connection pool described by cfg and pings it.
func Open(cfg *config.Config) (*Pool, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	conn.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnectTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database",
		logger.String("driver", driver),
		logger.Int("maxOpenConns", cfg.DBMaxOpenConns),
	)
	return NewPool(conn, driver), nil
}

func dataSource(cfg *config.Config) (string, string, error) {
	switch cfg.DBDriver {
	case DriverMySQL, "":
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		// affected rows = matched rows, so an identical UPDATE still counts its row
		mc.ClientFoundRows = true
		mc.Timeout = cfg.DBConnectTimeout
		mc.ReadTimeout = cfg.DBSocketTimeout
		mc.WriteTimeout = cfg.DBSocketTimeout
		return DriverMySQL, mc.FormatDSN(), nil
	case DriverSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		return DriverSQLite, fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.DBPath), nil
	default:
		return "", "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Run acquires one pooled connection, runs fn on it and always releases it.
func (p *Pool) Run(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := p.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close() // 归还连接，无论 fn 是否失败

	return fn(conn)
}

// Execute runs one parameterized write statement on its own connection.
func (p *Pool) Execute(ctx context.Context, query string, args ...any) (ExecResult, error) {
	var result ExecResult
	err := p.Run(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		result.RowsAffected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.Error("Database query error", logger.String("query", query), logger.ErrorField(err))
	}
	return result, err
}

// Tx runs fn inside a transaction. fn's error (or a panic) rolls back.
func (p *Pool) Tx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", logger.ErrorField(rbErr))
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LockClause returns the row-lock suffix for SELECTs inside a transaction.
// SQLite locks the whole database on write and has no FOR UPDATE.
func (p *Pool) LockClause() string {
	if p.Driver == DriverMySQL {
		return " FOR UPDATE"
	}
	return ""
}

// Ping checks that a connection can be established.
func (p *Pool) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Stats exposes the pool statistics.
func (p *Pool) Stats() sql.DBStats {
	return p.DB.Stats()
}

// Close closes every pooled connection.
func (p *Pool) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	return p.DB.Close()
}
