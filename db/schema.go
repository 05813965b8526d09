package db

import (
	"context"
	"fmt"
	"strings"

	"simpleink/logger"
)

// timestampColumn returns the created_at definition for the driver.
// MySQL keeps millisecond precision; SQLite only recognizes a bare DATETIME.
func (p *Pool) timestampColumn() string {
	if p.Driver == DriverMySQL {
		return "DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)"
	}
	return "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"
}

func (p *Pool) schema() []string {
	ts := p.timestampColumn()
	return []string{
		`CREATE TABLE IF NOT EXISTS playlists (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			titulo VARCHAR(255) NOT NULL,
			subtitulo VARCHAR(255),
			compositor VARCHAR(255),
			imagem_url VARCHAR(1024),
			num_followers INT NOT NULL DEFAULT 0,
			num_downloads INT NOT NULL DEFAULT 0,
			created_at ` + ts + `
		)`,
		`CREATE TABLE IF NOT EXISTS pontos (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			playlist_id VARCHAR(36) NULL,
			titulo VARCHAR(255) NOT NULL,
			compositor VARCHAR(255),
			audio_url VARCHAR(1024),
			duracao INT,
			created_at ` + ts + `,
			CONSTRAINT fk_pontos_playlist FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS historia (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			conteudo TEXT NOT NULL,
			created_at ` + ts + `
		)`,
	}
}

// upgrades are applied to databases created before the counter columns existed.
var upgrades = []string{
	"ALTER TABLE playlists ADD COLUMN num_followers INT NOT NULL DEFAULT 0",
	"ALTER TABLE playlists ADD COLUMN num_downloads INT NOT NULL DEFAULT 0",
	"ALTER TABLE pontos ADD COLUMN duracao INT",
}

// Migrate creates the tables if they don't exist and applies column upgrades.
func Migrate(ctx context.Context, p *Pool) error {
	for _, stmt := range p.schema() {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, stmt := range upgrades {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			logger.Warn("Schema upgrade failed", logger.String("statement", stmt), logger.ErrorField(err))
		}
	}

	logger.Info("Database schema is up to date", logger.String("driver", p.Driver))
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column")
}
