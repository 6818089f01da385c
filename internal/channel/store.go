// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package channel rebuilds the repodata.json files of a local conda channel
// from the archives on disk.
package channel

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wheel2conda/pkg/types"
)

// Entry is one archive known to the store.
type Entry struct {
	Subdir   string
	Filename string
	Format   types.ArchiveFormat
	Record   types.IndexRecord
}

// Store holds the package records of one index run in an in-memory SQLite
// database. Nothing is persisted; every run starts from the archives.
type Store struct {
	db *sql.DB
}

// NewStore opens an empty in-memory store.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS packages (
			subdir TEXT NOT NULL,
			filename TEXT NOT NULL,
			format TEXT NOT NULL,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			build TEXT NOT NULL,
			build_number INTEGER NOT NULL,
			depends TEXT NOT NULL,
			license TEXT,
			arch TEXT,
			platform TEXT,
			record_subdir TEXT,
			md5 TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			size INTEGER NOT NULL,
			PRIMARY KEY (subdir, filename)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_packages_name ON packages(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add records an archive. A second Add for the same subdir and filename
// replaces the first.
func (s *Store) Add(ctx context.Context, e Entry) error {
	depends := e.Record.Depends
	if depends == nil {
		depends = []string{}
	}
	dependsJSON, err := json.Marshal(depends)
	if err != nil {
		return fmt.Errorf("encoding depends of %s: %w", e.Filename, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO packages
			(subdir, filename, format, name, version, build, build_number, depends,
			 license, arch, platform, record_subdir, md5, sha256, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Subdir, e.Filename, string(e.Format),
		e.Record.Name, e.Record.Version, e.Record.Build, e.Record.BuildNumber, string(dependsJSON),
		e.Record.License, e.Record.Arch, e.Record.Platform, e.Record.Subdir,
		e.Record.MD5, e.Record.SHA256, e.Record.Size,
	)
	if err != nil {
		return fmt.Errorf("inserting %s/%s: %w", e.Subdir, e.Filename, err)
	}
	return nil
}

// Entries returns the archives recorded for subdir ordered by filename.
func (s *Store) Entries(ctx context.Context, subdir string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, format, name, version, build, build_number, depends,
			license, arch, platform, record_subdir, md5, sha256, size
		 FROM packages WHERE subdir = ? ORDER BY filename`, subdir)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", subdir, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{Subdir: subdir}
		var format, dependsJSON string
		var license, arch, plat, recSubdir sql.NullString
		if err := rows.Scan(&e.Filename, &format,
			&e.Record.Name, &e.Record.Version, &e.Record.Build, &e.Record.BuildNumber, &dependsJSON,
			&license, &arch, &plat, &recSubdir,
			&e.Record.MD5, &e.Record.SHA256, &e.Record.Size); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", subdir, err)
		}
		if err := json.Unmarshal([]byte(dependsJSON), &e.Record.Depends); err != nil {
			return nil, fmt.Errorf("decoding depends of %s: %w", e.Filename, err)
		}
		e.Format = types.ArchiveFormat(format)
		e.Record.License = license.String
		e.Record.Arch = arch.String
		e.Record.Platform = plat.String
		e.Record.Subdir = recSubdir.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of archives recorded across all subdirs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM packages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting packages: %w", err)
	}
	return n, nil
}
