// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"
	"strings"

	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
	"gorm.io/gorm"
)

// PreMigrate prepares the database before AutoMigrate runs. On PostgreSQL it
// ensures the pgvector extension exists so the embedding store can create its
// vector table. Safe to run repeatedly.
func PreMigrate(db database.Database) error {
	if !db.IsPostgres() {
		return nil
	}

	if err := db.GORM().Exec(`CREATE EXTENSION IF NOT EXISTS vector`).Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	return nil
}

// AutoMigrate runs GORM auto migration for all models. The form_embeddings
// table is not managed here: its column type depends on the dialect and the
// configured embedding dimension, so the embedding store creates it itself.
func AutoMigrate(db database.Database) error {
	return db.GORM().AutoMigrate(allModels()...)
}

// allModels returns every GORM model that AutoMigrate manages.
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&FormModel{},
		&TaskModel{},
	}
}

// ValidateSchema verifies every GORM model field has a corresponding column
// in the database. Returns an error listing any missing columns.
func ValidateSchema(db database.Database) error {
	gdb := db.GORM()
	migrator := gdb.Migrator()

	var missing []string
	for _, model := range allModels() {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model schema: %w", err)
		}

		columnTypes, err := migrator.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("get column types for %s: %w", stmt.Table, err)
		}

		actual := make(map[string]bool, len(columnTypes))
		for _, ct := range columnTypes {
			actual[ct.Name()] = true
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.DBName == "-" {
				continue
			}
			if !actual[field.DBName] {
				missing = append(missing, stmt.Table+"."+field.DBName)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("schema validation failed, missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
