// Package persistence provides database storage implementations.
package persistence

import (
	"fmt"
	"strings"

	"github.com/reviewfunnel/funnel/internal/database"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(db database.Database) error {
	if err := db.GORM().AutoMigrate(allModels()...); err != nil {
		return err
	}
	return postMigrate(db)
}

// postMigrate creates indexes GORM tags cannot express. Idempotent: safe to
// run on every startup.
func postMigrate(db database.Database) error {
	gdb := db.GORM()

	// The dashboard counts unresolved feedback per business on every load.
	stmt := `CREATE INDEX IF NOT EXISTS idx_feedback_unresolved ON feedback (business_id) WHERE resolved = false`
	if db.IsSQLite() {
		stmt = `CREATE INDEX IF NOT EXISTS idx_feedback_unresolved ON feedback (business_id) WHERE resolved = 0`
	}
	if err := gdb.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create index idx_feedback_unresolved: %w", err)
	}
	return nil
}

// allModels returns every GORM model that AutoMigrate manages.
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&BusinessModel{},
		&ReviewTemplateModel{},
		&ReviewModel{},
		&FeedbackModel{},
		&LeadModel{},
		&InviteCodeModel{},
		&EarlyAccessSignupModel{},
		&PasswordResetModel{},
		&PaymentEventModel{},
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

		if !migrator.HasTable(model) {
			missing = append(missing, stmt.Table)
			continue
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
		return fmt.Errorf("schema validation failed, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
