package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate takes a row-level write lock where the store supports it. The
// SQLite driver used in tests runs single-writer and needs no lock clause.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "database is locked")
}

// withTransientRetry retries the transaction once on deadlock or
// serialization failure, then gives up.
func withTransientRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.Transaction(fn)
	if isTransientError(err) {
		err = db.Transaction(fn)
	}
	return err
}
