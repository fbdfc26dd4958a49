package ledger

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// withTransaction runs fn inside a transaction on db's dialect. The history
// insert and the projection upsert of a move must commit together; any error
// or panic rolls both back.
func withTransaction(db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return
}
