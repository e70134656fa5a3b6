package db

import (
	"fmt"

	"gorm.io/gorm"
)

// MonthExpr returns a SQL expression yielding the month number (1-12) of a
// date column for the dialect behind conn.
func MonthExpr(conn *gorm.DB, column string) string {
	if conn.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
	}
	return fmt.Sprintf("EXTRACT(MONTH FROM %s)", column)
}
