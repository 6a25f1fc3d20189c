package utils

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var ErrorRecordNotFound = errors.New("record not found")

// mysql duplicate entry for a unique key
const mysqlErrDuplicateEntry = 1062

// IsDuplicateKeyError reports whether err is a unique-key violation,
// so callers can translate it into a domain-specific message
// (duplicate contribution year, duplicate member email).
func IsDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
