// Package persistence implements the outbound repository ports on PostgreSQL.
package persistence

import (
	"nutri_server/pkg/apperr"
)

// dbErr wraps a driver error into the database error taxonomy with the
// failed operation name attached.
func dbErr(operation string, err error) error {
	return apperr.DatabaseError(operation, err)
}
