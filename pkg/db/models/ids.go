package models

import "github.com/google/uuid"

// assignID fills a missing primary key so inserts work without a database-side default.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
