package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationName(t *testing.T) {
	tests := map[string]string{
		"":                                  "db.unknown",
		`SELECT * FROM "kv_entries"`:        "db.select",
		`  insert into "kv_entries" values`: "db.insert",
		`UPDATE "kv_entries" SET`:           "db.update",
		`DELETE FROM "kv_entries"`:          "db.delete",
		`PRAGMA table_info`:                 "db.query",
	}

	for sql, want := range tests {
		assert.Equal(t, want, operationName(sql), sql)
	}
}
