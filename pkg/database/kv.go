package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stm/pkg/utils"
)

// KV is one named slot in the key-value table. It satisfies store.Persister.
type KV struct {
	db  *sqlx.DB
	key string
}

// NewKV returns the slot stored under key
func NewKV(db *sqlx.DB, key string) *KV {
	return &KV{db: db, key: key}
}

// Load returns the stored value, or nil when the slot has never been written
func (kv *KV) Load() ([]byte, error) {
	var value string
	err := kv.db.Get(&value, kv.db.Rebind(`SELECT v FROM kv WHERE k = ?`), kv.key)
	if errors.Is(err, sql.ErrNoRows) {
		utils.L().Debug("kv slot empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kv.key, err)
	}
	return []byte(value), nil
}

// Save overwrites the slot
func (kv *KV) Save(data []byte) error {
	if _, err := kv.db.Exec(kv.db.Rebind(upsertQuery(kv.db.DriverName())), kv.key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", kv.key, err)
	}
	return nil
}

func upsertQuery(driver string) string {
	if driver == DriverMySQL {
		return `INSERT INTO kv (k, v, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON DUPLICATE KEY UPDATE v = VALUES(v), updated = CURRENT_TIMESTAMP`
	}
	return `INSERT INTO kv (k, v, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (k) DO UPDATE SET v = excluded.v, updated = CURRENT_TIMESTAMP`
}
