package sqlite

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/namecache/cache"
)

// lookupQuery renders ids as a bound membership predicate. Binding each id
// as a parameter keeps the dynamic-length list out of the SQL text itself.
// The caller short-circuits the empty set so the predicate is never empty.
func lookupQuery(ids []uuid.UUID) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT uuid, name FROM uuid_cache WHERE uuid IN (`)
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("?")
		args = append(args, id.String())
	}
	b.WriteString(`)`)
	return b.String(), args
}

// foldRows materializes result rows into found before the rows handle is
// released, so the returned mapping is a snapshot decoupled from storage.
func foldRows(rows *sql.Rows, found map[uuid.UUID]string) error {
	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return cache.Wrap(cache.CodeStorage, "scan cache entry", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			return cache.Wrap(cache.CodeStorage, "parse stored uuid", err)
		}
		found[id] = name
	}
	if err := rows.Err(); err != nil {
		return cache.Wrap(cache.CodeStorage, "iterate cache entries", err)
	}
	return nil
}
