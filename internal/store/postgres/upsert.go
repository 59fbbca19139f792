package postgres

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/propimport/internal/core"
)

// columns lists the written columns in argument order.
var columns = []string{"id", "name", "address", "room_number", "rent", "area", "category"}

// maxParams is the PostgreSQL limit on bind parameters per statement.
const maxParams = 65535

var errEmptyBatch = errors.New("upsert: empty batch")

// BuildUpsert returns the statement and arguments that insert records or
// overwrite the rows sharing uniqueKey. id and created_at are left untouched
// on conflict; updated_at is set to now().
func BuildUpsert(table, uniqueKey string, records []core.PropertyRecord) (string, []any, error) {
	if len(records) == 0 {
		return "", nil, errEmptyBatch
	}
	if !slices.Contains(columns, uniqueKey) {
		return "", nil, fmt.Errorf("upsert: unknown key column %q", uniqueKey)
	}
	if n := len(records) * len(columns); n > maxParams {
		return "", nil, fmt.Errorf("upsert: %d parameters exceed the limit of %d", n, maxParams)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgx.Identifier{table}.Sanitize())
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(records)*len(columns))
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i*len(columns) + j + 1))
		}
		b.WriteByte(')')

		args = append(args,
			rec.ID,
			rec.Name,
			rec.Address,
			rec.RoomNumber,
			rec.Rent,
			rec.Area,
			int16(rec.Category),
		)
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(pgx.Identifier{uniqueKey}.Sanitize())
	b.WriteString(") DO UPDATE SET ")
	for i, c := range quoted {
		if columns[i] == uniqueKey || columns[i] == "id" {
			continue
		}
		b.WriteString(c)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(c)
		b.WriteString(", ")
	}
	b.WriteString(`"updated_at" = now()`)

	return b.String(), args, nil
}
