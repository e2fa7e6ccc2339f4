package dataset

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// DefaultTable is the SQLite table holding attribute records.
const DefaultTable = "regions"

var validTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReadSQLite reads attribute records from table(name, population, flag) in
// rowid order. The database is opened read-only.
func ReadSQLite(ctx context.Context, path, table string) ([]model.RegionAttributes, error) {
	if !validTable.MatchString(table) {
		return nil, eris.Errorf("sqlite: invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	defer db.Close() //nolint:errcheck

	rows, err := db.QueryContext(ctx, `SELECT name, population, flag FROM `+table+` ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.RegionAttributes
	for rows.Next() {
		var a model.RegionAttributes
		var flag sql.NullBool
		if err := rows.Scan(&a.Name, &a.Population, &flag); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan row")
		}
		a.Flag = flag.Valid && flag.Bool
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate rows")
	}
	return out, nil
}
