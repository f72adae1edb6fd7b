package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/go-scripts/journals/internal/types"
)

// sqliteFormat stores the table as a single "journals" table whose column
// names are the corpus header.
type sqliteFormat struct{}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (sqliteFormat) write(path string, rows [][]string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	header := types.Header
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h) + " TEXT"
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS journals`); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE journals (%s)`, strings.Join(cols, ", "))); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO journals VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// rows[0] is the header, carried by the column names
	for _, row := range rows[1:] {
		cells := make([]interface{}, len(header))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		if _, err := stmt.Exec(cells...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}

func (sqliteFormat) read(path string) ([][]string, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.Query(`SELECT * FROM journals ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	table := [][]string{types.Header}
	for res.Next() {
		var cells [4]sql.NullString
		if err := res.Scan(&cells[0], &cells[1], &cells[2], &cells[3]); err != nil {
			return nil, err
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		table = append(table, row)
	}
	return table, res.Err()
}
