package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Dialect captures the SQL differences between supported databases.
type Dialect struct {
	Name       string // migrations directory and config name
	Driver     string // database/sql driver name
	lockSuffix string // appended to SELECTs that precede an update
	numbered   bool   // $1-style placeholders
}

var (
	// SQLite is served by the pure Go modernc.org/sqlite driver.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite"}

	// Postgres is served by github.com/lib/pq.
	Postgres = Dialect{Name: "postgres", Driver: "postgres", lockSuffix: " FOR UPDATE", numbered: true}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unknown sql dialect %q", name)
	}
}

// Rebind rewrites ?-placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLiteDSN returns a DSN for a database file with WAL and a busy timeout.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout)
}
