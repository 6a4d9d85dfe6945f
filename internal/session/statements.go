package session

import (
	"strings"

	"github.com/leapstack-labs/leaprecord/internal/catalog"
	"github.com/leapstack-labs/leaprecord/pkg/adapter"
)

// statements builds parameterized SQL for one table in one dialect.
type statements struct {
	adp   adapter.Adapter
	table *catalog.Table
}

func (s statements) from() string {
	return s.adp.QuoteIdent(s.table.Schema) + "." + s.adp.QuoteIdent(s.table.Name)
}

// where appends "k1 = $n AND k2 = $n+1" numbering from next.
func (s statements) where(b *strings.Builder, next int) {
	b.WriteString(" WHERE ")
	for i, ord := range s.table.Key {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(s.adp.QuoteIdent(s.table.Columns[ord].Name))
		b.WriteString(" = ")
		b.WriteString(s.adp.Placeholder(next + i))
	}
}

func (s statements) selectByKey() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, c := range s.table.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.adp.QuoteIdent(c.Name))
	}
	b.WriteString(" FROM ")
	b.WriteString(s.from())
	s.where(&b, 1)
	return b.String()
}

func (s statements) insert(cols []int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(s.from())
	b.WriteString(" (")
	for i, ord := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.adp.QuoteIdent(s.table.Columns[ord].Name))
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.adp.Placeholder(i + 1))
	}
	b.WriteString(")")
	return b.String()
}

func (s statements) update(cols []int) string {
	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(s.from())
	b.WriteString(" SET ")
	for i, ord := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.adp.QuoteIdent(s.table.Columns[ord].Name))
		b.WriteString(" = ")
		b.WriteString(s.adp.Placeholder(i + 1))
	}
	s.where(&b, len(cols)+1)
	return b.String()
}

func (s statements) deleteByKey() string {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(s.from())
	s.where(&b, 1)
	return b.String()
}
