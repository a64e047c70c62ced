package source

import (
	"fmt"
	"strings"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/pkg/database"
)

// dialect covers the syntax differences the projection query needs.
type dialect struct {
	quote  func(ident string) string
	concat func(exprs []string) string
}

func dialectFor(driver string) dialect {
	switch driver {
	case database.DriverSQLServer:
		return dialect{
			quote:  func(s string) string { return "[" + strings.ReplaceAll(s, "]", "]]") + "]" },
			concat: concatFunc,
		}
	case database.DriverMySQL:
		return dialect{
			quote:  func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" },
			concat: concatFunc,
		}
	default:
		// sqlite, postgres
		return dialect{
			quote: quoteANSI,
			concat: func(exprs []string) string {
				return strings.Join(exprs, " || ")
			},
		}
	}
}

func quoteANSI(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func concatFunc(exprs []string) string {
	return "CONCAT(" + strings.Join(exprs, ", ") + ")"
}

// BuildQuery renders p as a SELECT for driver. Each association used by a
// column becomes a LEFT JOIN on its foreign key.
func BuildQuery(driver string, p etl.Projection) (string, error) {
	d := dialectFor(driver)

	aliases := map[string]string{"": "t0"}
	var joins []string
	for i, name := range p.UsedAssociations() {
		a, ok := p.Associations[name]
		if !ok {
			return "", fmt.Errorf("undeclared association %q", name)
		}
		alias := fmt.Sprintf("a%d", i+1)
		aliases[name] = alias
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = t0.%s",
			d.quote(TableName(a.Target)), alias, alias, d.quote(a.TargetKey), d.quote(a.ForeignKey)))
	}

	cols := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		exprs := make([]string, len(c.Paths))
		for i, path := range c.Paths {
			exprs[i] = aliases[path.Association] + "." + d.quote(path.Field)
		}
		expr := exprs[0]
		if len(exprs) > 1 {
			expr = d.concat(exprs)
		}
		cols = append(cols, expr+" AS "+d.quote(c.Name))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(d.quote(TableName(p.Entity)))
	b.WriteString(" t0")
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	return b.String(), nil
}
