package duplicates

import (
	"fmt"
	"strings"
)

// MatchSQL renders q as a WHERE fragment over a table aliased alias that has
// company, address, city, state and zip columns. It mirrors Query.Matches.
// The returned index is the next free positional parameter.
func MatchSQL(alias string, q Query, argIdx int) (string, []interface{}, int) {
	var ors []string
	var args []interface{}

	if q.Company != "" {
		ors = append(ors, fmt.Sprintf("lower(btrim(%s.company)) = $%d", alias, argIdx))
		args = append(args, q.Company)
		argIdx++
	}

	if q.Address != "" {
		parts := []string{fmt.Sprintf("lower(btrim(%s.address)) = $%d", alias, argIdx)}
		args = append(args, q.Address)
		argIdx++
		if q.City != "" {
			parts = append(parts, fmt.Sprintf("lower(btrim(%s.city)) = $%d", alias, argIdx))
			args = append(args, q.City)
			argIdx++
		}
		if q.State != "" {
			parts = append(parts, fmt.Sprintf("lower(btrim(%s.state)) = $%d", alias, argIdx))
			args = append(args, q.State)
			argIdx++
		}
		if q.Zip != "" {
			parts = append(parts, fmt.Sprintf("left(lower(btrim(%s.zip)), %d) = $%d", alias, zipLength, argIdx))
			args = append(args, q.Zip)
			argIdx++
		}
		ors = append(ors, "("+strings.Join(parts, " AND ")+")")
	}

	if len(ors) == 0 {
		return "FALSE", nil, argIdx
	}
	return "(" + strings.Join(ors, " OR ") + ")", args, argIdx
}
