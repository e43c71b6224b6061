package postgres

import (
	"database/sql"
	"math"
)

// NaN metrics are stored as SQL NULL; postgres float8 has no NaN-safe
// ordering for ranked queries.
func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
