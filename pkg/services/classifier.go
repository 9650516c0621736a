package services

import (
	"strings"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/models"
)

// fkDensityThreshold is the number of foreign-key-looking columns above
// which an unprefixed table is treated as a fact table.
const fkDensityThreshold = 3

var (
	factPrefixes      = []string{"fact_", "fct_"}
	dimensionPrefixes = []string{"dim_", "dimension_", "d_"}
)

// ClassifyTable labels a table FACT or DIMENSION. Name-prefix conventions
// take precedence; otherwise the density of `_id` columns decides. Pure
// function: no I/O, deterministic, idempotent.
func ClassifyTable(shortName string, columnNames []string) string {
	name := strings.ToLower(shortName)

	for _, prefix := range factPrefixes {
		if strings.HasPrefix(name, prefix) {
			return models.ClassificationFact
		}
	}
	for _, prefix := range dimensionPrefixes {
		if strings.HasPrefix(name, prefix) {
			return models.ClassificationDimension
		}
	}

	idColumns := 0
	for _, col := range columnNames {
		if strings.HasSuffix(strings.ToLower(col), "_id") {
			idColumns++
		}
	}
	if idColumns > fkDensityThreshold {
		return models.ClassificationFact
	}
	return models.ClassificationDimension
}
