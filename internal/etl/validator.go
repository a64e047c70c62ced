package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// Validator checks that every row of a file has the field order of the
// first row, so header and data lines line up.
type Validator struct {
	header []string
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateRow(row *models.Row) error {
	keys := models.Keys(row)
	if v.header == nil {
		if len(keys) == 0 {
			return fmt.Errorf("row has no fields")
		}
		v.header = keys
		return nil
	}
	if len(keys) != len(v.header) {
		return fmt.Errorf("row has %d fields, header has %d", len(keys), len(v.header))
	}
	for i := range keys {
		if keys[i] != v.header[i] {
			return fmt.Errorf("field order mismatch: got [%s], header [%s]",
				strings.Join(keys, ","), strings.Join(v.header, ","))
		}
	}
	return nil
}
