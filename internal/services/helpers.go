package services

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm/clause"

	"github.com/charlesng35/entrybox/pkg/validator"
)

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// columnEquals quotes the column name, which matters for reserved words such as key.
func columnEquals(column string, value any) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

// checkBytes enforces an optional byte limit. A limit of zero disables it.
func checkBytes(field, value string, limit int, required bool) error {
	tag := ""
	if required {
		tag = "required"
	}
	if limit > 0 {
		if tag != "" {
			tag += ","
		}
		tag += "maxbytes=" + strconv.Itoa(limit)
	}
	if tag == "" {
		return nil
	}
	if err := validator.ValidateVar(field, value, tag); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
