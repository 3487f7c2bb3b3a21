package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/openhealthcare/openehr-api/internal/model"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
	codeNumericOutOfRange   = "22003"
)

// mapError translates constraint violations into validation errors and
// wraps everything else.
func mapError(err error, op string, kind model.Kind) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return fmt.Errorf("failed to %s %s: %w", op, kind, err)
	}

	field := pqErr.Column
	if field == "" {
		field = constraintField(kind, pqErr.Constraint)
	}

	switch pqErr.Code {
	case codeForeignKeyViolation:
		return apperrors.NewFieldConstraint(field, "references a record that does not exist", err)
	case codeUniqueViolation:
		return apperrors.NewConflict(fmt.Sprintf("%s already exists", kind), err)
	case codeNotNullViolation:
		return apperrors.NewFieldConstraint(field, "this field is required", err)
	case codeCheckViolation, codeStringTooLong, codeNumericOutOfRange:
		return apperrors.NewFieldConstraint(field, pqErr.Message, err)
	}
	return fmt.Errorf("failed to %s %s: %w", op, kind, err)
}

// mapLinkError reports a dangling target against the relation name.
func mapLinkError(err error, kind model.Kind, rel model.Relation) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeForeignKeyViolation {
		return apperrors.NewFieldConstraint(rel.Name, fmt.Sprintf("references a %s that does not exist", rel.Target), err)
	}
	return mapError(err, "link", kind)
}

// constraintField recovers the column from a default constraint name such
// as therapeutic_direction_dosage_therapeutic_direction_id_fkey.
func constraintField(kind model.Kind, constraint string) string {
	field := strings.TrimPrefix(constraint, string(kind)+"_")
	for _, suffix := range []string{"_fkey", "_check", "_key"} {
		if strings.HasSuffix(field, suffix) {
			return strings.TrimSuffix(field, suffix)
		}
	}
	return field
}
