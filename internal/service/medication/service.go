package medication

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	"github.com/openhealthcare/openehr-api/internal/service/record"
)

type MedicationServicer interface {
	ListDosages(ctx context.Context, directionID uuid.UUID) ([]*model.TherapeuticDirectionDosage, error)
	AddDosage(ctx context.Context, directionID uuid.UUID, dosage *model.TherapeuticDirectionDosage) error
}

// Service manages dosages through their parent direction.
type Service struct {
	directions repository.TherapeuticDirectionRepository
	dosages    *record.Service[*model.TherapeuticDirectionDosage]
}

func NewService(directions repository.TherapeuticDirectionRepository, dosages *record.Service[*model.TherapeuticDirectionDosage]) *Service {
	return &Service{
		directions: directions,
		dosages:    dosages,
	}
}

// ListDosages returns a direction's dosages in dosage sequence order.
func (s *Service) ListDosages(ctx context.Context, directionID uuid.UUID) ([]*model.TherapeuticDirectionDosage, error) {
	dosages, err := s.directions.ListDosages(ctx, directionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dosages: %w", err)
	}
	return dosages, nil
}

// AddDosage creates a dosage under the given direction, overriding any
// direction ID in the body.
func (s *Service) AddDosage(ctx context.Context, directionID uuid.UUID, dosage *model.TherapeuticDirectionDosage) error {
	dosage.TherapeuticDirectionID = directionID
	return s.dosages.Create(ctx, dosage)
}
