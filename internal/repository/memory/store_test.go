package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func eventTypes(t *testing.T, repos *repository.Store) []string {
	t.Helper()
	events, err := repos.Outbox.GetPendingEventsWithLock(context.Background(), 100)
	require.NoError(t, err)
	types := make([]string, len(events))
	for i, evt := range events {
		types[i] = evt.EventType
	}
	return types
}

func TestStore_RoundTripKeepsNilAndBlank(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	name := &model.PersonName{
		GivenName:  "Ann",
		FamilyName: "",
		MiddleName: strPtr(""),
		Title:      nil,
	}
	require.NoError(t, repos.PersonNames.Create(ctx, name))

	got, err := repos.PersonNames.Get(ctx, name.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.GivenName)
	assert.Equal(t, "", got.FamilyName)
	require.NotNil(t, got.MiddleName)
	assert.Equal(t, "", *got.MiddleName)
	assert.Nil(t, got.Title)
	assert.True(t, name.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	site := &model.BodySite{BodySiteName: strPtr("left knee")}
	require.NoError(t, repos.BodySites.Create(ctx, site))
	*site.BodySiteName = "right knee"

	got, err := repos.BodySites.Get(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "left knee", *got.BodySiteName)
}

func TestStore_GetMissing(t *testing.T) {
	repos := NewStore()

	_, err := repos.Identifiers.Get(context.Background(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStore_DanglingReferenceRejected(t *testing.T) {
	repos := NewStore()

	err := repos.DemographicPersonals.Create(context.Background(), &model.DemographicPersonal{
		PersonNameIDs: []uuid.UUID{uuid.New()},
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFieldConstraint))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, model.RelPersonNames, appErr.Field)
}

func TestStore_SharedReferencesSurviveOwnerDelete(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	name := &model.PersonName{GivenName: "Ann", FamilyName: "Lee"}
	require.NoError(t, repos.PersonNames.Create(ctx, name))

	personal := &model.DemographicPersonal{PersonNameIDs: []uuid.UUID{name.ID, name.ID}}
	contact := &model.RelevantContact{PersonNameIDs: []uuid.UUID{name.ID}}
	require.NoError(t, repos.DemographicPersonals.Create(ctx, personal))
	require.NoError(t, repos.RelevantContacts.Create(ctx, contact))
	assert.Equal(t, []uuid.UUID{name.ID}, personal.PersonNameIDs)

	require.NoError(t, repos.DemographicPersonals.Delete(ctx, personal.ID))

	_, err := repos.PersonNames.Get(ctx, name.ID)
	require.NoError(t, err)
	got, err := repos.RelevantContacts.Get(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{name.ID}, got.PersonNameIDs)
}

func TestStore_DeletingTargetRemovesLinks(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	name := &model.PersonName{}
	require.NoError(t, repos.PersonNames.Create(ctx, name))
	personal := &model.DemographicPersonal{PersonNameIDs: []uuid.UUID{name.ID}}
	require.NoError(t, repos.DemographicPersonals.Create(ctx, personal))

	require.NoError(t, repos.PersonNames.Delete(ctx, name.ID))

	got, err := repos.DemographicPersonals.Get(ctx, personal.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PersonNameIDs)
	assert.NotNil(t, got.PersonNameIDs)
}

func TestStore_SymmetricAndDirectedSelfRelations(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	a := &model.SymptomSign{SymptomSignName: "headache"}
	b := &model.SymptomSign{SymptomSignName: "nausea"}
	require.NoError(t, repos.SymptomSigns.Create(ctx, a))
	require.NoError(t, repos.SymptomSigns.Create(ctx, b))

	require.NoError(t, repos.SymptomSigns.Link(ctx, a.ID, model.RelAssociatedSymptomSigns, b.ID))
	require.NoError(t, repos.SymptomSigns.Link(ctx, a.ID, model.RelPreviousEpisodes, b.ID))

	gotA, err := repos.SymptomSigns.Get(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repos.SymptomSigns.Get(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{b.ID}, gotA.AssociatedSymptomSignIDs)
	assert.Equal(t, []uuid.UUID{a.ID}, gotB.AssociatedSymptomSignIDs)
	assert.Equal(t, []uuid.UUID{b.ID}, gotA.PreviousEpisodeIDs)
	assert.Empty(t, gotB.PreviousEpisodeIDs)

	require.NoError(t, repos.SymptomSigns.Unlink(ctx, b.ID, model.RelAssociatedSymptomSigns, a.ID))
	gotA, err = repos.SymptomSigns.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, gotA.AssociatedSymptomSignIDs)
}

func TestStore_LinkIsIdempotent(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	admission := &model.InpatientAdmission{}
	professional := &model.DemographicProfessional{}
	require.NoError(t, repos.InpatientAdmissions.Create(ctx, admission))
	require.NoError(t, repos.DemographicProfessionals.Create(ctx, professional))

	require.NoError(t, repos.InpatientAdmissions.Link(ctx, admission.ID, model.RelReferrers, professional.ID))
	require.NoError(t, repos.InpatientAdmissions.Link(ctx, admission.ID, model.RelReferrers, professional.ID))

	got, err := repos.InpatientAdmissions.Get(ctx, admission.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{professional.ID}, got.ReferrerIDs)
	assert.Equal(t, []string{
		"INPATIENT_ADMISSION_CREATE",
		"DEMOGRAPHIC_PROFESSIONAL_CREATE",
		"INPATIENT_ADMISSION_LINK",
	}, eventTypes(t, repos))
}

func TestStore_LinkErrors(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	admission := &model.InpatientAdmission{}
	require.NoError(t, repos.InpatientAdmissions.Create(ctx, admission))

	err := repos.InpatientAdmissions.Link(ctx, admission.ID, "body_sites", uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))

	err = repos.InpatientAdmissions.Link(ctx, uuid.New(), model.RelReferrers, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = repos.InpatientAdmissions.Link(ctx, admission.ID, model.RelReferrers, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrFieldConstraint))

	err = repos.InpatientAdmissions.Unlink(ctx, admission.ID, model.RelReferrers, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStore_UpdateReplacesRecordAndLinks(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	first := &model.BodySite{BodySiteName: strPtr("elbow")}
	second := &model.BodySite{BodySiteName: strPtr("wrist")}
	require.NoError(t, repos.BodySites.Create(ctx, first))
	require.NoError(t, repos.BodySites.Create(ctx, second))

	sign := &model.SymptomSign{SymptomSignName: "pain", BodySiteIDs: []uuid.UUID{first.ID}}
	require.NoError(t, repos.SymptomSigns.Create(ctx, sign))
	created := sign.CreatedAt

	replacement := &model.SymptomSign{
		Base:            model.Base{ID: sign.ID},
		SymptomSignName: "aching",
		BodySiteIDs:     []uuid.UUID{second.ID},
	}
	require.NoError(t, repos.SymptomSigns.Update(ctx, replacement))

	got, err := repos.SymptomSigns.Get(ctx, sign.ID)
	require.NoError(t, err)
	assert.Equal(t, "aching", got.SymptomSignName)
	assert.Equal(t, []uuid.UUID{second.ID}, got.BodySiteIDs)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(created))
}

func TestStore_UpdateMissing(t *testing.T) {
	repos := NewStore()

	err := repos.ClinicalSynopses.Update(context.Background(), &model.ClinicalSynopsis{
		Base:     model.Base{ID: uuid.New()},
		Synopsis: "stable",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStore_DeletingDirectionDeletesDosages(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	direction := &model.TherapeuticDirection{DirectionSequence: intPtr(1)}
	other := &model.TherapeuticDirection{}
	require.NoError(t, repos.TherapeuticDirections.Create(ctx, direction))
	require.NoError(t, repos.TherapeuticDirections.Create(ctx, other))

	dosage := &model.TherapeuticDirectionDosage{TherapeuticDirectionID: direction.ID, DoseUnit: strPtr("mg")}
	kept := &model.TherapeuticDirectionDosage{TherapeuticDirectionID: other.ID}
	require.NoError(t, repos.Dosages.Create(ctx, dosage))
	require.NoError(t, repos.Dosages.Create(ctx, kept))

	dosages, err := repos.TherapeuticDirections.ListDosages(ctx, direction.ID)
	require.NoError(t, err)
	require.Len(t, dosages, 1)
	assert.Equal(t, dosage.ID, dosages[0].ID)

	require.NoError(t, repos.TherapeuticDirections.Delete(ctx, direction.ID))

	_, err = repos.Dosages.Get(ctx, dosage.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = repos.Dosages.Get(ctx, kept.ID)
	assert.NoError(t, err)

	types := eventTypes(t, repos)
	assert.Equal(t, []string{"THERAPEUTIC_DIRECTION_DOSAGE_DELETE", "THERAPEUTIC_DIRECTION_DELETE"}, types[len(types)-2:])
}

func TestStore_DosageRequiresDirection(t *testing.T) {
	repos := NewStore()

	err := repos.Dosages.Create(context.Background(), &model.TherapeuticDirectionDosage{TherapeuticDirectionID: uuid.New()})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrFieldConstraint, appErr.Code)
	assert.Equal(t, "therapeutic_direction_id", appErr.Field)
}

func TestStore_ListDosagesOrdering(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	direction := &model.TherapeuticDirection{}
	require.NoError(t, repos.TherapeuticDirections.Create(ctx, direction))

	unsequenced := &model.TherapeuticDirectionDosage{TherapeuticDirectionID: direction.ID}
	second := &model.TherapeuticDirectionDosage{TherapeuticDirectionID: direction.ID, DosageSequence: intPtr(2)}
	first := &model.TherapeuticDirectionDosage{TherapeuticDirectionID: direction.ID, DosageSequence: intPtr(1)}
	for _, d := range []*model.TherapeuticDirectionDosage{unsequenced, second, first} {
		require.NoError(t, repos.Dosages.Create(ctx, d))
	}

	dosages, err := repos.TherapeuticDirections.ListDosages(ctx, direction.ID)
	require.NoError(t, err)
	require.Len(t, dosages, 3)
	assert.Equal(t, first.ID, dosages[0].ID)
	assert.Equal(t, second.ID, dosages[1].ID)
	assert.Equal(t, unsequenced.ID, dosages[2].ID)

	_, err = repos.TherapeuticDirections.ListDosages(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStore_ListPaginates(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repos.ReasonsForEncounter.Create(ctx, &model.ReasonForEncounter{}))
	}

	page, err := repos.ReasonsForEncounter.List(ctx, model.Pagination{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, err := repos.ReasonsForEncounter.List(ctx, model.Pagination{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	empty, err := repos.ReasonsForEncounter.List(ctx, model.Pagination{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOutbox_Lifecycle(t *testing.T) {
	repos := NewStore()
	ctx := context.Background()

	require.NoError(t, repos.BodySites.Create(ctx, &model.BodySite{}))
	require.NoError(t, repos.BodySites.Create(ctx, &model.BodySite{}))

	events, err := repos.Outbox.GetPendingEventsWithLock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	require.NoError(t, repos.Outbox.MarkProcessed(ctx, events[0].ID))
	require.NoError(t, repos.Outbox.MarkFailed(ctx, events[1].ID, "redis down", nil))

	pending, err := repos.Outbox.GetPendingEventsWithLock(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	past := time.Now().Add(-time.Second)
	require.NoError(t, repos.Outbox.MarkFailed(ctx, events[1].ID, "redis down", &past))
	pending, err = repos.Outbox.GetPendingEventsWithLock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].RetryCount)

	deleted, err := repos.Outbox.DeleteProcessedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
