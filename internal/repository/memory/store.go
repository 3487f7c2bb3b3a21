// Package memory is a map-backed record store with the same semantics as
// the postgres store: shared-reference links, cascading dosages and a
// transactional outbox. It backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// targets holds the related IDs of one owner in insertion order.
type targets map[uuid.UUID][]uuid.UUID

type store struct {
	mu      sync.RWMutex
	records map[model.Kind]map[uuid.UUID]model.Record
	// links is kind -> relation -> owner -> targets. Symmetric relations
	// are stored in both directions.
	links  map[model.Kind]map[string]targets
	events []*model.OutboxEvent
	now    func() time.Time
}

func newStore() *store {
	s := &store{
		records: make(map[model.Kind]map[uuid.UUID]model.Record),
		links:   make(map[model.Kind]map[string]targets),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, kind := range model.Kinds() {
		s.records[kind] = make(map[uuid.UUID]model.Record)
		rels := model.RelationsOf(kind)
		if len(rels) == 0 {
			continue
		}
		s.links[kind] = make(map[string]targets, len(rels))
		for _, rel := range rels {
			s.links[kind][rel.Name] = make(targets)
		}
	}
	return s
}

// NewStore returns every repository backed by one shared in-memory state.
func NewStore() *repository.Store {
	s := newStore()
	return &repository.Store{
		Identifiers:              newRecordRepository[*model.Identifier](s),
		PersonNames:              newRecordRepository[*model.PersonName](s),
		AddressDetails:           newRecordRepository[*model.AddressDetails](s),
		TelecomDetails:           newRecordRepository[*model.TelecomDetails](s),
		DemographicPersonals:     newRecordRepository[*model.DemographicPersonal](s),
		DemographicProfessionals: newRecordRepository[*model.DemographicProfessional](s),
		RelevantContacts:         newRecordRepository[*model.RelevantContact](s),
		BodySites:                newRecordRepository[*model.BodySite](s),
		SymptomSigns:             newRecordRepository[*model.SymptomSign](s),
		AdverseReactions:         newRecordRepository[*model.AdverseReaction](s),
		ProblemDiagnoses:         newRecordRepository[*model.ProblemDiagnosis](s),
		ReasonsForEncounter:      newRecordRepository[*model.ReasonForEncounter](s),
		ClinicalSynopses:         newRecordRepository[*model.ClinicalSynopsis](s),
		InpatientAdmissions:      newRecordRepository[*model.InpatientAdmission](s),
		TherapeuticDirections:    &therapeuticDirectionRepository{newRecordRepository[*model.TherapeuticDirection](s)},
		Dosages:                  newRecordRepository[*model.TherapeuticDirectionDosage](s),
		Outbox:                   &outboxRepository{s},
		Pinger:                   s,
	}
}

func (s *store) Ping(_ context.Context) error {
	return nil
}

// clone copies a record through its JSON form so callers never share
// memory with the store.
func clone(rec model.Record) (model.Record, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", rec.Kind(), err)
	}
	out := model.New(rec.Kind())
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to copy %s: %w", rec.Kind(), err)
	}
	return out, nil
}

func (s *store) enqueue(evt model.RecordEvent) error {
	event, err := model.NewOutboxEvent(evt)
	if err != nil {
		return err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *store) exists(kind model.Kind, id uuid.UUID) bool {
	_, ok := s.records[kind][id]
	return ok
}

// checkReferences rejects links and owners that point at nothing.
func (s *store) checkReferences(rec model.Record) error {
	if owned, ok := rec.(model.Owned); ok {
		kind, id := owned.Owner()
		if !s.exists(kind, id) {
			return apperrors.NewFieldConstraint(string(kind)+"_id",
				fmt.Sprintf("references a %s that does not exist", kind), nil)
		}
	}
	linked, ok := rec.(model.Linked)
	if !ok {
		return nil
	}
	for _, l := range linked.Links() {
		for _, id := range *l.IDs {
			if !s.exists(l.Target, id) {
				return apperrors.NewFieldConstraint(l.Name,
					fmt.Sprintf("references a %s that does not exist", l.Target), nil)
			}
		}
	}
	return nil
}

func (s *store) addLink(kind model.Kind, rel model.Relation, owner, target uuid.UUID) bool {
	set := s.links[kind][rel.Name]
	for _, id := range set[owner] {
		if id == target {
			return false
		}
	}
	set[owner] = append(set[owner], target)
	if rel.Symmetric && owner != target {
		set[target] = append(set[target], owner)
	}
	return true
}

func removeID(ids []uuid.UUID, target uuid.UUID) ([]uuid.UUID, bool) {
	for i, id := range ids {
		if id == target {
			return append(ids[:i:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

func (s *store) removeLink(kind model.Kind, rel model.Relation, owner, target uuid.UUID) bool {
	set := s.links[kind][rel.Name]
	var removed bool
	set[owner], removed = removeID(set[owner], target)
	if rel.Symmetric {
		set[target], _ = removeID(set[target], owner)
	}
	return removed
}

// clearLinks drops every association owned by id.
func (s *store) clearLinks(kind model.Kind, id uuid.UUID) {
	for _, rel := range model.RelationsOf(kind) {
		for _, target := range s.links[kind][rel.Name][id] {
			if rel.Symmetric {
				s.links[kind][rel.Name][target], _ = removeID(s.links[kind][rel.Name][target], id)
			}
		}
		delete(s.links[kind][rel.Name], id)
	}
}

// forgetTarget drops id from every association that points at it.
func (s *store) forgetTarget(kind model.Kind, id uuid.UUID) {
	for owner, rels := range s.links {
		for _, rel := range model.RelationsOf(owner) {
			if rel.Target != kind {
				continue
			}
			for ownerID, ids := range rels[rel.Name] {
				rels[rel.Name][ownerID], _ = removeID(ids, id)
			}
		}
	}
}

// fill copies the stored links of rec into its ID slices.
func (s *store) fill(rec model.Record) {
	linked, ok := rec.(model.Linked)
	if !ok {
		return
	}
	id := rec.GetBase().ID
	for _, l := range linked.Links() {
		*l.IDs = append([]uuid.UUID{}, s.links[rec.Kind()][l.Name][id]...)
	}
}

func normalizeLinks(rec model.Record) {
	if linked, ok := rec.(model.Linked); ok {
		for _, l := range linked.Links() {
			*l.IDs = model.UniqueIDs(*l.IDs)
		}
	}
}

func (s *store) writeLinks(rec model.Record) {
	linked, ok := rec.(model.Linked)
	if !ok {
		return
	}
	id := rec.GetBase().ID
	for _, l := range linked.Links() {
		for _, target := range *l.IDs {
			s.addLink(rec.Kind(), l.Relation, id, target)
		}
	}
}

func (s *store) create(rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := rec.Kind()
	b := rec.GetBase()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if s.exists(kind, b.ID) {
		return apperrors.NewConflict(fmt.Sprintf("%s already exists", kind), nil)
	}
	if err := s.checkReferences(rec); err != nil {
		return err
	}
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	normalizeLinks(rec)

	stored, err := clone(rec)
	if err != nil {
		return err
	}
	if err := s.enqueue(model.RecordEvent{Kind: kind, Action: model.ActionCreate, RecordID: b.ID, Record: rec}); err != nil {
		return err
	}
	s.records[kind][b.ID] = stored
	s.writeLinks(rec)
	return nil
}

func (s *store) get(kind model.Kind, id uuid.UUID) (model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.records[kind][id]
	if !ok {
		return nil, apperrors.NewNotFound(string(kind), nil)
	}
	rec, err := clone(stored)
	if err != nil {
		return nil, err
	}
	s.fill(rec)
	return rec, nil
}

func (s *store) update(rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := rec.Kind()
	b := rec.GetBase()
	current, ok := s.records[kind][b.ID]
	if !ok {
		return apperrors.NewNotFound(string(kind), nil)
	}
	if err := s.checkReferences(rec); err != nil {
		return err
	}
	b.CreatedAt = current.GetBase().CreatedAt
	b.UpdatedAt = s.now()
	normalizeLinks(rec)

	stored, err := clone(rec)
	if err != nil {
		return err
	}
	if err := s.enqueue(model.RecordEvent{Kind: kind, Action: model.ActionUpdate, RecordID: b.ID, Record: rec}); err != nil {
		return err
	}
	s.records[kind][b.ID] = stored
	s.clearLinks(kind, b.ID)
	s.writeLinks(rec)
	return nil
}

func (s *store) delete(kind model.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(kind, id) {
		return apperrors.NewNotFound(string(kind), nil)
	}
	return s.deleteLocked(kind, id)
}

// deleteLocked removes owned children first, emitting an event for each.
func (s *store) deleteLocked(kind model.Kind, id uuid.UUID) error {
	for childKind, recs := range s.records {
		for childID, rec := range recs {
			owned, ok := rec.(model.Owned)
			if !ok {
				continue
			}
			if ownerKind, ownerID := owned.Owner(); ownerKind == kind && ownerID == id {
				if err := s.deleteLocked(childKind, childID); err != nil {
					return err
				}
			}
		}
	}

	if err := s.enqueue(model.RecordEvent{Kind: kind, Action: model.ActionDelete, RecordID: id}); err != nil {
		return err
	}
	delete(s.records[kind], id)
	s.clearLinks(kind, id)
	s.forgetTarget(kind, id)
	return nil
}

func (s *store) list(kind model.Kind, page model.Pagination) ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page = page.Normalize()
	all := make([]model.Record, 0, len(s.records[kind]))
	for _, rec := range s.records[kind] {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].GetBase(), all[j].GetBase()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	if page.Offset >= len(all) {
		return []model.Record{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}

	out := make([]model.Record, 0, end-page.Offset)
	for _, stored := range all[page.Offset:end] {
		rec, err := clone(stored)
		if err != nil {
			return nil, err
		}
		s.fill(rec)
		out = append(out, rec)
	}
	return out, nil
}

func relationOf(kind model.Kind, name string) (model.Relation, error) {
	rel, ok := model.FindRelation(kind, name)
	if !ok {
		return model.Relation{}, apperrors.NewBadRequest(fmt.Sprintf("%s has no relation %q", kind, name), nil)
	}
	return rel, nil
}

func (s *store) link(kind model.Kind, id uuid.UUID, relation string, target uuid.UUID) error {
	rel, err := relationOf(kind, relation)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(kind, id) {
		return apperrors.NewNotFound(string(kind), nil)
	}
	if !s.exists(rel.Target, target) {
		return apperrors.NewFieldConstraint(rel.Name,
			fmt.Sprintf("references a %s that does not exist", rel.Target), nil)
	}
	if !s.addLink(kind, rel, id, target) {
		return nil
	}
	return s.enqueue(model.RecordEvent{
		Kind: kind, Action: model.ActionLink, RecordID: id, Relation: rel.Name, TargetID: &target,
	})
}

func (s *store) unlink(kind model.Kind, id uuid.UUID, relation string, target uuid.UUID) error {
	rel, err := relationOf(kind, relation)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLink(kind, rel, id, target) {
		return apperrors.NewNotFound(rel.Name+" link", nil)
	}
	return s.enqueue(model.RecordEvent{
		Kind: kind, Action: model.ActionUnlink, RecordID: id, Relation: rel.Name, TargetID: &target,
	})
}
