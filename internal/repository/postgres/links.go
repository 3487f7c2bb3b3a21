package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/openhealthcare/openehr-api/internal/model"
)

type linkRow struct {
	OwnerID  uuid.UUID `db:"owner_id"`
	TargetID uuid.UUID `db:"target_id"`
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (jt joinTable) selectQuery() string {
	query := fmt.Sprintf(
		"SELECT %[2]s AS owner_id, %[3]s AS target_id FROM %[1]s WHERE %[2]s = ANY($1::uuid[])",
		jt.name, jt.ownerCol, jt.targetCol)
	if jt.symmetric {
		query += fmt.Sprintf(
			" UNION SELECT %[3]s AS owner_id, %[2]s AS target_id FROM %[1]s WHERE %[3]s = ANY($1::uuid[])",
			jt.name, jt.ownerCol, jt.targetCol)
	}
	return query + " ORDER BY owner_id, target_id"
}

func (jt joinTable) clearQuery() string {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", jt.name, jt.ownerCol)
	if jt.symmetric {
		query += fmt.Sprintf(" OR %s = $1", jt.targetCol)
	}
	return query
}

func (jt joinTable) replaceQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s, %s) SELECT $1::uuid, unnest($2::uuid[]) ON CONFLICT DO NOTHING",
		jt.name, jt.ownerCol, jt.targetCol)
}

func (jt joinTable) insertQuery() string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		jt.name, jt.ownerCol, jt.targetCol)
}

func (jt joinTable) existsQuery() string {
	return fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
		jt.name, jt.ownerCol, jt.targetCol)
}

func (jt joinTable) deleteQuery() string {
	query := fmt.Sprintf("DELETE FROM %s WHERE (%s = $1 AND %s = $2)", jt.name, jt.ownerCol, jt.targetCol)
	if jt.symmetric {
		query += fmt.Sprintf(" OR (%s = $2 AND %s = $1)", jt.ownerCol, jt.targetCol)
	}
	return query
}

// loadLinks fills the relation ID slices of recs with one query per
// relation.
func loadLinks[T model.Record](ctx context.Context, q sqlx.QueryerContext, kind model.Kind, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	rels := model.RelationsOf(kind)
	if len(rels) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.GetBase().ID
	}

	for _, rel := range rels {
		jt := joinTableFor(kind, rel)
		var rows []linkRow
		if err := sqlx.SelectContext(ctx, q, &rows, jt.selectQuery(), pq.Array(idStrings(ids))); err != nil {
			return fmt.Errorf("failed to load %s: %w", rel.Name, err)
		}

		byOwner := make(map[uuid.UUID][]uuid.UUID, len(recs))
		for _, row := range rows {
			byOwner[row.OwnerID] = append(byOwner[row.OwnerID], row.TargetID)
		}
		for _, rec := range recs {
			target := model.LinkIDs(rec, rel.Name)
			related := byOwner[rec.GetBase().ID]
			if related == nil {
				related = []uuid.UUID{}
			}
			*target = related
		}
	}
	return nil
}

// replaceLinks rewrites every relation of rec from its ID slices.
func replaceLinks(ctx context.Context, tx *sqlx.Tx, rec model.Record, clear bool) error {
	linked, ok := rec.(model.Linked)
	if !ok {
		return nil
	}
	id := rec.GetBase().ID

	for _, l := range linked.Links() {
		jt := joinTableFor(rec.Kind(), l.Relation)
		if clear {
			if _, err := tx.ExecContext(ctx, jt.clearQuery(), id); err != nil {
				return fmt.Errorf("failed to clear %s: %w", l.Name, err)
			}
		}

		*l.IDs = model.UniqueIDs(*l.IDs)
		if len(*l.IDs) == 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, jt.replaceQuery(), id, pq.Array(idStrings(*l.IDs))); err != nil {
			return mapLinkError(err, rec.Kind(), l.Relation)
		}
	}
	return nil
}
