package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"baby-care-log/internal/domain/events"
)

// EventsRepo guarda las columnas comunes del evento y el resto de los campos
// del kind en details (JSONB, misma forma plana que viaja por el wire).
type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `id, profile_id, kind, time, comment, details`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	details, err := encodeDetails(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO baby_care_events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		e.ProfileID,
		string(e.Kind()),
		e.Time,
		e.Comment,
		details,
	)
	return err
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	details, err := encodeDetails(e)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE baby_care_events
		SET time = $2, comment = $3, details = $4
		WHERE id = $1
	`, e.ID, e.Time, e.Comment, details)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM baby_care_events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return events.Event{}, events.ErrNotFound
	}
	return e, err
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM baby_care_events WHERE id = $1`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) ListByProfile(ctx context.Context, profileID string, filter events.ListFilter) ([]events.Event, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + eventColumns + ` FROM baby_care_events WHERE profile_id = $1`)

	args := []any{profileID}
	argN := 2

	if len(filter.Kinds) > 0 {
		placeholders := make([]string, 0, len(filter.Kinds))
		for _, k := range filter.Kinds {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
			args = append(args, string(k))
			argN++
		}
		sb.WriteString(" AND kind IN (" + strings.Join(placeholders, ",") + ")")
	}

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND time >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND time <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	// q: comentario + campos de texto del kind
	if q := strings.TrimSpace(filter.Query); q != "" {
		sb.WriteString(fmt.Sprintf(
			" AND (comment ILIKE $%[1]d OR details->>'title' ILIKE $%[1]d OR details->>'prescription' ILIKE $%[1]d OR details->>'destination' ILIKE $%[1]d)",
			argN,
		))
		args = append(args, "%"+escapeLike(q)+"%")
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	sb.WriteString(" ORDER BY time DESC, id ASC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) TopPrescriptions(ctx context.Context, profileID, searchText string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = events.DefaultSuggestionLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT details->>'prescription' AS prescription
		FROM baby_care_events
		WHERE profile_id = $1
		  AND kind = $2
		  AND COALESCE(details->>'prescription', '') NOT IN ('', $3)
		  AND details->>'prescription' ILIKE $4
		GROUP BY prescription
		ORDER BY COUNT(*) DESC, prescription ASC
		LIMIT $5
	`,
		strings.TrimSpace(profileID),
		string(events.KindMedicine),
		events.UnspecifiedValue,
		"%"+escapeLike(strings.TrimSpace(searchText))+"%",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func encodeDetails(e events.Event) ([]byte, error) {
	f := events.Encode(e)
	for _, k := range []string{events.FieldID, events.FieldProfileID, events.FieldKind, events.FieldTime, events.FieldComment} {
		delete(f, k)
	}
	return json.Marshal(f)
}

func scanEvent(s scanner) (events.Event, error) {
	var (
		id, profileID, kind, comment string
		at                           time.Time
		raw                          []byte
	)
	if err := s.Scan(&id, &profileID, &kind, &at, &comment, &raw); err != nil {
		return events.Event{}, err
	}

	f := events.Fields{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f); err != nil {
			return events.Event{}, fmt.Errorf("event %s: details: %w", id, err)
		}
	}
	f[events.FieldID] = id
	f[events.FieldProfileID] = profileID
	f[events.FieldKind] = kind
	f[events.FieldTime] = events.FormatTime(at)
	f[events.FieldComment] = comment

	return events.Decode(f)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
