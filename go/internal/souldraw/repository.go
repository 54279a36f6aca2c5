package souldraw

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/souldraw/go/internal/models"
	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

const drawingColumns = `id, prize, terms, min_participants, max_participants, num_winners,
    participants, winners, end_time, draw_mode, confirmed, channel_id, created_by, created_at`

// Repository persists drawings in the souldraws table.
type Repository struct {
	db      *sql.DB
	dialect sqlutil.Dialect
}

func NewRepository(db *sql.DB, dialect sqlutil.Dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
	}
}

func (r *Repository) Insert(ctx context.Context, d models.Drawing) error {
	participants, err := marshalIDs(d.Participants)
	if err != nil {
		return err
	}

	q := r.dialect.Rebind(`INSERT INTO souldraws (` + drawingColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, q,
		d.ID,
		d.Prize,
		d.Terms,
		sqlutil.ToSqlInt64(d.MinParticipants),
		sqlutil.ToSqlInt64(d.MaxParticipants),
		d.NumWinners,
		participants,
		pqtype.NullRawMessage{},
		sqlutil.ToUnixMillis(d.EndTime),
		string(d.DrawMode),
		d.Confirmed,
		sqlutil.ToSqlString(d.ChannelID),
		sqlutil.ToSqlString(d.CreatedBy),
		sqlutil.ToUnixMillis(d.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert drawing: %w", err)
	}
	return nil
}

func (r *Repository) MarkConfirmed(ctx context.Context, id string) error {
	return r.update(ctx, "confirm", `UPDATE souldraws SET confirmed = ? WHERE id = ?`, true, id)
}

func (r *Repository) UpdateParticipants(ctx context.Context, id string, participants []string) error {
	data, err := marshalIDs(participants)
	if err != nil {
		return err
	}
	return r.update(ctx, "update participants", `UPDATE souldraws SET participants = ? WHERE id = ?`, data, id)
}

func (r *Repository) UpdateMode(ctx context.Context, id string, mode models.DrawMode) error {
	return r.update(ctx, "update draw mode", `UPDATE souldraws SET draw_mode = ? WHERE id = ?`, string(mode), id)
}

func (r *Repository) UpdateWinners(ctx context.Context, id string, winners []string) error {
	if winners == nil {
		winners = []string{}
	}
	data, err := json.Marshal(winners)
	if err != nil {
		return fmt.Errorf("failed to marshal winners: %w", err)
	}
	return r.update(ctx, "update winners", `UPDATE souldraws SET winners = ? WHERE id = ?`,
		pqtype.NullRawMessage{RawMessage: data, Valid: true}, id)
}

func (r *Repository) Cancel(ctx context.Context, id string, endTime time.Time) error {
	return r.update(ctx, "cancel", `UPDATE souldraws SET draw_mode = ?, end_time = ? WHERE id = ?`,
		string(models.DrawModeCancelled), sqlutil.ToUnixMillis(endTime), id)
}

func (r *Repository) update(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", op, ErrNotFound)
	}
	return nil
}

func (r *Repository) GetDrawing(ctx context.Context, id string) (*models.Drawing, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+drawingColumns+` FROM souldraws WHERE id = ?`), id)
	d, err := scanDrawing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drawing: %w", err)
	}
	return d, nil
}

// LoadOngoing returns the drawings that are neither cancelled nor drawn and
// either end after now or were confirmed, ordered by end time. Overdue
// confirmed rows are included so they can be drawn; overdue pending rows are
// left behind.
func (r *Repository) LoadOngoing(ctx context.Context, now time.Time) ([]models.Drawing, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(`SELECT `+drawingColumns+` FROM souldraws
        WHERE winners IS NULL AND draw_mode <> 'cancelled'
          AND (confirmed OR end_time > ?)
        ORDER BY end_time`), sqlutil.ToUnixMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to load ongoing drawings: %w", err)
	}
	defer rows.Close()

	var out []models.Drawing
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drawing: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate drawings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDrawing(s rowScanner) (*models.Drawing, error) {
	var (
		d            models.Drawing
		minP, maxP   sql.NullInt64
		participants []byte
		winners      pqtype.NullRawMessage
		endTime      int64
		mode         string
		channelID    sql.NullString
		createdBy    sql.NullString
		createdAt    int64
	)
	if err := s.Scan(
		&d.ID,
		&d.Prize,
		&d.Terms,
		&minP,
		&maxP,
		&d.NumWinners,
		&participants,
		&winners,
		&endTime,
		&mode,
		&d.Confirmed,
		&channelID,
		&createdBy,
		&createdAt,
	); err != nil {
		return nil, err
	}

	d.MinParticipants = sqlutil.FromSqlInt64(minP)
	d.MaxParticipants = sqlutil.FromSqlInt64(maxP)
	d.EndTime = sqlutil.FromUnixMillis(endTime)
	d.DrawMode = models.DrawMode(mode)
	d.ChannelID = sqlutil.FromSqlString(channelID, "")
	d.CreatedBy = sqlutil.FromSqlString(createdBy, "")
	d.CreatedAt = sqlutil.FromUnixMillis(createdAt)

	if err := json.Unmarshal(participants, &d.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	if d.Participants == nil {
		d.Participants = []string{}
	}
	if winners.Valid {
		d.Drawn = true
		if err := json.Unmarshal(winners.RawMessage, &d.Winners); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winners: %w", err)
		}
	}
	return &d, nil
}

// marshalIDs encodes a user id list as JSON text.
func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal participants: %w", err)
	}
	return string(data), nil
}
