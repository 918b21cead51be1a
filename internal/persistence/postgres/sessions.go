package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Z-testacc/ActiLeap/internal/domain"
)

// participantRow is the JSON shape a participant takes inside the
// session document.
type participantRow struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// CreateSession inserts a group workout session with the host already
// on the roster.
func (r *Repository) CreateSession(ctx context.Context, session domain.WorkoutSession) error {
	now := r.clock().UTC()

	participants, err := json.Marshal(participantsToRows(session.Participants))
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO workout_sessions (session_id, host_id, host_name, host_photo_url, workout_title, start_time, status, participants)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, stmt,
		session.ID, session.HostID, session.HostName, session.HostPhotoURL,
		session.WorkoutTitle, now, string(session.Status), participants,
	)
	return err
}

// JoinSession appends the participant to the session roster under a row
// lock, so a double send cannot duplicate the entry.
func (r *Repository) JoinSession(ctx context.Context, sessionID string, participant domain.SessionParticipant) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT participants FROM workout_sessions WHERE session_id=$1 FOR UPDATE`, sessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrSessionNotFound
		}
		return err
	}

	var roster []participantRow
	if len(raw) > 0 {
		if err = json.Unmarshal(raw, &roster); err != nil {
			err = fmt.Errorf("%w: session participants: %v", domain.ErrCorruptRecord, err)
			return err
		}
	}

	for _, p := range roster {
		if p.UserID == participant.UserID {
			return tx.Commit(ctx)
		}
	}

	roster = append(roster, participantRow(participant))
	updated, err := json.Marshal(roster)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `UPDATE workout_sessions SET participants=$2 WHERE session_id=$1`, sessionID, updated); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Sessions lists sessions newest first.
func (r *Repository) Sessions(ctx context.Context) ([]domain.WorkoutSession, error) {
	const query = `SELECT session_id, host_id, host_name, host_photo_url, workout_title, start_time, status, participants
        FROM workout_sessions ORDER BY start_time DESC, session_id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.WorkoutSession
	for rows.Next() {
		var s domain.WorkoutSession
		var status string
		var raw []byte
		if err := rows.Scan(&s.ID, &s.HostID, &s.HostName, &s.HostPhotoURL, &s.WorkoutTitle, &s.StartTime, &status, &raw); err != nil {
			return nil, fmt.Errorf("%w: workout session: %v", domain.ErrCorruptRecord, err)
		}
		s.Status = domain.SessionStatus(status)

		var roster []participantRow
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &roster); err != nil {
				return nil, fmt.Errorf("%w: session participants: %v", domain.ErrCorruptRecord, err)
			}
		}
		s.Participants = make([]domain.SessionParticipant, 0, len(roster))
		for _, p := range roster {
			s.Participants = append(s.Participants, domain.SessionParticipant(p))
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func participantsToRows(participants []domain.SessionParticipant) []participantRow {
	rows := make([]participantRow, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, participantRow(p))
	}
	return rows
}
