package repository

import (
	"context"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateSession returns the active session for (context, participants),
// creating one when absent. Ended sessions are never reused. The bool reports
// whether a new session was created. The insert arbitrates on the partial
// unique index over active sessions, so concurrent callers converge on one
// row instead of racing a lookup.
func (r *ChatRepository) GetOrCreateSession(ctx context.Context, s *domain.ChatSession) (bool, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO chat_sessions (room_key, help_request_id, mentorship_id, requester_id, helper_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (requester_id, helper_id,
		              COALESCE(help_request_id, 0), COALESCE(mentorship_id, 0))
		 WHERE is_active DO NOTHING
		 RETURNING id, is_active, created_at`,
		s.RoomKey, s.HelpRequestID, s.MentorshipID, s.RequesterID, s.HelperID,
	).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// Lost to an existing (or concurrently created) active session; load it.
	row := r.db.QueryRow(ctx,
		`SELECT id, room_key, help_request_id, mentorship_id, requester_id, helper_id, is_active, created_at
		 FROM chat_sessions
		 WHERE requester_id = $1 AND helper_id = $2 AND is_active
		   AND help_request_id IS NOT DISTINCT FROM $3
		   AND mentorship_id IS NOT DISTINCT FROM $4`,
		s.RequesterID, s.HelperID, s.HelpRequestID, s.MentorshipID,
	)
	if err := scanSession(row, s); err != nil {
		return false, err
	}
	return false, nil
}

func (r *ChatRepository) GetSession(ctx context.Context, id int64) (*domain.ChatSession, error) {
	var s domain.ChatSession
	row := r.db.QueryRow(ctx,
		`SELECT id, room_key, help_request_id, mentorship_id, requester_id, helper_id, is_active, created_at
		 FROM chat_sessions WHERE id = $1`, id)
	if err := scanSession(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ChatRepository) GetSessionByRoomKey(ctx context.Context, roomKey string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	row := r.db.QueryRow(ctx,
		`SELECT id, room_key, help_request_id, mentorship_id, requester_id, helper_id, is_active, created_at
		 FROM chat_sessions WHERE room_key = $1`, roomKey)
	if err := scanSession(row, &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// EndSession deactivates the session; the guard in the WHERE clause makes a
// second end a no-op and reports it to the caller.
func (r *ChatRepository) EndSession(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE chat_sessions SET is_active = false WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanSession(row pgx.Row, s *domain.ChatSession) error {
	return row.Scan(
		&s.ID,
		&s.RoomKey,
		&s.HelpRequestID,
		&s.MentorshipID,
		&s.RequesterID,
		&s.HelperID,
		&s.IsActive,
		&s.CreatedAt,
	)
}

func (r *ChatRepository) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO chat_messages (room_key, sender_id, content, image)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		m.RoomKey, m.SenderID, m.Content, m.Image,
	).Scan(&m.ID, &m.CreatedAt)
}

// SetImage attaches decoded image bytes to an already persisted message.
func (r *ChatRepository) SetImage(ctx context.Context, id int64, image []byte) error {
	_, err := r.db.Exec(ctx, `UPDATE chat_messages SET image = $2 WHERE id = $1`, id, image)
	return err
}

// DeleteMessage removes a message row, used to roll back a partially created
// image message whose payload failed to decode.
func (r *ChatRepository) DeleteMessage(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, id)
	return err
}

// ListMessages returns the room history in commit order.
func (r *ChatRepository) ListMessages(ctx context.Context, roomKey string) ([]*domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_key, sender_id, content, image, created_at
		 FROM chat_messages
		 WHERE room_key = $1
		 ORDER BY created_at, id`,
		roomKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomKey, &m.SenderID, &m.Content, &m.Image, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}

// GetImage returns the stored image bytes for a message.
func (r *ChatRepository) GetImage(ctx context.Context, messageID int64) ([]byte, error) {
	var image []byte
	err := r.db.QueryRow(ctx,
		`SELECT image FROM chat_messages WHERE id = $1 AND image IS NOT NULL`,
		messageID,
	).Scan(&image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return image, nil
}
