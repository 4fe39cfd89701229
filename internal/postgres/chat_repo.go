package postgres

import (
	"context"

	"github.com/quick-clinic/realtime-service/internal/domain"

	"github.com/jackc/pgx/v5"
)

type ChatRepository struct {
	q querier
}

func NewChatRepository(q querier) *ChatRepository {
	return &ChatRepository{q: q}
}

func scanMessage(row pgx.Row) (domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := row.Scan(&m.ID, &m.RelationID, &m.SenderID, &m.SenderName, &m.SenderRole, &m.Text, &m.CreatedAt)
	return m, err
}

func (r *ChatRepository) Create(ctx context.Context, relationID, senderID, text string) (*domain.ChatMessage, error) {
	m, err := scanMessage(r.q.QueryRow(ctx, qCreateMessage, relationID, senderID, text))
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	return &m, nil
}

// List возвращает страницу истории, старые сообщения первыми.
func (r *ChatRepository) List(ctx context.Context, relationID string, skip, limit int) ([]domain.ChatMessage, error) {
	rows, err := r.q.Query(ctx, qListMessages, relationID, skip, limit)
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	defer rows.Close()

	out := make([]domain.ChatMessage, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ChatRepository) Count(ctx context.Context, relationID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, qCountMessages, relationID).Scan(&n); err != nil {
		return 0, mapPgError(err, nil)
	}
	return n, nil
}
