package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/gig-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponseRepository - интерфейс для работы с откликами музыкантов.
type ResponseRepository interface {
	CreateResponse(ctx context.Context, requestId string, responseInput models.ResponseInput) (*models.Response, error)
	GetRequestResponses(ctx context.Context, requestId string, limit, offset int) ([]models.Response, error)
	MarkAccepted(ctx context.Context, requestId, candidateId string) error
}

// PostgresResponseRepository - реализация ResponseRepository для базы данных.
type PostgresResponseRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresResponseRepository создаёт новый экземпляр PostgresResponseRepository.
func NewPostgresResponseRepository(db *pgxpool.Pool) *PostgresResponseRepository {
	return &PostgresResponseRepository{DB: db}
}

// CreateResponse создает новый отклик со статусом Pending.
// Каждое сообщение кандидата хранится отдельной записью.
func (r *PostgresResponseRepository) CreateResponse(ctx context.Context, requestId string, responseInput models.ResponseInput) (*models.Response, error) {
	newResponse := models.Response{
		ID:            uuid.New().String(),
		RequestID:     requestId,
		CandidateID:   responseInput.CandidateID,
		CandidateName: responseInput.CandidateName,
		Status:        models.PendingResponse,
		Message:       responseInput.Message,
		ProposedPrice: responseInput.ProposedPrice,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `
       INSERT INTO response (id, request_id, candidate_id, candidate_name, status, message, proposed_price, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
   `,
		newResponse.ID,
		newResponse.RequestID,
		newResponse.CandidateID,
		newResponse.CandidateName,
		newResponse.Status,
		newResponse.Message,
		newResponse.ProposedPrice,
		newResponse.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert response: %w", err)
	}
	return &newResponse, nil
}

// GetRequestResponses возвращает список откликов на заявку.
func (r *PostgresResponseRepository) GetRequestResponses(ctx context.Context, requestId string, limit, offset int) ([]models.Response, error) {
	query := `SELECT id, request_id, candidate_id, candidate_name, status, message, proposed_price, created_at
	          FROM response WHERE request_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3`

	rows, err := r.DB.Query(ctx, query, requestId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var response models.Response
		if err := rows.Scan(
			&response.ID,
			&response.RequestID,
			&response.CandidateID,
			&response.CandidateName,
			&response.Status,
			&response.Message,
			&response.ProposedPrice,
			&response.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// MarkAccepted помечает последний ожидающий отклик кандидата как принятый.
// Остальные отклики остаются в статусе Pending.
func (r *PostgresResponseRepository) MarkAccepted(ctx context.Context, requestId, candidateId string) error {
	query := `UPDATE response SET status = $3
	          WHERE id = (SELECT id FROM response
	                      WHERE request_id = $1 AND candidate_id = $2 AND status = $4
	                      ORDER BY created_at DESC LIMIT 1)`
	_, err := r.DB.Exec(ctx, query, requestId, candidateId, models.AcceptedResponse, models.PendingResponse)
	return err
}
