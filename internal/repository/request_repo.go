package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/gig-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const requestColumns = `id, organizer_id, instrument_type, event_category, start_time, end_time, location,
       status, assigned_candidate_id, interested_candidates, calculated_price, search_deadline, epoch,
       created_at, updated_at`

// RequestRepository - интерфейс для работы с заявками.
// Все переходы статусов выполняются условной записью: UPDATE срабатывает только
// если текущий статус совпадает с ожидаемым, иначе запись считается устаревшей.
type RequestRepository interface {
	CreateRequest(ctx context.Context, requestInput models.RequestInput, price float64, deadline time.Time) (*models.Request, error)
	GetRequestByID(ctx context.Context, requestId string) (*models.Request, error)
	GetUserRequests(ctx context.Context, organizerId string, limit, offset int, statuses []string) ([]models.Request, error)
	GetOverdueRequests(ctx context.Context, now time.Time) ([]models.Request, error)
	AddInterestedCandidate(ctx context.Context, requestId, candidateId string) error
	MarkFound(ctx context.Context, requestId, candidateId string) (bool, error)
	MarkCancelled(ctx context.Context, requestId string) (bool, error)
	MarkExpired(ctx context.Context, requestId string, epoch int) (bool, error)
	Reopen(ctx context.Context, requestId string, price float64, deadline time.Time) (*models.Request, error)
}

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRequestRepository создаёт новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

// CreateRequest создает новую заявку со статусом Searching.
func (r *PostgresRequestRepository) CreateRequest(ctx context.Context, requestInput models.RequestInput, price float64, deadline time.Time) (*models.Request, error) {
	now := time.Now().UTC()
	newRequest := models.Request{
		ID:                   uuid.New().String(),
		OrganizerID:          requestInput.OrganizerID,
		InstrumentType:       requestInput.InstrumentType,
		EventCategory:        requestInput.EventCategory,
		StartTime:            requestInput.StartTime,
		EndTime:              requestInput.EndTime,
		Location:             requestInput.Location,
		Status:               models.SearchingRequest,
		InterestedCandidates: []string{},
		CalculatedPrice:      price,
		SearchDeadline:       deadline,
		Epoch:                1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	_, err := r.DB.Exec(ctx, `
       INSERT INTO request (id, organizer_id, instrument_type, event_category, start_time, end_time, location,
                            status, interested_candidates, calculated_price, search_deadline, epoch, created_at, updated_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
   `,
		newRequest.ID,
		newRequest.OrganizerID,
		newRequest.InstrumentType,
		newRequest.EventCategory,
		newRequest.StartTime,
		newRequest.EndTime,
		newRequest.Location,
		newRequest.Status,
		newRequest.InterestedCandidates,
		newRequest.CalculatedPrice,
		newRequest.SearchDeadline,
		newRequest.Epoch,
		newRequest.CreatedAt,
		newRequest.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}
	return &newRequest, nil
}

// GetRequestByID возвращает заявку по ID.
func (r *PostgresRequestRepository) GetRequestByID(ctx context.Context, requestId string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request WHERE id = $1`
	return scanRequest(r.DB.QueryRow(ctx, query, requestId))
}

// GetUserRequests возвращает список заявок организатора.
func (r *PostgresRequestRepository) GetUserRequests(ctx context.Context, organizerId string, limit, offset int, statuses []string) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request`
	var filters []string
	var args []interface{}
	argIndex := 1

	filters = append(filters, fmt.Sprintf("organizer_id = $%d", argIndex))
	args = append(args, organizerId)
	argIndex++

	if len(statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	query += " WHERE " + strings.Join(filters, " AND ")
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

// GetOverdueRequests возвращает заявки в статусе Searching с истёкшим дедлайном.
func (r *PostgresRequestRepository) GetOverdueRequests(ctx context.Context, now time.Time) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request WHERE status = $1 AND search_deadline <= $2`
	rows, err := r.DB.Query(ctx, query, models.SearchingRequest, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

// AddInterestedCandidate добавляет кандидата в список заинтересованных.
// Повторное добавление того же кандидата не создаёт дубликата.
func (r *PostgresRequestRepository) AddInterestedCandidate(ctx context.Context, requestId, candidateId string) error {
	query := `UPDATE request
	          SET interested_candidates = array_append(interested_candidates, $2), updated_at = $3
	          WHERE id = $1 AND status = $4 AND NOT ($2 = ANY(interested_candidates))`
	_, err := r.DB.Exec(ctx, query, requestId, candidateId, time.Now().UTC(), models.SearchingRequest)
	return err
}

// MarkFound выполняет условный переход Searching -> Found.
// Возвращает false, если статус уже изменился и переход не состоялся.
func (r *PostgresRequestRepository) MarkFound(ctx context.Context, requestId, candidateId string) (bool, error) {
	query := `UPDATE request
	          SET status = $2, assigned_candidate_id = $3, updated_at = $4
	          WHERE id = $1 AND status = $5`
	tag, err := r.DB.Exec(ctx, query, requestId, models.FoundRequest, candidateId, time.Now().UTC(), models.SearchingRequest)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCancelled выполняет условный переход Searching -> Cancelled.
func (r *PostgresRequestRepository) MarkCancelled(ctx context.Context, requestId string) (bool, error) {
	query := `UPDATE request SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	tag, err := r.DB.Exec(ctx, query, requestId, models.CancelledRequest, time.Now().UTC(), models.SearchingRequest)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkExpired выполняет условный переход Searching -> Expired для указанной эпохи.
// Таймер прошлой эпохи не может просрочить переоткрытую заявку.
func (r *PostgresRequestRepository) MarkExpired(ctx context.Context, requestId string, epoch int) (bool, error) {
	query := `UPDATE request SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4 AND epoch = $5`
	tag, err := r.DB.Exec(ctx, query, requestId, models.ExpiredRequest, time.Now().UTC(), models.SearchingRequest, epoch)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Reopen выполняет условный переход Expired -> Searching и начинает новую эпоху:
// очищает заинтересованных кандидатов и назначение, фиксирует новую цену и дедлайн.
func (r *PostgresRequestRepository) Reopen(ctx context.Context, requestId string, price float64, deadline time.Time) (*models.Request, error) {
	query := `UPDATE request
	          SET status = $2, interested_candidates = '{}', assigned_candidate_id = NULL,
	              calculated_price = $3, search_deadline = $4, epoch = epoch + 1, updated_at = $5
	          WHERE id = $1 AND status = $6
	          RETURNING ` + requestColumns
	return scanRequest(r.DB.QueryRow(ctx, query, requestId, models.SearchingRequest, price, deadline, time.Now().UTC(), models.ExpiredRequest))
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var request models.Request
	if err := row.Scan(
		&request.ID,
		&request.OrganizerID,
		&request.InstrumentType,
		&request.EventCategory,
		&request.StartTime,
		&request.EndTime,
		&request.Location,
		&request.Status,
		&request.AssignedCandidateID,
		&request.InterestedCandidates,
		&request.CalculatedPrice,
		&request.SearchDeadline,
		&request.Epoch,
		&request.CreatedAt,
		&request.UpdatedAt); err != nil {
		return nil, err
	}
	return &request, nil
}
