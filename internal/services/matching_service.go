package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/gig-service/internal/models"
	"github.com/senyabanana/gig-service/internal/notify"
	"github.com/senyabanana/gig-service/internal/pricing"
	"github.com/senyabanana/gig-service/internal/repository"
	"github.com/senyabanana/gig-service/internal/utils"

	"github.com/jackc/pgx/v5"
)

// DeadlineScheduler - интерфейс планировщика дедлайнов поиска.
type DeadlineScheduler interface {
	Arm(requestId string, epoch int, deadline time.Time)
}

// MatchingService управляет жизненным циклом заявки на поиск музыканта.
// Каждый переход статуса выполняется условной записью в хранилище,
// поэтому из статуса Searching за эпоху выходит ровно один переход.
type MatchingService struct {
	Requests  repository.RequestRepository
	Responses repository.ResponseRepository
	gateway   notify.Gateway
	scheduler DeadlineScheduler
	window    time.Duration
}

// NewMatchingService создаёт новый экземпляр MatchingService.
func NewMatchingService(requests repository.RequestRepository, responses repository.ResponseRepository, gateway notify.Gateway, window time.Duration) *MatchingService {
	return &MatchingService{
		Requests:  requests,
		Responses: responses,
		gateway:   gateway,
		window:    window,
	}
}

// AttachScheduler подключает планировщик дедлайнов.
// Вызывается один раз при сборке приложения.
func (s *MatchingService) AttachScheduler(scheduler DeadlineScheduler) {
	s.scheduler = scheduler
}

// CreateRequest создает новую заявку: считает цену, ставит дедлайн поиска
// и взводит таймер истечения.
func (s *MatchingService) CreateRequest(ctx context.Context, requestInput models.RequestInput) (*models.Request, error) {
	if requestInput.OrganizerID == "" || requestInput.InstrumentType == "" || requestInput.EventCategory == "" ||
		requestInput.StartTime == "" || requestInput.EndTime == "" {
		return nil, models.NewValidationError("missing required fields")
	}

	allowedInstruments := map[models.InstrumentType]bool{
		models.Guitar:    true,
		models.Violin:    true,
		models.Piano:     true,
		models.Vocal:     true,
		models.Drums:     true,
		models.Saxophone: true,
	}
	if !allowedInstruments[requestInput.InstrumentType] {
		return nil, models.NewValidationError(fmt.Sprintf("unsupported instrument type: %s", requestInput.InstrumentType))
	}

	price, err := pricing.Quote(requestInput.StartTime, requestInput.EndTime, requestInput.EventCategory)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().UTC().Add(s.window)
	request, err := s.Requests.CreateRequest(ctx, requestInput, price, deadline)
	if err != nil {
		return nil, storeError(err)
	}

	if s.scheduler != nil {
		s.scheduler.Arm(request.ID, request.Epoch, request.SearchDeadline)
	}
	s.gateway.Push(notify.EventRequestCreated, request.OrganizerID, map[string]interface{}{
		"requestId": request.ID,
		"price":     request.CalculatedPrice,
	})
	return request, nil
}

// GetRequest возвращает заявку по ID.
func (s *MatchingService) GetRequest(ctx context.Context, requestId string) (*models.Request, error) {
	if requestId == "" {
		return nil, models.NewValidationError("missing required parameter: requestId")
	}
	return s.fetchRequest(ctx, requestId)
}

// GetRequestStatus возвращает статус заявки.
func (s *MatchingService) GetRequestStatus(ctx context.Context, requestId string) (models.RequestStatus, error) {
	request, err := s.GetRequest(ctx, requestId)
	if err != nil {
		return "", err
	}
	return request.Status, nil
}

// GetUserRequests возвращает список заявок организатора.
func (s *MatchingService) GetUserRequests(ctx context.Context, organizerId, limitStr, offsetStr string, statuses []string) ([]models.Request, error) {
	if organizerId == "" {
		return nil, models.NewValidationError("missing required query parameter: organizerId")
	}

	allowedStatuses := map[models.RequestStatus]bool{
		models.SearchingRequest: true,
		models.FoundRequest:     true,
		models.ExpiredRequest:   true,
		models.CancelledRequest: true,
		models.CompletedRequest: true,
	}
	for _, status := range statuses {
		if !allowedStatuses[models.RequestStatus(status)] {
			return nil, models.NewValidationError(fmt.Sprintf("unsupported status: %s", status))
		}
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	requests, err := s.Requests.GetUserRequests(ctx, organizerId, limit, offset, statuses)
	if err != nil {
		return nil, storeError(err)
	}
	return requests, nil
}

// SubmitResponse создает отклик музыканта на заявку в статусе Searching.
// Повторный отклик того же кандидата добавляет новую запись,
// но в списке заинтересованных кандидат остаётся один раз.
func (s *MatchingService) SubmitResponse(ctx context.Context, requestId string, responseInput models.ResponseInput) (*models.Response, error) {
	if requestId == "" || responseInput.CandidateID == "" || responseInput.CandidateName == "" {
		return nil, models.NewValidationError("missing required fields: requestId, candidateId or candidateName")
	}

	request, err := s.fetchRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request.Status != models.SearchingRequest {
		return nil, models.NewInvalidStateError("request is no longer accepting responses")
	}

	if err := s.Requests.AddInterestedCandidate(ctx, requestId, responseInput.CandidateID); err != nil {
		return nil, storeError(err)
	}

	response, err := s.Responses.CreateResponse(ctx, requestId, responseInput)
	if err != nil {
		return nil, storeError(err)
	}

	s.gateway.Push(notify.EventResponseSubmitted, request.OrganizerID, map[string]interface{}{
		"requestId":   request.ID,
		"candidateId": response.CandidateID,
	})
	return response, nil
}

// GetRequestResponses возвращает список откликов на заявку.
func (s *MatchingService) GetRequestResponses(ctx context.Context, requestId, limitStr, offsetStr string) ([]models.Response, error) {
	if requestId == "" {
		return nil, models.NewValidationError("missing required parameter: requestId")
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.fetchRequest(ctx, requestId); err != nil {
		return nil, err
	}

	responses, err := s.Responses.GetRequestResponses(ctx, requestId, limit, offset)
	if err != nil {
		return nil, storeError(err)
	}
	return responses, nil
}

// AcceptResponse принимает отклик кандидата. Переход Searching -> Found
// выполняется условной записью: из конкурирующих вызовов побеждает ровно один,
// остальные получают invalid_state.
func (s *MatchingService) AcceptResponse(ctx context.Context, requestId, candidateId, callerOrganizerId string) (*models.Request, error) {
	if requestId == "" || candidateId == "" || callerOrganizerId == "" {
		return nil, models.NewValidationError("missing required parameters: requestId, candidateId or organizerId")
	}

	request, err := s.fetchRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request.OrganizerID != callerOrganizerId {
		return nil, models.NewForbiddenError("you are not the organizer of this request")
	}

	won, err := s.Requests.MarkFound(ctx, requestId, candidateId)
	if err != nil {
		return nil, storeError(err)
	}
	if !won {
		return nil, models.NewInvalidStateError("request is no longer available")
	}

	if err := s.Responses.MarkAccepted(ctx, requestId, candidateId); err != nil {
		return nil, storeError(err)
	}

	s.gateway.Push(notify.EventResponseAccepted, candidateId, map[string]interface{}{
		"requestId": requestId,
	})
	return s.fetchRequest(ctx, requestId)
}

// CancelRequest отменяет заявку организатора, пока идёт поиск.
func (s *MatchingService) CancelRequest(ctx context.Context, requestId, callerOrganizerId string) (*models.Request, error) {
	if requestId == "" || callerOrganizerId == "" {
		return nil, models.NewValidationError("missing required parameters: requestId or organizerId")
	}

	request, err := s.fetchRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request.OrganizerID != callerOrganizerId {
		return nil, models.NewForbiddenError("you are not the organizer of this request")
	}

	cancelled, err := s.Requests.MarkCancelled(ctx, requestId)
	if err != nil {
		return nil, storeError(err)
	}
	if !cancelled {
		return nil, models.NewInvalidStateError("only a searching request can be cancelled")
	}

	s.gateway.Push(notify.EventRequestCancelled, request.OrganizerID, map[string]interface{}{
		"requestId": requestId,
	})
	return s.fetchRequest(ctx, requestId)
}

// ResendRequest переоткрывает истёкшую заявку: очищает кандидатов и назначение,
// пересчитывает цену, ставит новый дедлайн и начинает новую эпоху.
func (s *MatchingService) ResendRequest(ctx context.Context, requestId, callerOrganizerId string) (*models.Request, error) {
	if requestId == "" || callerOrganizerId == "" {
		return nil, models.NewValidationError("missing required parameters: requestId or organizerId")
	}

	request, err := s.fetchRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request.OrganizerID != callerOrganizerId {
		return nil, models.NewForbiddenError("you are not the organizer of this request")
	}
	if request.Status != models.ExpiredRequest {
		return nil, models.NewInvalidStateError("only an expired request can be resent")
	}

	price, err := pricing.Quote(request.StartTime, request.EndTime, request.EventCategory)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().UTC().Add(s.window)
	reopened, err := s.Requests.Reopen(ctx, requestId, price, deadline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewInvalidStateError("only an expired request can be resent")
		}
		return nil, storeError(err)
	}

	if s.scheduler != nil {
		s.scheduler.Arm(reopened.ID, reopened.Epoch, reopened.SearchDeadline)
	}
	s.gateway.Push(notify.EventRequestResent, reopened.OrganizerID, map[string]interface{}{
		"requestId": reopened.ID,
		"price":     reopened.CalculatedPrice,
	})
	return reopened, nil
}

// ExpireIfSearching переводит заявку в Expired, если поиск указанной эпохи
// ещё идёт. Гонка с принятием отклика ожидаема: проигравший вызов - не ошибка.
func (s *MatchingService) ExpireIfSearching(ctx context.Context, requestId string, epoch int) (bool, error) {
	expired, err := s.Requests.MarkExpired(ctx, requestId, epoch)
	if err != nil {
		return false, storeError(err)
	}
	if !expired {
		return false, nil
	}

	if request, err := s.Requests.GetRequestByID(ctx, requestId); err == nil {
		s.gateway.Push(notify.EventRequestExpired, request.OrganizerID, map[string]interface{}{
			"requestId": requestId,
		})
	}
	return true, nil
}

// ExpireOverdue просрочивает все заявки в статусе Searching с истёкшим дедлайном.
// Возвращает количество выполненных переходов.
func (s *MatchingService) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := s.Requests.GetOverdueRequests(ctx, time.Now().UTC())
	if err != nil {
		return 0, storeError(err)
	}

	expiredCount := 0
	for _, request := range overdue {
		expired, err := s.ExpireIfSearching(ctx, request.ID, request.Epoch)
		if err != nil {
			return expiredCount, err
		}
		if expired {
			expiredCount++
		}
	}
	return expiredCount, nil
}

func (s *MatchingService) fetchRequest(ctx context.Context, requestId string) (*models.Request, error) {
	request, err := s.Requests.GetRequestByID(ctx, requestId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("request not found")
		}
		return nil, storeError(err)
	}
	return request, nil
}

func storeError(err error) error {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		return errorResponse
	}
	return models.NewStoreError(fmt.Sprintf("request store is unavailable: %v", err))
}
