package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/senyabanana/gig-service/internal/models"
	"github.com/senyabanana/gig-service/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore - хранилище в памяти для тестов движка. Переходы статусов
// выполняются под мьютексом, поэтому условная запись честная: из
// конкурирующих вызовов предусловие видит ровно один.
type memoryStore struct {
	mu        sync.Mutex
	requests  map[string]*models.Request
	responses []models.Response
}

func newMemoryStore() *memoryStore {
	return &memoryStore{requests: make(map[string]*models.Request)}
}

func (m *memoryStore) CreateRequest(_ context.Context, requestInput models.RequestInput, price float64, deadline time.Time) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	request := &models.Request{
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
	m.requests[request.ID] = request
	copied := *request
	return &copied, nil
}

func (m *memoryStore) GetRequestByID(_ context.Context, requestId string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *request
	copied.InterestedCandidates = append([]string{}, request.InterestedCandidates...)
	return &copied, nil
}

func (m *memoryStore) GetUserRequests(_ context.Context, organizerId string, limit, offset int, statuses []string) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var requests []models.Request
	for _, request := range m.requests {
		if request.OrganizerID != organizerId {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, request.Status) {
			continue
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

func (m *memoryStore) GetOverdueRequests(_ context.Context, now time.Time) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var requests []models.Request
	for _, request := range m.requests {
		if request.Status == models.SearchingRequest && !request.SearchDeadline.After(now) {
			requests = append(requests, *request)
		}
	}
	return requests, nil
}

func (m *memoryStore) AddInterestedCandidate(_ context.Context, requestId, candidateId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok {
		return pgx.ErrNoRows
	}
	if request.Status != models.SearchingRequest || request.HasCandidate(candidateId) {
		return nil
	}
	request.InterestedCandidates = append(request.InterestedCandidates, candidateId)
	return nil
}

func (m *memoryStore) MarkFound(_ context.Context, requestId, candidateId string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok || request.Status != models.SearchingRequest {
		return false, nil
	}
	request.Status = models.FoundRequest
	assigned := candidateId
	request.AssignedCandidateID = &assigned
	return true, nil
}

func (m *memoryStore) MarkCancelled(_ context.Context, requestId string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok || request.Status != models.SearchingRequest {
		return false, nil
	}
	request.Status = models.CancelledRequest
	return true, nil
}

func (m *memoryStore) MarkExpired(_ context.Context, requestId string, epoch int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok || request.Status != models.SearchingRequest || request.Epoch != epoch {
		return false, nil
	}
	request.Status = models.ExpiredRequest
	return true, nil
}

func (m *memoryStore) Reopen(_ context.Context, requestId string, price float64, deadline time.Time) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[requestId]
	if !ok || request.Status != models.ExpiredRequest {
		return nil, pgx.ErrNoRows
	}
	request.Status = models.SearchingRequest
	request.InterestedCandidates = []string{}
	request.AssignedCandidateID = nil
	request.CalculatedPrice = price
	request.SearchDeadline = deadline
	request.Epoch++
	copied := *request
	return &copied, nil
}

func (m *memoryStore) CreateResponse(_ context.Context, requestId string, responseInput models.ResponseInput) (*models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	response := models.Response{
		ID:            uuid.New().String(),
		RequestID:     requestId,
		CandidateID:   responseInput.CandidateID,
		CandidateName: responseInput.CandidateName,
		Status:        models.PendingResponse,
		Message:       responseInput.Message,
		ProposedPrice: responseInput.ProposedPrice,
		CreatedAt:     time.Now().UTC(),
	}
	m.responses = append(m.responses, response)
	return &response, nil
}

func (m *memoryStore) GetRequestResponses(_ context.Context, requestId string, limit, offset int) ([]models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var responses []models.Response
	for _, response := range m.responses {
		if response.RequestID == requestId {
			responses = append(responses, response)
		}
	}
	return responses, nil
}

func (m *memoryStore) MarkAccepted(_ context.Context, requestId, candidateId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.responses) - 1; i >= 0; i-- {
		response := &m.responses[i]
		if response.RequestID == requestId && response.CandidateID == candidateId && response.Status == models.PendingResponse {
			response.Status = models.AcceptedResponse
			return nil
		}
	}
	return nil
}

func (m *memoryStore) acceptedCount(requestId string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, response := range m.responses {
		if response.RequestID == requestId && response.Status == models.AcceptedResponse {
			count++
		}
	}
	return count
}

func containsStatus(statuses []string, status models.RequestStatus) bool {
	for _, s := range statuses {
		if models.RequestStatus(s) == status {
			return true
		}
	}
	return false
}

type recordingGateway struct {
	mu     sync.Mutex
	events []string
}

func (g *recordingGateway) Push(eventKind, targetUserId string, payload map[string]interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, eventKind+":"+targetUserId)
}

type recordingScheduler struct {
	mu     sync.Mutex
	armed  []string
	epochs []int
}

func (s *recordingScheduler) Arm(requestId string, epoch int, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = append(s.armed, requestId)
	s.epochs = append(s.epochs, epoch)
}

func newTestService(window time.Duration) (*services.MatchingService, *memoryStore, *recordingGateway, *recordingScheduler) {
	store := newMemoryStore()
	gateway := &recordingGateway{}
	sched := &recordingScheduler{}
	service := services.NewMatchingService(store, store, gateway, window)
	service.AttachScheduler(sched)
	return service, store, gateway, sched
}

func validInput() models.RequestInput {
	return models.RequestInput{
		OrganizerID:    "org-1",
		InstrumentType: models.Violin,
		EventCategory:  models.Wedding,
		StartTime:      "18:00",
		EndTime:        "21:10",
		Location:       "Moscow",
	}
}

func TestCreateRequestComputesPriceAndArmsDeadline(t *testing.T) {
	service, _, gateway, sched := newTestService(30 * time.Minute)
	ctx := context.Background()

	before := time.Now().UTC()
	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, models.SearchingRequest, request.Status)
	assert.Equal(t, 725.0, request.CalculatedPrice)
	assert.Empty(t, request.InterestedCandidates)
	assert.Nil(t, request.AssignedCandidateID)
	assert.WithinDuration(t, before.Add(30*time.Minute), request.SearchDeadline, 5*time.Second)

	require.Len(t, sched.armed, 1)
	assert.Equal(t, request.ID, sched.armed[0])
	assert.Equal(t, 1, sched.epochs[0])
	assert.Contains(t, gateway.events, "request_created:org-1")
}

func TestCreateRequestValidation(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	input := validInput()
	input.OrganizerID = ""
	_, err := service.CreateRequest(ctx, input)
	assert.True(t, models.IsKind(err, models.ValidationError))

	input = validInput()
	input.InstrumentType = "Theremin"
	_, err = service.CreateRequest(ctx, input)
	assert.True(t, models.IsKind(err, models.ValidationError))

	input = validInput()
	input.EventCategory = "Festival"
	_, err = service.CreateRequest(ctx, input)
	assert.True(t, models.IsKind(err, models.ValidationError))

	input = validInput()
	input.EndTime = input.StartTime
	_, err = service.CreateRequest(ctx, input)
	assert.True(t, models.IsKind(err, models.ValidationError))
}

func TestSubmitResponseDeduplicatesCandidates(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = service.SubmitResponse(ctx, request.ID, models.ResponseInput{
			CandidateID:   "cand-1",
			CandidateName: "Anna",
		})
		require.NoError(t, err)
	}

	responses, err := service.GetRequestResponses(ctx, request.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, responses, 2)

	updated, err := service.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cand-1"}, updated.InterestedCandidates)
}

func TestSubmitResponseGuards(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	_, err := service.SubmitResponse(ctx, "missing", models.ResponseInput{CandidateID: "cand-1", CandidateName: "Anna"})
	assert.True(t, models.IsKind(err, models.NotFoundError))

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	expired, err := service.ExpireIfSearching(ctx, request.ID, 1)
	require.NoError(t, err)
	require.True(t, expired)

	_, err = service.SubmitResponse(ctx, request.ID, models.ResponseInput{CandidateID: "cand-1", CandidateName: "Anna"})
	assert.True(t, models.IsKind(err, models.InvalidStateError))
}

func TestAcceptResponseSingleWinner(t *testing.T) {
	service, store, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	const candidates = 16
	candidateIds := make([]string, candidates)
	for i := range candidateIds {
		candidateIds[i] = "cand-" + uuid.New().String()
		_, err = service.SubmitResponse(ctx, request.ID, models.ResponseInput{
			CandidateID:   candidateIds[i],
			CandidateName: "Candidate",
		})
		require.NoError(t, err)
	}

	var wins, losses, unexpected int64
	var wg sync.WaitGroup
	wg.Add(candidates)
	for _, candidateId := range candidateIds {
		candidateId := candidateId
		go func() {
			defer wg.Done()
			_, err := service.AcceptResponse(ctx, request.ID, candidateId, "org-1")
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case models.IsKind(err, models.InvalidStateError):
				atomic.AddInt64(&losses, 1)
			default:
				atomic.AddInt64(&unexpected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(candidates-1), losses)
	assert.Equal(t, int64(0), unexpected)

	final, err := service.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FoundRequest, final.Status)
	require.NotNil(t, final.AssignedCandidateID)
	assert.Equal(t, 1, store.acceptedCount(request.ID))
}

func TestAcceptResponseForbidden(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	_, err = service.AcceptResponse(ctx, request.ID, "cand-1", "someone-else")
	assert.True(t, models.IsKind(err, models.ForbiddenError))
}

func TestExpireIfSearchingNoopOnTerminalStates(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	_, err = service.SubmitResponse(ctx, request.ID, models.ResponseInput{CandidateID: "cand-1", CandidateName: "Anna"})
	require.NoError(t, err)
	_, err = service.AcceptResponse(ctx, request.ID, "cand-1", "org-1")
	require.NoError(t, err)

	expired, err := service.ExpireIfSearching(ctx, request.ID, 1)
	require.NoError(t, err)
	assert.False(t, expired)

	final, err := service.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FoundRequest, final.Status)
}

func TestExpireIfSearchingIgnoresStaleEpoch(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	expired, err := service.ExpireIfSearching(ctx, request.ID, 1)
	require.NoError(t, err)
	require.True(t, expired)

	reopened, err := service.ResendRequest(ctx, request.ID, "org-1")
	require.NoError(t, err)
	require.Equal(t, 2, reopened.Epoch)

	// Таймер первой эпохи не должен просрочить переоткрытую заявку.
	expired, err = service.ExpireIfSearching(ctx, request.ID, 1)
	require.NoError(t, err)
	assert.False(t, expired)

	final, err := service.GetRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SearchingRequest, final.Status)
}

func TestExpireOverdueSweep(t *testing.T) {
	service, _, _, _ := newTestService(-time.Second)
	ctx := context.Background()

	overdue, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	taken, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)
	_, err = service.SubmitResponse(ctx, taken.ID, models.ResponseInput{CandidateID: "cand-1", CandidateName: "Anna"})
	require.NoError(t, err)
	_, err = service.AcceptResponse(ctx, taken.ID, "cand-1", "org-1")
	require.NoError(t, err)

	expiredCount, err := service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expiredCount)

	first, err := service.GetRequest(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpiredRequest, first.Status)

	second, err := service.GetRequest(ctx, taken.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FoundRequest, second.Status)
}

func TestResendRequest(t *testing.T) {
	service, _, _, sched := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	_, err = service.SubmitResponse(ctx, request.ID, models.ResponseInput{CandidateID: "cand-1", CandidateName: "Anna"})
	require.NoError(t, err)

	// Пока идёт поиск, переоткрытие запрещено.
	_, err = service.ResendRequest(ctx, request.ID, "org-1")
	assert.True(t, models.IsKind(err, models.InvalidStateError))

	expired, err := service.ExpireIfSearching(ctx, request.ID, 1)
	require.NoError(t, err)
	require.True(t, expired)

	_, err = service.ResendRequest(ctx, request.ID, "someone-else")
	assert.True(t, models.IsKind(err, models.ForbiddenError))

	reopened, err := service.ResendRequest(ctx, request.ID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.SearchingRequest, reopened.Status)
	assert.Equal(t, 2, reopened.Epoch)
	assert.Empty(t, reopened.InterestedCandidates)
	assert.Nil(t, reopened.AssignedCandidateID)
	assert.True(t, reopened.SearchDeadline.After(time.Now().UTC()))

	require.Len(t, sched.armed, 2)
	assert.Equal(t, 2, sched.epochs[1])
}

func TestCancelRequest(t *testing.T) {
	service, _, _, _ := newTestService(30 * time.Minute)
	ctx := context.Background()

	request, err := service.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	_, err = service.CancelRequest(ctx, request.ID, "someone-else")
	assert.True(t, models.IsKind(err, models.ForbiddenError))

	cancelled, err := service.CancelRequest(ctx, request.ID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.CancelledRequest, cancelled.Status)

	_, err = service.CancelRequest(ctx, request.ID, "org-1")
	assert.True(t, models.IsKind(err, models.InvalidStateError))
}
