package models

import "time"

type (
	InstrumentType string // Тип инструмента музыканта
	EventCategory  string // Категория мероприятия
	RequestStatus  string // Статус заявки
)

const (
	Guitar    InstrumentType = "Guitar"
	Violin    InstrumentType = "Violin"
	Piano     InstrumentType = "Piano"
	Vocal     InstrumentType = "Vocal"
	Drums     InstrumentType = "Drums"
	Saxophone InstrumentType = "Saxophone"

	Wedding   EventCategory = "Wedding"
	Corporate EventCategory = "Corporate"
	Private   EventCategory = "Private"

	SearchingRequest RequestStatus = "Searching" // Идёт поиск музыканта
	FoundRequest     RequestStatus = "Found"     // Музыкант выбран
	ExpiredRequest   RequestStatus = "Expired"   // Время поиска истекло
	CancelledRequest RequestStatus = "Cancelled" // Заявка отменена организатором
	CompletedRequest RequestStatus = "Completed" // Мероприятие завершено
)

// Request представляет модель заявки на поиск музыканта.
type Request struct {
	ID                   string         `json:"id"`
	OrganizerID          string         `json:"organizerId"`
	InstrumentType       InstrumentType `json:"instrumentType"`
	EventCategory        EventCategory  `json:"eventCategory"`
	StartTime            string         `json:"startTime"`
	EndTime              string         `json:"endTime"`
	Location             string         `json:"location"`
	Status               RequestStatus  `json:"status"`
	AssignedCandidateID  *string        `json:"assignedCandidateId,omitempty"`
	InterestedCandidates []string       `json:"interestedCandidates"`
	CalculatedPrice      float64        `json:"calculatedPrice"`
	SearchDeadline       time.Time      `json:"searchDeadline"`
	Epoch                int            `json:"-"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// RequestInput представляет структуру запроса для создания заявки.
type RequestInput struct {
	OrganizerID    string         `json:"organizerId"`
	InstrumentType InstrumentType `json:"instrumentType"`
	EventCategory  EventCategory  `json:"eventCategory"`
	StartTime      string         `json:"startTime"`
	EndTime        string         `json:"endTime"`
	Location       string         `json:"location"`
}

// HasCandidate проверяет, есть ли кандидат в списке заинтересованных.
func (r *Request) HasCandidate(candidateId string) bool {
	for _, id := range r.InterestedCandidates {
		if id == candidateId {
			return true
		}
	}
	return false
}
