package models

import "time"

type ResponseStatus string // Статус отклика музыканта

const (
	PendingResponse  ResponseStatus = "Pending"  // Отклик ожидает решения организатора
	AcceptedResponse ResponseStatus = "Accepted" // Отклик принят
	RejectedResponse ResponseStatus = "Rejected" // Отклик отклонён
)

// Response представляет модель отклика музыканта на заявку.
type Response struct {
	ID            string         `json:"id"`
	RequestID     string         `json:"requestId"`
	CandidateID   string         `json:"candidateId"`
	CandidateName string         `json:"candidateName"`
	Status        ResponseStatus `json:"status"`
	Message       *string        `json:"message,omitempty"`
	ProposedPrice *float64       `json:"proposedPrice,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// ResponseInput представляет структуру запроса для создания отклика.
type ResponseInput struct {
	CandidateID   string   `json:"candidateId"`
	CandidateName string   `json:"candidateName"`
	Message       *string  `json:"message,omitempty"`
	ProposedPrice *float64 `json:"proposedPrice,omitempty"`
}
