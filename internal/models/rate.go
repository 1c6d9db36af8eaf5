package models

type DemandLevel string // Уровень спроса на рынке

const (
	LowDemand    DemandLevel = "Low"
	NormalDemand DemandLevel = "Normal"
	HighDemand   DemandLevel = "High"
)

// CandidateSnapshot представляет срез данных о музыканте для расчёта рекомендации.
type CandidateSnapshot struct {
	CandidateID     string         `json:"candidateId"`
	InstrumentType  InstrumentType `json:"instrumentType"`
	ExperienceYears int            `json:"experienceYears"`
	Rating          float64        `json:"rating"`
	CompletedEvents int            `json:"completedEvents"`
	TotalEvents     int            `json:"totalEvents"`
	ResponseRate    float64        `json:"responseRate"`
}

// MarketSnapshot представляет срез рыночных данных по инструменту и локации.
type MarketSnapshot struct {
	InstrumentType InstrumentType `json:"instrumentType"`
	Location       string         `json:"location"`
	BaseRate       float64        `json:"baseRate"`
	DemandLevel    DemandLevel    `json:"demandLevel"`
	LocationFactor float64        `json:"locationFactor"`
	SeasonFactor   float64        `json:"seasonFactor"`
}

// RateFactor представляет один множитель рекомендации с его вкладом в ставку.
type RateFactor struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	Amount     float64 `json:"amount"`
}

// RateAdvice представляет рекомендованную ставку с разбивкой по факторам.
type RateAdvice struct {
	BaseRate  float64      `json:"baseRate"`
	FinalRate float64      `json:"finalRate"`
	Factors   []RateFactor `json:"factors"`
}
