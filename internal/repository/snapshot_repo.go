package repository

import (
	"context"

	"github.com/senyabanana/gig-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository - интерфейс для чтения срезов данных о музыкантах и рынке.
// Используется только советником по ставкам, ничего не пишет.
type SnapshotRepository interface {
	GetCandidateSnapshot(ctx context.Context, candidateId string) (*models.CandidateSnapshot, error)
	GetMarketSnapshot(ctx context.Context, instrumentType models.InstrumentType, location string) (*models.MarketSnapshot, error)
}

// PostgresSnapshotRepository - реализация SnapshotRepository для базы данных.
type PostgresSnapshotRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresSnapshotRepository создаёт новый экземпляр PostgresSnapshotRepository.
func NewPostgresSnapshotRepository(db *pgxpool.Pool) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{DB: db}
}

// GetCandidateSnapshot возвращает срез данных о музыканте.
func (r *PostgresSnapshotRepository) GetCandidateSnapshot(ctx context.Context, candidateId string) (*models.CandidateSnapshot, error) {
	var snapshot models.CandidateSnapshot
	query := `SELECT candidate_id, instrument_type, experience_years, rating, completed_events, total_events, response_rate
	          FROM candidate_profile WHERE candidate_id = $1`
	err := r.DB.QueryRow(ctx, query, candidateId).Scan(
		&snapshot.CandidateID,
		&snapshot.InstrumentType,
		&snapshot.ExperienceYears,
		&snapshot.Rating,
		&snapshot.CompletedEvents,
		&snapshot.TotalEvents,
		&snapshot.ResponseRate,
	)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetMarketSnapshot возвращает срез рыночных данных по инструменту и локации.
func (r *PostgresSnapshotRepository) GetMarketSnapshot(ctx context.Context, instrumentType models.InstrumentType, location string) (*models.MarketSnapshot, error) {
	var snapshot models.MarketSnapshot
	query := `SELECT instrument_type, location, base_rate, demand_level, location_factor, season_factor
	          FROM market_stats WHERE instrument_type = $1 AND location = $2`
	err := r.DB.QueryRow(ctx, query, instrumentType, location).Scan(
		&snapshot.InstrumentType,
		&snapshot.Location,
		&snapshot.BaseRate,
		&snapshot.DemandLevel,
		&snapshot.LocationFactor,
		&snapshot.SeasonFactor,
	)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
