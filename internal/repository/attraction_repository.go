package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cookwithlove/directory-api/internal/domain"
)

type AttractionRepository interface {
	Create(ctx context.Context, a *domain.Attraction) (*domain.Attraction, error)
	GetByID(ctx context.Context, id int64) (*domain.Attraction, error)
	List(ctx context.Context, filter domain.AttractionFilter) ([]domain.Attraction, error)
	Search(ctx context.Context, term string) ([]domain.Attraction, error)
	Update(ctx context.Context, id int64, req *domain.UpdateAttractionRequest) (*domain.Attraction, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Attraction, error)
	Delete(ctx context.Context, id int64) error
}

type attractionRepository struct {
	pool *pgxpool.Pool
}

func NewAttractionRepository(pool *pgxpool.Pool) AttractionRepository {
	return &attractionRepository{pool: pool}
}

const attractionCols = `id, name, category, description, latitude, longitude, video_url, cultural_info, schedule, entry_fee, restrictions, difficulty, services, photos, audio_url, status, created_at, updated_at`

func scanAttraction(row pgx.Row) (*domain.Attraction, error) {
	var a domain.Attraction
	err := row.Scan(
		&a.ID, &a.Name, &a.Category, &a.Description, &a.Latitude, &a.Longitude,
		&a.VideoURL, &a.CulturalInfo, &a.Schedule, &a.EntryFee, &a.Restrictions,
		&a.Difficulty, &a.Services, &a.Photos, &a.AudioURL, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.Photos == nil {
		a.Photos = []string{}
	}
	return &a, nil
}

func (r *attractionRepository) Create(ctx context.Context, a *domain.Attraction) (*domain.Attraction, error) {
	const q = `
		INSERT INTO attractions (name, category, description, latitude, longitude, video_url, cultural_info, schedule, entry_fee, restrictions, difficulty, services, photos, audio_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + attractionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	photos := a.Photos
	if photos == nil {
		photos = []string{}
	}

	return scanAttraction(r.pool.QueryRow(ctx, q,
		a.Name, a.Category, a.Description, a.Latitude, a.Longitude,
		a.VideoURL, a.CulturalInfo, a.Schedule, a.EntryFee, a.Restrictions,
		a.Difficulty, a.Services, photos, a.AudioURL, a.Status,
	))
}

func (r *attractionRepository) GetByID(ctx context.Context, id int64) (*domain.Attraction, error) {
	const q = `SELECT ` + attractionCols + ` FROM attractions WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAttraction(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attractionRepository) List(ctx context.Context, filter domain.AttractionFilter) ([]domain.Attraction, error) {
	const q = `
		SELECT ` + attractionCols + `
		FROM attractions
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR difficulty = $3)
		ORDER BY created_at DESC`

	return r.queryMany(ctx, q, filter.Status, filter.Category, filter.Difficulty)
}

func (r *attractionRepository) Search(ctx context.Context, term string) ([]domain.Attraction, error) {
	const q = `
		SELECT ` + attractionCols + `
		FROM attractions
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC`

	return r.queryMany(ctx, q, term)
}

func (r *attractionRepository) queryMany(ctx context.Context, q string, args ...any) ([]domain.Attraction, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attractions []domain.Attraction
	for rows.Next() {
		a, err := scanAttraction(rows)
		if err != nil {
			return nil, err
		}
		attractions = append(attractions, *a)
	}

	return attractions, rows.Err()
}

func (r *attractionRepository) Update(ctx context.Context, id int64, req *domain.UpdateAttractionRequest) (*domain.Attraction, error) {
	const q = `
		UPDATE attractions
		SET
			name = COALESCE($2, name),
			category = COALESCE($3, category),
			description = COALESCE($4, description),
			latitude = COALESCE($5, latitude),
			longitude = COALESCE($6, longitude),
			video_url = COALESCE($7, video_url),
			cultural_info = COALESCE($8, cultural_info),
			schedule = COALESCE($9, schedule),
			entry_fee = COALESCE($10, entry_fee),
			restrictions = COALESCE($11, restrictions),
			difficulty = COALESCE($12, difficulty),
			services = COALESCE($13, services),
			photos = COALESCE($14, photos),
			audio_url = COALESCE($15, audio_url),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + attractionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAttraction(r.pool.QueryRow(ctx, q, id,
		req.Name, req.Category, req.Description, req.Latitude, req.Longitude,
		req.VideoURL, req.CulturalInfo, req.Schedule, req.EntryFee, req.Restrictions,
		req.Difficulty, req.Services, req.Photos, req.AudioURL,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attractionRepository) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Attraction, error) {
	const q = `
		UPDATE attractions
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + attractionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAttraction(r.pool.QueryRow(ctx, q, id, status))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *attractionRepository) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM attractions WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
