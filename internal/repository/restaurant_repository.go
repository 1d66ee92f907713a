package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cookwithlove/directory-api/internal/domain"
)

type RestaurantRepository interface {
	Create(ctx context.Context, req *domain.CreateRestaurantRequest) (*domain.Restaurant, error)
	GetByID(ctx context.Context, id int64) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	Update(ctx context.Context, id int64, req *domain.UpdateRestaurantRequest) (*domain.Restaurant, error)
	SoftDelete(ctx context.Context, id int64) error
}

type restaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) RestaurantRepository {
	return &restaurantRepository{pool: pool}
}

const restaurantCols = `id, name, schedule, latitude, longitude, is_active, created_at, updated_at, deleted_at`

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var rst domain.Restaurant
	err := row.Scan(
		&rst.ID, &rst.Name, &rst.Schedule, &rst.Latitude, &rst.Longitude,
		&rst.IsActive, &rst.CreatedAt, &rst.UpdatedAt, &rst.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rst, nil
}

func (r *restaurantRepository) Create(ctx context.Context, req *domain.CreateRestaurantRequest) (*domain.Restaurant, error) {
	const q = `
		INSERT INTO restaurants (name, schedule, latitude, longitude, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING ` + restaurantCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanRestaurant(r.pool.QueryRow(ctx, q, req.Name, req.Schedule, *req.Latitude, *req.Longitude))
}

func (r *restaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	const q = `SELECT ` + restaurantCols + ` FROM restaurants WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rst, err := scanRestaurant(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rst, err
}

func (r *restaurantRepository) List(ctx context.Context) ([]domain.Restaurant, error) {
	const q = `
		SELECT ` + restaurantCols + `
		FROM restaurants
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		rst, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rst)
	}

	return restaurants, rows.Err()
}

func (r *restaurantRepository) Update(ctx context.Context, id int64, req *domain.UpdateRestaurantRequest) (*domain.Restaurant, error) {
	const q = `
		UPDATE restaurants
		SET
			name = COALESCE($2, name),
			schedule = COALESCE($3, schedule),
			latitude = COALESCE($4, latitude),
			longitude = COALESCE($5, longitude),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + restaurantCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rst, err := scanRestaurant(r.pool.QueryRow(ctx, q, id, req.Name, req.Schedule, req.Latitude, req.Longitude, req.IsActive))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return rst, err
}

func (r *restaurantRepository) SoftDelete(ctx context.Context, id int64) error {
	const q = `
		UPDATE restaurants
		SET deleted_at = now(), is_active = false, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

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
