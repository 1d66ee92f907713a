package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cookwithlove/directory-api/internal/domain"
)

type DishRepository interface {
	Create(ctx context.Context, d *domain.Dish) (*domain.Dish, error)
	GetByID(ctx context.Context, id int64) (*domain.Dish, error)
	List(ctx context.Context) ([]domain.Dish, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Dish, error)
	Update(ctx context.Context, id int64, req *domain.UpdateDishRequest) (*domain.Dish, error)
	SoftDelete(ctx context.Context, id int64) error
}

type dishRepository struct {
	pool *pgxpool.Pool
}

func NewDishRepository(pool *pgxpool.Pool) DishRepository {
	return &dishRepository{pool: pool}
}

const dishCols = `id, name, description, restaurant_id, restaurant_name, images, is_active, created_at, updated_at, deleted_at`

func scanDish(row pgx.Row) (*domain.Dish, error) {
	var d domain.Dish
	err := row.Scan(
		&d.ID, &d.Name, &d.Description, &d.RestaurantID, &d.RestaurantName,
		&d.Images, &d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.Images == nil {
		d.Images = []string{}
	}
	return &d, nil
}

func (r *dishRepository) Create(ctx context.Context, d *domain.Dish) (*domain.Dish, error) {
	const q = `
		INSERT INTO dishes (name, description, restaurant_id, restaurant_name, images, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING ` + dishCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	images := d.Images
	if images == nil {
		images = []string{}
	}

	return scanDish(r.pool.QueryRow(ctx, q, d.Name, d.Description, d.RestaurantID, d.RestaurantName, images))
}

func (r *dishRepository) GetByID(ctx context.Context, id int64) (*domain.Dish, error) {
	const q = `SELECT ` + dishCols + ` FROM dishes WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d, err := scanDish(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *dishRepository) List(ctx context.Context) ([]domain.Dish, error) {
	const q = `
		SELECT ` + dishCols + `
		FROM dishes
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC`

	return r.queryMany(ctx, q)
}

func (r *dishRepository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Dish, error) {
	const q = `
		SELECT ` + dishCols + `
		FROM dishes
		WHERE deleted_at IS NULL AND restaurant_id = $1
		ORDER BY created_at DESC`

	return r.queryMany(ctx, q, restaurantID)
}

func (r *dishRepository) queryMany(ctx context.Context, q string, args ...any) ([]domain.Dish, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []domain.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *d)
	}

	return dishes, rows.Err()
}

func (r *dishRepository) Update(ctx context.Context, id int64, req *domain.UpdateDishRequest) (*domain.Dish, error) {
	const q = `
		UPDATE dishes
		SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			restaurant_id = COALESCE($4, restaurant_id),
			images = COALESCE($5, images),
			is_active = COALESCE($6, is_active),
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + dishCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d, err := scanDish(r.pool.QueryRow(ctx, q, id, req.Name, req.Description, req.RestaurantID, req.Images, req.IsActive))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *dishRepository) SoftDelete(ctx context.Context, id int64) error {
	const q = `
		UPDATE dishes
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
