package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/repository"
)

type DishService interface {
	Create(ctx context.Context, req *domain.CreateDishRequest) (*domain.Dish, error)
	Get(ctx context.Context, id int64) (*domain.Dish, error)
	List(ctx context.Context) ([]domain.Dish, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Dish, error)
	Update(ctx context.Context, id int64, req *domain.UpdateDishRequest) (*domain.Dish, error)
	Delete(ctx context.Context, id int64) error
}

type dishService struct {
	repo           repository.DishRepository
	restaurantRepo repository.RestaurantRepository
}

func NewDishService(repo repository.DishRepository, restaurantRepo repository.RestaurantRepository) DishService {
	return &dishService{repo: repo, restaurantRepo: restaurantRepo}
}

// Create verifies the restaurant exists and denormalizes its name onto the
// dish so listings don't need a join.
func (s *dishService) Create(ctx context.Context, req *domain.CreateDishRequest) (*domain.Dish, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("restaurant not found: %w", domain.ErrNotFound)
	}

	dish, err := s.repo.Create(ctx, &domain.Dish{
		Name:           req.Name,
		Description:    req.Description,
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Images:         req.Images,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}
	return dish, nil
}

func (s *dishService) Get(ctx context.Context, id int64) (*domain.Dish, error) {
	dish, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dish: %w", err)
	}
	if dish == nil {
		return nil, domain.ErrNotFound
	}
	return dish, nil
}

func (s *dishService) List(ctx context.Context) ([]domain.Dish, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

func (s *dishService) ListByRestaurant(ctx context.Context, restaurantID int64) ([]domain.Dish, error) {
	restaurant, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, domain.ErrNotFound
	}

	dishes, err := s.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

func (s *dishService) Update(ctx context.Context, id int64, req *domain.UpdateDishRequest) (*domain.Dish, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	if req.RestaurantID != nil {
		restaurant, err := s.restaurantRepo.GetByID(ctx, *req.RestaurantID)
		if err != nil {
			return nil, fmt.Errorf("failed to check restaurant: %w", err)
		}
		if restaurant == nil {
			return nil, fmt.Errorf("restaurant not found: %w", domain.ErrNotFound)
		}
	}

	dish, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update dish: %w", err)
	}
	if dish == nil {
		return nil, domain.ErrNotFound
	}
	return dish, nil
}

func (s *dishService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete dish: %w", err)
	}
	return nil
}
