package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/repository"
	"github.com/cookwithlove/directory-api/pkg/events"
	"github.com/cookwithlove/directory-api/pkg/logger"
)

type RestaurantService interface {
	Create(ctx context.Context, req *domain.CreateRestaurantRequest) (*domain.Restaurant, error)
	Get(ctx context.Context, id int64) (*domain.Restaurant, error)
	List(ctx context.Context) ([]domain.Restaurant, error)
	Update(ctx context.Context, id int64, req *domain.UpdateRestaurantRequest) (*domain.Restaurant, error)
	Delete(ctx context.Context, id int64) error
}

type restaurantService struct {
	repo     repository.RestaurantRepository
	eventBus events.EventBus
}

func NewRestaurantService(repo repository.RestaurantRepository, eventBus events.EventBus) RestaurantService {
	return &restaurantService{repo: repo, eventBus: eventBus}
}

func (s *restaurantService) Create(ctx context.Context, req *domain.CreateRestaurantRequest) (*domain.Restaurant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	restaurant, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.RestaurantCreated, events.RestaurantCreatedEvent{
		RestaurantID: restaurant.ID,
		Name:         restaurant.Name,
		CreatedAt:    time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish restaurant.created", "error", err)
	}

	return restaurant, nil
}

func (s *restaurantService) Get(ctx context.Context, id int64) (*domain.Restaurant, error) {
	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, domain.ErrNotFound
	}
	return restaurant, nil
}

func (s *restaurantService) List(ctx context.Context) ([]domain.Restaurant, error) {
	restaurants, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *restaurantService) Update(ctx context.Context, id int64, req *domain.UpdateRestaurantRequest) (*domain.Restaurant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	restaurant, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, domain.ErrNotFound
	}
	return restaurant, nil
}

func (s *restaurantService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete restaurant: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.RestaurantDeleted, map[string]any{
		"restaurant_id": id,
		"deleted_at":    time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish restaurant.deleted", "error", err)
	}

	return nil
}
