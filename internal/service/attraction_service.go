package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/repository"
	"github.com/cookwithlove/directory-api/pkg/events"
	"github.com/cookwithlove/directory-api/pkg/logger"
)

type AttractionService interface {
	Create(ctx context.Context, req *domain.CreateAttractionRequest) (*domain.Attraction, error)
	Get(ctx context.Context, id int64) (*domain.Attraction, error)
	List(ctx context.Context, filter domain.AttractionFilter) ([]domain.Attraction, error)
	Search(ctx context.Context, term string) ([]domain.Attraction, error)
	Update(ctx context.Context, id int64, req *domain.UpdateAttractionRequest) (*domain.Attraction, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Attraction, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*domain.AttractionStats, error)
}

type attractionService struct {
	repo     repository.AttractionRepository
	eventBus events.EventBus
}

func NewAttractionService(repo repository.AttractionRepository, eventBus events.EventBus) AttractionService {
	return &attractionService{repo: repo, eventBus: eventBus}
}

func (s *attractionService) Create(ctx context.Context, req *domain.CreateAttractionRequest) (*domain.Attraction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	attraction, err := s.repo.Create(ctx, req.ToAttraction())
	if err != nil {
		return nil, fmt.Errorf("failed to create attraction: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.AttractionCreated, events.AttractionCreatedEvent{
		AttractionID: attraction.ID,
		Name:         attraction.Name,
		Category:     attraction.Category,
		CreatedAt:    time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish attraction.created", "error", err)
	}

	return attraction, nil
}

func (s *attractionService) Get(ctx context.Context, id int64) (*domain.Attraction, error) {
	attraction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attraction: %w", err)
	}
	if attraction == nil {
		return nil, domain.ErrNotFound
	}
	return attraction, nil
}

func (s *attractionService) List(ctx context.Context, filter domain.AttractionFilter) ([]domain.Attraction, error) {
	if filter.Status != "" && !domain.IsValidAttractionStatus(filter.Status) {
		return nil, fmt.Errorf("%w: invalid status filter", domain.ErrValidation)
	}

	attractions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attractions: %w", err)
	}
	return attractions, nil
}

func (s *attractionService) Search(ctx context.Context, term string) ([]domain.Attraction, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrValidation)
	}

	attractions, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search attractions: %w", err)
	}
	return attractions, nil
}

func (s *attractionService) Update(ctx context.Context, id int64, req *domain.UpdateAttractionRequest) (*domain.Attraction, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	attraction, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update attraction: %w", err)
	}
	if attraction == nil {
		return nil, domain.ErrNotFound
	}
	return attraction, nil
}

func (s *attractionService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Attraction, error) {
	if !domain.IsValidAttractionStatus(status) {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, status)
	}

	attraction, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update attraction status: %w", err)
	}
	if attraction == nil {
		return nil, domain.ErrNotFound
	}
	return attraction, nil
}

func (s *attractionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete attraction: %w", err)
	}
	return nil
}

func (s *attractionService) Stats(ctx context.Context) (*domain.AttractionStats, error) {
	attractions, err := s.repo.List(ctx, domain.AttractionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load attractions: %w", err)
	}

	stats := &domain.AttractionStats{
		ByCategory:   make(map[string]int),
		ByDifficulty: make(map[string]int),
	}
	for _, a := range attractions {
		stats.Total++
		if a.Status == domain.AttractionActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if a.Category != "" {
			stats.ByCategory[a.Category]++
		}
		if a.Difficulty != "" {
			stats.ByDifficulty[a.Difficulty]++
		}
	}
	return stats, nil
}
