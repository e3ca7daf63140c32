package service

import (
	"context"
	"strings"

	"cafeteria-system/internal/common/apperr"
	"cafeteria-system/internal/common/auth"
	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/tracker/repository"
)

type TrackerServiceInterface interface {
	GetOrder(ctx context.Context, token, id string) (domain.Order, error)
}

type TrackerService struct {
	repo     repository.TrackerRepoInterface
	resolver auth.Resolver
}

func NewTrackerService(repo repository.TrackerRepoInterface, resolver auth.Resolver) *TrackerService {
	return &TrackerService{repo: repo, resolver: resolver}
}

// GetOrder returns the caller's own order. Existence is checked before ownership, so a
// foreign order id answers 403 rather than 404.
func (s *TrackerService) GetOrder(ctx context.Context, token, id string) (domain.Order, error) {
	owner, err := s.resolver.Resolve(ctx, token)
	if err != nil {
		return domain.Order{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Order{}, apperr.NotFound("order not found")
	}

	o, ok, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, apperr.Upstream("order store unavailable", err)
	}
	if !ok {
		return domain.Order{}, apperr.NotFound("order not found")
	}
	if o.OwnerID != owner {
		return domain.Order{}, apperr.Forbidden("order belongs to another student")
	}
	if o.Lines == nil {
		o.Lines = []domain.OrderLine{}
	}
	return o, nil
}
