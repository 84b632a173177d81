package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jvegav/EcoTrade/internal/domain"
	"github.com/jvegav/EcoTrade/internal/events"
	"github.com/jvegav/EcoTrade/internal/repository"
	apperrors "github.com/jvegav/EcoTrade/pkg/util"
)

// ProductService coordinates catalog workflows.
type ProductService struct {
	products   repository.ProductRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// ProductDependencies bundles repositories for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// ProductInput describes a publish or update payload.
type ProductInput struct {
	Name        string
	Price       float64
	Description string
	UseTime     string
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products:   deps.ProductRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create publishes a product owned by the given user.
func (s *ProductService) Create(ctx context.Context, ownerID int64, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": ownerID})
		}
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: strings.TrimSpace(input.Description),
		UseTime:     strings.TrimSpace(input.UseTime),
		OwnerID:     ownerID,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.EventProductCreated, product)
	return product, nil
}

// GetByID fetches a single product.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err == pgx.ErrNoRows {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return product, err
}

// List returns the full catalog.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ListByOwner returns the catalog scoped to one owner.
func (s *ProductService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Product, error) {
	return s.products.ListByOwner(ctx, ownerID)
}

// Update modifies an existing product.
func (s *ProductService) Update(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	product.Description = strings.TrimSpace(input.Description)
	product.UseTime = strings.TrimSpace(input.UseTime)

	if err := s.products.Update(ctx, product); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}
	s.publishEvent(ctx, events.EventProductUpdated, product)
	return product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.EventProductDeleted, product)
	return nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("product name is required", nil)
	}
	if input.Price < 0 {
		return apperrors.NewValidationError("price must be non-negative", map[string]any{"price": input.Price})
	}
	return nil
}

func (s *ProductService) publishEvent(ctx context.Context, eventType events.EventType, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload: events.ProductEventPayload{
			ProductID: product.ID,
			OwnerID:   product.OwnerID,
			Name:      product.Name,
		},
	})
}
