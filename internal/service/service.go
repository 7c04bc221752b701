// Package service holds the aggregate operations of the store. Handlers
// call into it; it talks to storage only through the repository
// interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/OnlineStore/internal/domain"
	"github.com/utafrali/OnlineStore/internal/repository"
	apperrors "github.com/utafrali/OnlineStore/pkg/errors"
)

// EventPublisher is implemented by event.Producer. Publishing is best
// effort: a failure is logged and never fails the operation.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, u *domain.UserProfile) error
	PublishProductUpdated(ctx context.Context, p *domain.Product) error
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
	PublishOrderUpdated(ctx context.Context, o *domain.Order, oldStatus string) error
	PublishDeliveryAttached(ctx context.Context, d *domain.Delivery) error
	PublishReviewCreated(ctx context.Context, r *domain.Review) error
}

// found converts a storage NotFound into (false, nil) for aggregates whose
// update and delete quietly do nothing when the row is missing.
func found(err error, op string) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case apperrors.IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

func logPublishFailure(ctx context.Context, logger *slog.Logger, event string, err error, attrs ...any) {
	logger.ErrorContext(ctx, "failed to publish "+event+" event",
		append(attrs, slog.String("error", err.Error()))...,
	)
}

func requirePositive(name string, id int64) error {
	if id <= 0 {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be a positive id", name))
	}
	return nil
}

// loadCatalog fetches the current price of every product in ids in one
// round trip.
func loadCatalog(ctx context.Context, products repository.ProductRepository, ids []int64) (domain.Catalog, error) {
	if len(ids) == 0 {
		return domain.Catalog{}, nil
	}
	list, err := products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load product prices: %w", err)
	}
	return domain.NewCatalog(list), nil
}
