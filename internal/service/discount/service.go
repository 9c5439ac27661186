package discount

import (
	"context"
	"errors"
	"strings"

	"microshop/internal/domain"
	couponrepo "microshop/internal/repository/coupon"

	"go.uber.org/zap"
)

// Service is the server side of the discount lookup: coupon storage keyed by
// product name, one coupon per product.
type Service struct {
	repo   couponrepo.Repository
	logger *zap.Logger
}

func NewService(repo couponrepo.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

type CouponInput struct {
	ProductName string `json:"productName"`
	Description string `json:"description"`
	AmountCents int64  `json:"amountCents"`
}

func (in CouponInput) validate() error {
	if strings.TrimSpace(in.ProductName) == "" {
		return errors.New("productName required")
	}
	if in.AmountCents < 0 {
		return errors.New("amountCents must not be negative")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, productName string) (*domain.Coupon, error) {
	return s.repo.GetByProductName(ctx, productName)
}

func (s *Service) List(ctx context.Context) ([]domain.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &domain.Coupon{
		ProductName: in.ProductName,
		Description: in.Description,
		AmountCents: in.AmountCents,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created",
		zap.String("product_name", c.ProductName), zap.Int64("amount_cents", c.AmountCents))
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in CouponInput) (*domain.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &domain.Coupon{
		ID:          id,
		ProductName: in.ProductName,
		Description: in.Description,
		AmountCents: in.AmountCents,
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon updated",
		zap.String("product_name", c.ProductName), zap.Int64("amount_cents", c.AmountCents))
	return c, nil
}

func (s *Service) Delete(ctx context.Context, productName string) (bool, error) {
	existed, err := s.repo.DeleteByProductName(ctx, productName)
	if err != nil {
		return false, err
	}
	if existed {
		s.logger.Info("coupon deleted", zap.String("product_name", productName))
	}
	return existed, nil
}
