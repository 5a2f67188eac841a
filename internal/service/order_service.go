package service

import (
	"errors"
	"time"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/policy"
	"lilium-backend/internal/repository"
	"lilium-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Zone          string              `json:"zone" validate:"required"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=CASH_ON_DELIVERY ONLINE"`
	Note          string              `json:"note"`
	Items         []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
}

type OrderService interface {
	PlaceOrder(req *PlaceOrderRequest, userID uuid.UUID) (*model.Order, error)
	UpdateOrderStatus(orderID uuid.UUID, next model.OrderStatus, actorID string) (*model.Order, error)
	GetOrder(orderID uuid.UUID) (*model.Order, error)
	GetOrdersForUser(userID uuid.UUID) ([]model.Order, error)
	GetRecentOrders(limit int) ([]model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	inventory   InventoryService
}

func NewOrderService(
	oRepo repository.OrderRepository,
	pRepo repository.ProductRepository,
	cRepo repository.CompanyRepository,
	inventory InventoryService,
) OrderService {
	return &orderService{
		orderRepo:   oRepo,
		productRepo: pRepo,
		companyRepo: cRepo,
		inventory:   inventory,
	}
}

// PlaceOrder validates availability, freezes unit prices and owning companies
// on the items, enforces each company's minimum order amount over its portion,
// and sums per-zone delivery fees of the companies involved. Stock is not
// touched here; deduction happens on confirmation.
func (s *orderService) PlaceOrder(req *PlaceOrderRequest, userID uuid.UUID) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidStatef("order", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	order := &model.Order{
		UserID:        userID,
		Status:        model.OrderPending,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentPending,
		Zone:          req.Zone,
		Note:          req.Note,
	}
	order.CreatedBy = userID.String()
	order.UpdatedBy = userID.String()

	companyTotals := make(map[uuid.UUID]float64)
	for _, item := range req.Items {
		product, err := s.productRepo.FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("product", "product %s not found", item.ProductID)
			}
			return nil, apperr.Wrap("product", err)
		}
		if !product.IsActive {
			return nil, apperr.InvalidStatef("product", "product '%s' is not available", product.NameEn)
		}
		if !policy.InScope(model.ZoneList{req.Zone}, product.Zones) {
			return nil, apperr.InvalidStatef("product", "product '%s' is not available in zone %s", product.NameEn, req.Zone)
		}

		order.Items = append(order.Items, model.OrderItem{
			ProductID: product.ID,
			CompanyID: product.CompanyID,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
		companyTotals[product.CompanyID] += product.Price * float64(item.Quantity)
	}

	for companyID, total := range companyTotals {
		company, err := s.companyRepo.FindByID(companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFoundf("company", "company %s not found", companyID)
			}
			return nil, apperr.Wrap("company", err)
		}
		if !company.IsActive {
			return nil, apperr.InvalidStatef("company", "company '%s' is not accepting orders", company.NameEn)
		}
		if total < company.MinOrderAmount {
			return nil, apperr.InvalidStatef("order", "order total %.2f for '%s' is below the minimum %.2f", total, company.NameEn, company.MinOrderAmount)
		}
		order.DeliveryFee += company.DeliveryFees[req.Zone]
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, apperr.Wrap("order", err)
	}
	return order, nil
}

// UpdateOrderStatus moves an order through its lifecycle. Confirmation deducts
// stock; cancelling after the stock was taken restores it; delivery stamps the
// delivery time.
func (s *orderService) UpdateOrderStatus(orderID uuid.UUID, next model.OrderStatus, actorID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order", "order %s not found", orderID)
		}
		return nil, apperr.Wrap("order", err)
	}

	if !order.CanTransitionTo(next) {
		return nil, apperr.InvalidStatef("order", "cannot move order from %s to %s", order.Status, next)
	}

	stockWasDeducted := order.StockDeducted()

	order.Status = next
	order.UpdatedBy = actorID
	if next == model.OrderDelivered {
		now := time.Now()
		order.DeliveredAt = &now
	}

	// deduct before persisting the status: if deduction fails the order
	// stays in its previous state and confirmation can be retried
	if next == model.OrderConfirmed {
		if err := s.inventory.DeductStockForOrder(order.ID, actorID); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(order); err != nil {
		return nil, apperr.Wrap("order", err)
	}

	if next == model.OrderCancelled && stockWasDeducted {
		if err := s.inventory.RestoreStockForOrder(order.ID, actorID); err != nil {
			return nil, err
		}
	}

	return order, nil
}

func (s *orderService) GetOrder(orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order", "order %s not found", orderID)
		}
		return nil, apperr.Wrap("order", err)
	}
	return order, nil
}

func (s *orderService) GetOrdersForUser(userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUser(userID)
	return orders, apperr.Wrap("order", err)
}

func (s *orderService) GetRecentOrders(limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	orders, err := s.orderRepo.FindRecent(limit)
	return orders, apperr.Wrap("order", err)
}
