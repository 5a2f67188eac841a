package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/config"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"
	"lilium-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockUpdateType is the caller-facing operation kind. RESTOCK and RETURN
// carry a positive delta; ADJUSTMENT carries an absolute target value.
type StockUpdateType string

const (
	StockUpdateRestock    StockUpdateType = "RESTOCK"
	StockUpdateAdjustment StockUpdateType = "ADJUSTMENT"
	StockUpdateReturn     StockUpdateType = "RETURN"
)

func (t StockUpdateType) eventType() model.StockEventType {
	switch t {
	case StockUpdateRestock:
		return model.StockEventRestock
	case StockUpdateAdjustment:
		return model.StockEventAdjustment
	default:
		return model.StockEventReturn
	}
}

type UpdateStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Type      StockUpdateType `json:"type" validate:"required,oneof=RESTOCK ADJUSTMENT RETURN"`
	Quantity  int             `json:"quantity"`
	Note      string          `json:"note"`
}

// StockUpdateResult reports a completed ledger mutation.
type StockUpdateResult struct {
	Product   *model.Product      `json:"product"`
	History   *model.StockHistory `json:"history"`
	AlertSent bool                `json:"alert_sent"`
}

type BulkItemResult struct {
	ProductID uuid.UUID `json:"product_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	NewStock  int       `json:"new_stock,omitempty"`
	AlertSent bool      `json:"alert_sent,omitempty"`
}

// BulkUpdateResult carries best-effort batch results: one entry failing never
// aborts the rest.
type BulkUpdateResult struct {
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Results      []BulkItemResult `json:"results"`
}

type RestockSuggestion struct {
	ProductID           uuid.UUID `json:"product_id"`
	SKU                 string    `json:"sku"`
	NameEn              string    `json:"name_en"`
	NameAr              string    `json:"name_ar"`
	CurrentStock        int       `json:"current_stock"`
	DailyVelocity       float64   `json:"daily_velocity"`
	DaysUntilOutOfStock int       `json:"days_until_out_of_stock"`
	SuggestedQuantity   int       `json:"suggested_quantity"`
}

type InventoryService interface {
	UpdateStock(req *UpdateStockRequest, actorID string) (*StockUpdateResult, error)
	BulkUpdateStock(updates []UpdateStockRequest, actorID string) (*BulkUpdateResult, error)
	DeductStockForOrder(orderID uuid.UUID, actorID string) error
	RestoreStockForOrder(orderID uuid.UUID, actorID string) error
	GetRestockSuggestions(days int) ([]RestockSuggestion, error)
	GetStockHistory(productID uuid.UUID, limit int) ([]model.StockHistory, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	historyRepo repository.StockHistoryRepository
	orderRepo   repository.OrderRepository
	db          *gorm.DB
	notifier    Notifier
	cfg         config.StockConfig
}

func NewInventoryService(
	pRepo repository.ProductRepository,
	hRepo repository.StockHistoryRepository,
	oRepo repository.OrderRepository,
	db *gorm.DB,
	notifier Notifier,
	cfg config.StockConfig,
) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		historyRepo: hRepo,
		orderRepo:   oRepo,
		db:          db,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// UpdateStock is the single authoritative path for changing a product's stock
// outside the order flow. The product write and its ledger entry commit in one
// transaction; relative changes are pushed down as stock = stock + delta so
// concurrent calls cannot clobber each other.
func (s *inventoryService) UpdateStock(req *UpdateStockRequest, actorID string) (*StockUpdateResult, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidStatef("stock_update", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if req.Type != StockUpdateAdjustment && req.Quantity <= 0 {
		return nil, apperr.InvalidStatef("stock_update", "%s quantity must be positive", req.Type)
	}
	if req.Type == StockUpdateAdjustment && req.Quantity < 0 {
		return nil, apperr.InvalidStatef("stock_update", "stock cannot be negative")
	}

	var result *StockUpdateResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// lock the row so concurrent mutations serialize and the ledger's
		// previous/new values reflect what was actually in the database
		var product model.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product", "product %s not found", req.ProductID)
			}
			return err
		}

		previousStock := product.Stock
		var newStock int
		if req.Type == StockUpdateAdjustment {
			newStock = req.Quantity
		} else {
			newStock = previousStock + req.Quantity
		}
		if newStock < 0 {
			return apperr.InvalidStatef("stock_update", "stock cannot go below zero (current %d, requested %+d)", previousStock, req.Quantity)
		}

		if req.Type == StockUpdateAdjustment {
			if err := s.productRepo.SetStock(tx, product.ID, newStock, actorID); err != nil {
				return err
			}
		} else {
			rows, err := s.productRepo.AdjustStock(tx, product.ID, req.Quantity, actorID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return apperr.InvalidStatef("stock_update", "stock changed concurrently, retry")
			}
		}

		history := &model.StockHistory{
			ProductID:     product.ID,
			Type:          req.Type.eventType(),
			QuantityDelta: newStock - previousStock,
			PreviousStock: previousStock,
			NewStock:      newStock,
			Note:          req.Note,
			ActorID:       actorID,
		}
		if err := s.historyRepo.Create(tx, history); err != nil {
			return err
		}

		product.Stock = newStock
		result = &StockUpdateResult{Product: &product, History: history}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("stock_update", err)
	}

	result.AlertSent = s.fireThresholdAlert(result.Product, result.History.PreviousStock, result.History.NewStock)
	return result, nil
}

// BulkUpdateStock applies each entry independently; failures are recorded
// per item and never abort the batch.
func (s *inventoryService) BulkUpdateStock(updates []UpdateStockRequest, actorID string) (*BulkUpdateResult, error) {
	result := &BulkUpdateResult{Results: make([]BulkItemResult, 0, len(updates))}

	for i := range updates {
		req := updates[i]
		item := BulkItemResult{ProductID: req.ProductID}

		updated, err := s.UpdateStock(&req, actorID)
		if err != nil {
			item.Error = err.Error()
			result.FailureCount++
		} else {
			item.Success = true
			item.NewStock = updated.Product.Stock
			item.AlertSent = updated.AlertSent
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}

	return result, nil
}

// DeductStockForOrder takes the ordered quantities out of inventory when an
// order is confirmed. Over-deduction is absorbed by clamping at zero rather
// than failing the confirmation. Not idempotent: the caller guarantees
// at-most-once invocation per order confirmation.
func (s *inventoryService) DeductStockForOrder(orderID uuid.UUID, actorID string) error {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("order", "order %s not found", orderID)
		}
		return apperr.Wrap("order", err)
	}

	type stockChange struct {
		product  model.Product
		previous int
		current  int
	}
	var changes []stockChange

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product model.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("product", "product %s not found", item.ProductID)
				}
				return err
			}

			previousStock := product.Stock
			newStock := previousStock - item.Quantity
			if newStock < 0 {
				newStock = 0
			}

			if err := s.productRepo.SetStock(tx, product.ID, newStock, actorID); err != nil {
				return err
			}

			ref := order.ID
			history := &model.StockHistory{
				ProductID:     product.ID,
				Type:          model.StockEventSale,
				QuantityDelta: newStock - previousStock,
				PreviousStock: previousStock,
				NewStock:      newStock,
				OrderID:       &ref,
				Note:          fmt.Sprintf("sold %d units", item.Quantity),
				ActorID:       actorID,
			}
			if err := s.historyRepo.Create(tx, history); err != nil {
				return err
			}

			product.Stock = newStock
			changes = append(changes, stockChange{product: product, previous: previousStock, current: newStock})
		}
		return nil
	})
	if err != nil {
		return apperr.Wrap("stock_deduction", err)
	}

	for _, change := range changes {
		s.fireThresholdAlert(&change.product, change.previous, change.current)
	}
	return nil
}

// RestoreStockForOrder puts the ordered quantities back when a confirmed
// order is cancelled or refunded.
func (s *inventoryService) RestoreStockForOrder(orderID uuid.UUID, actorID string) error {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("order", "order %s not found", orderID)
		}
		return apperr.Wrap("order", err)
	}

	type stockChange struct {
		product  model.Product
		previous int
		current  int
	}
	var changes []stockChange

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var product model.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("product", "product %s not found", item.ProductID)
				}
				return err
			}

			previousStock := product.Stock
			newStock := previousStock + item.Quantity

			if _, err := s.productRepo.AdjustStock(tx, product.ID, item.Quantity, actorID); err != nil {
				return err
			}

			ref := order.ID
			history := &model.StockHistory{
				ProductID:     product.ID,
				Type:          model.StockEventReturn,
				QuantityDelta: item.Quantity,
				PreviousStock: previousStock,
				NewStock:      newStock,
				OrderID:       &ref,
				Note:          fmt.Sprintf("restored %d units from cancelled order", item.Quantity),
				ActorID:       actorID,
			}
			if err := s.historyRepo.Create(tx, history); err != nil {
				return err
			}

			product.Stock = newStock
			changes = append(changes, stockChange{product: product, previous: previousStock, current: newStock})
		}
		return nil
	})
	if err != nil {
		return apperr.Wrap("stock_restore", err)
	}

	for _, change := range changes {
		s.fireThresholdAlert(&change.product, change.previous, change.current)
	}
	return nil
}

// fireThresholdAlert evaluates the three alert conditions in precedence order;
// at most one alert fires per mutation.
func (s *inventoryService) fireThresholdAlert(product *model.Product, previousStock, newStock int) bool {
	alert := StockAlert{
		ProductID:     product.ID,
		ProductNameEn: product.NameEn,
		ProductNameAr: product.NameAr,
		CurrentStock:  newStock,
	}

	switch {
	case previousStock == 0 && newStock > 0:
		alert.AlertType = model.AlertBackInStock
		s.notifier.SendStockAlert(alert)
		s.notifier.NotifyBackInStock(product.ID)
		return true
	case previousStock > 0 && newStock == 0:
		alert.AlertType = model.AlertOutOfStock
		s.notifier.SendStockAlert(alert)
		return true
	case previousStock > s.cfg.LowStockThreshold && newStock <= s.cfg.LowStockThreshold && newStock > 0:
		alert.AlertType = model.AlertLowStock
		s.notifier.SendStockAlert(alert)
		return true
	}
	return false
}

// GetRestockSuggestions projects days-until-stockout from the trailing sales
// window and flags products with less runway than the configured threshold,
// soonest stockout first. Zero-velocity products have infinite runway and are
// never flagged.
func (s *inventoryService) GetRestockSuggestions(days int) ([]RestockSuggestion, error) {
	if days <= 0 {
		days = s.cfg.RestockHorizonDays
	}

	sold, err := s.orderRepo.SoldQuantitiesSince(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, apperr.Wrap("restock_suggestions", err)
	}

	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap("restock_suggestions", err)
	}

	var suggestions []RestockSuggestion
	for _, product := range products {
		totalSold := sold[product.ID]
		if totalSold == 0 {
			continue
		}

		velocity := float64(totalSold) / float64(days)
		runway := int(math.Floor(float64(product.Stock) / velocity))
		if runway >= s.cfg.RestockRunwayDays {
			continue
		}

		suggestions = append(suggestions, RestockSuggestion{
			ProductID:           product.ID,
			SKU:                 product.SKU,
			NameEn:              product.NameEn,
			NameAr:              product.NameAr,
			CurrentStock:        product.Stock,
			DailyVelocity:       velocity,
			DaysUntilOutOfStock: runway,
			SuggestedQuantity:   int(math.Ceil(velocity * float64(s.cfg.RestockHorizonDays))),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].DaysUntilOutOfStock < suggestions[j].DaysUntilOutOfStock
	})
	return suggestions, nil
}

func (s *inventoryService) GetStockHistory(productID uuid.UUID, limit int) ([]model.StockHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product", "product %s not found", productID)
		}
		return nil, apperr.Wrap("product", err)
	}
	entries, err := s.historyRepo.FindByProduct(productID, limit)
	return entries, apperr.Wrap("stock_history", err)
}
