package service

import (
	"fmt"
	"log"

	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"
	"lilium-backend/internal/ws"

	"github.com/google/uuid"
)

// StockAlert carries everything a delivery channel needs to render a
// threshold-crossing alert in both languages.
type StockAlert struct {
	ProductID     uuid.UUID            `json:"product_id"`
	ProductNameEn string               `json:"product_name_en"`
	ProductNameAr string               `json:"product_name_ar"`
	CurrentStock  int                  `json:"current_stock"`
	AlertType     model.StockAlertType `json:"alert_type"`
}

// Notifier dispatches stock alerts. Implementations are fire-and-forget: a
// delivery failure must never abort the stock mutation that produced it.
type Notifier interface {
	SendStockAlert(alert StockAlert)
	NotifyBackInStock(productID uuid.UUID)
}

// hubNotifier persists alerts as dashboard notifications and broadcasts them
// over the websocket hub.
type hubNotifier struct {
	notificationRepo repository.NotificationRepository
	subscriptionRepo repository.StockSubscriptionRepository
	wsHub            *ws.Hub
}

func NewHubNotifier(nRepo repository.NotificationRepository, sRepo repository.StockSubscriptionRepository, hub *ws.Hub) Notifier {
	return &hubNotifier{
		notificationRepo: nRepo,
		subscriptionRepo: sRepo,
		wsHub:            hub,
	}
}

func (n *hubNotifier) SendStockAlert(alert StockAlert) {
	go func() {
		productID := alert.ProductID
		notification := &model.Notification{
			Type:      string(alert.AlertType),
			Message:   fmt.Sprintf("%s: '%s' stock is %d", alert.AlertType, alert.ProductNameEn, alert.CurrentStock),
			MessageAr: fmt.Sprintf("%s: '%s' %d", alert.AlertType, alert.ProductNameAr, alert.CurrentStock),
			ProductID: &productID,
		}
		if err := n.notificationRepo.Create(notification); err != nil {
			log.Printf("notifier: failed to persist stock alert for %s: %v", alert.ProductID, err)
		}

		n.wsHub.BroadcastEvent("stock_alert", alert)
	}()
}

// NotifyBackInStock fans out to shoppers who asked to be told when the
// product returns, then marks their subscriptions consumed.
func (n *hubNotifier) NotifyBackInStock(productID uuid.UUID) {
	go func() {
		subs, err := n.subscriptionRepo.PendingByProduct(productID)
		if err != nil {
			log.Printf("notifier: failed to load subscriptions for %s: %v", productID, err)
			return
		}
		if len(subs) == 0 {
			return
		}

		userIDs := make([]string, len(subs))
		subIDs := make([]uuid.UUID, len(subs))
		for i, sub := range subs {
			userIDs[i] = sub.UserID.String()
			subIDs[i] = sub.ID
		}

		n.wsHub.BroadcastEvent("back_in_stock", map[string]interface{}{
			"product_id": productID,
			"user_ids":   userIDs,
		})

		if err := n.subscriptionRepo.MarkNotified(subIDs); err != nil {
			log.Printf("notifier: failed to mark subscriptions notified for %s: %v", productID, err)
		}
	}()
}
