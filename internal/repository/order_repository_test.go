package repository

import (
	"testing"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/models"
)

func createRepoOrder(t *testing.T, repo *GormOrderRepository, orderNo string, userID uint, paid bool, statuses ...string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        userID,
		Subtotal:      models.NewMoneyFromInt(1000),
		ShippingCost:  models.NewMoneyFromInt(99),
		TotalAmount:   models.NewMoneyFromInt(1099),
		Currency:      "INR",
		PaymentMethod: constants.PaymentMethodCOD,
		IsPaid:        paid,
	}
	items := make([]models.OrderItem, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, models.OrderItem{
			ProductID:      1,
			VariantID:      1,
			ProductName:    "Phone",
			Price:          models.NewMoneyFromInt(1000),
			EffectivePrice: models.NewMoneyFromInt(1000),
			Quantity:       1,
			Status:         status,
			PaymentStatus:  constants.ItemPaymentStatusUnpaid,
		})
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderRepositoryCreateAndLoad(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_load")
	repo := NewOrderRepository(db)
	order := createRepoOrder(t, repo, "SO-1", 1, false, constants.OrderItemStatusPending, constants.OrderItemStatusPending)

	got, err := repo.GetByIDAndUser(order.ID, 1)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got == nil || len(got.Items) != 2 {
		t.Fatalf("order should load 2 items, got %+v", got)
	}
	if !got.AmountBalanced() {
		t.Fatalf("order amounts should be balanced")
	}

	other, err := repo.GetByIDAndUser(order.ID, 2)
	if err != nil || other != nil {
		t.Fatalf("foreign user must not load order, got %+v err=%v", other, err)
	}
}

func TestOrderRepositoryCountPaidByUser(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_paid")
	repo := NewOrderRepository(db)
	createRepoOrder(t, repo, "SO-P1", 5, true, constants.OrderItemStatusPending)
	createRepoOrder(t, repo, "SO-P2", 5, false, constants.OrderItemStatusPending)
	createRepoOrder(t, repo, "SO-P3", 6, true, constants.OrderItemStatusPending)

	count, err := repo.CountPaidByUser(5)
	if err != nil {
		t.Fatalf("count paid failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("paid count want 1 got %d", count)
	}
}

func TestOrderRepositoryListByItemStatus(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_status")
	repo := NewOrderRepository(db)
	createRepoOrder(t, repo, "SO-S1", 1, false, constants.OrderItemStatusPending, constants.OrderItemStatusShipped)
	createRepoOrder(t, repo, "SO-S2", 1, false, constants.OrderItemStatusDelivered)
	createRepoOrder(t, repo, "SO-S3", 2, false, constants.OrderItemStatusShipped)

	rows, total, err := repo.ListAdmin(OrderListFilter{Page: 1, PageSize: 10, ItemStatus: constants.OrderItemStatusShipped})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("shipped filter want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.ListByUser(OrderListFilter{Page: 1, PageSize: 10, UserID: 1})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || rows[0].OrderNo != "SO-S2" {
		t.Fatalf("user list mismatch total=%d first=%s", total, rows[0].OrderNo)
	}

	empty, total, err := repo.ListByUser(OrderListFilter{Page: 1, PageSize: 10})
	if err != nil || total != 0 || len(empty) != 0 {
		t.Fatalf("list without user should be empty")
	}
}

func TestOrderRepositoryUpdateItemsByOrder(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo_items")
	repo := NewOrderRepository(db)
	order := createRepoOrder(t, repo, "SO-U1", 1, false, constants.OrderItemStatusPending, constants.OrderItemStatusCancelled)

	if err := repo.UpdateItemsByOrder(order.ID, constants.OrderItemStatusPending, map[string]interface{}{
		"status": constants.OrderItemStatusPaymentFailed,
	}); err != nil {
		t.Fatalf("update items failed: %v", err)
	}
	items, err := repo.ListItems(order.ID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if items[0].Status != constants.OrderItemStatusPaymentFailed {
		t.Fatalf("pending item should be payment failed, got %s", items[0].Status)
	}
	if items[1].Status != constants.OrderItemStatusCancelled {
		t.Fatalf("cancelled item must stay cancelled, got %s", items[1].Status)
	}
}
