package repository

import (
	"context"
	"testing"
	"time"

	"droneFoodDelivery/models"
)

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	d := openRepoDB(t, "notificationrepo")
	notes := NewNotificationRepository(d)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 25; i++ {
		n, err := notes.Create(ctx, &models.Notification{CustomerID: 1, OrderID: int64(1 + i%2), Message: "m", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, n.ID)
	}
	if _, err := notes.Create(ctx, &models.Notification{CustomerID: 2, OrderID: 1, Message: "other"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	latest, err := notes.ListForCustomer(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list for customer: %v", err)
	}
	if len(latest) != 20 || latest[0].ID != ids[24] {
		t.Fatalf("want 20 newest first, got %d (first %d)", len(latest), latest[0].ID)
	}

	forOrder, err := notes.ListForOrder(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list for order: %v", err)
	}
	if len(forOrder) != 12 || forOrder[0].ID != ids[23] {
		t.Fatalf("order 2 notifications: %d", len(forOrder))
	}
	if none, _ := notes.ListForOrder(ctx, 2, 2); len(none) != 0 {
		t.Fatalf("other customer's notifications leaked: %+v", none)
	}

	ok, err := notes.MarkRead(ctx, ids[0])
	if err != nil || !ok {
		t.Fatalf("mark read: ok=%v err=%v", ok, err)
	}
	if ok, _ := notes.MarkRead(ctx, ids[0]); !ok {
		t.Fatalf("mark read should be repeatable")
	}
	if ok, _ := notes.MarkRead(ctx, 99999); ok {
		t.Fatalf("unknown id reported as marked")
	}
	n, _ := notes.GetByID(ctx, ids[0])
	if !n.IsRead || n.Message != "m" {
		t.Fatalf("notification: %+v", n)
	}
}
