package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"droneFoodDelivery/internal/db"
	"droneFoodDelivery/models"
)

func openRepoDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// seedOrder creates the customer, restaurant and location an order needs.
func seedOrder(t *testing.T, r *Repos) *models.Order {
	t.Helper()
	ctx := context.Background()
	c, err := r.Customers.Create(ctx, &models.Customer{Name: "c", Username: "c"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	rs, err := r.Restaurants.Create(ctx, &models.Restaurant{Name: "r"})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	l, err := r.Locations.Create(ctx, &models.Location{Label: "home"})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	o, err := r.Orders.Create(ctx, &models.Order{CustomerID: c.ID, RestaurantID: rs.ID, LocationID: l.ID})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestDroneRepository_CRUD_ClaimRelease(t *testing.T) {
	d := openRepoDB(t, "dronerepo")
	drones := NewDroneRepository(d)
	ctx := context.Background()

	dr, err := drones.Create(ctx, &models.Drone{SerialNumber: "S-1", Name: "alpha", CapacityKg: 5, RangeKm: 10})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	if dr.ID == 0 || dr.Status != models.DroneStatusAvailable {
		t.Fatalf("unexpected drone: %+v", dr)
	}
	if got, _ := drones.GetBySerial(ctx, "S-1"); got == nil || got.ID != dr.ID {
		t.Fatalf("GetBySerial mismatch: %+v", got)
	}
	if got, _ := drones.GetByID(ctx, 999); got != nil {
		t.Fatalf("expected nil for unknown drone, got %+v", got)
	}

	ok, err := drones.Claim(ctx, dr.ID)
	if err != nil || !ok {
		t.Fatalf("claim: ok=%v err=%v", ok, err)
	}
	// Second claim must lose.
	ok, err = drones.Claim(ctx, dr.ID)
	if err != nil || ok {
		t.Fatalf("second claim: ok=%v err=%v", ok, err)
	}
	got, _ := drones.GetByID(ctx, dr.ID)
	if got.Status != models.DroneStatusAssigned {
		t.Fatalf("want Assigned, got %s", got.Status)
	}

	ok, err = drones.Release(ctx, dr.ID)
	if err != nil || !ok {
		t.Fatalf("release: ok=%v err=%v", ok, err)
	}
	ok, _ = drones.Release(ctx, dr.ID)
	if ok {
		t.Fatalf("release of Available drone should report false")
	}
}

func TestDroneRepository_ListAvailableAndList(t *testing.T) {
	d := openRepoDB(t, "dronerepo_list")
	drones := NewDroneRepository(d)
	ctx := context.Background()

	small, _ := drones.Create(ctx, &models.Drone{SerialNumber: "A", Name: "small", CapacityKg: 1, RangeKm: 10})
	big, _ := drones.Create(ctx, &models.Drone{SerialNumber: "B", Name: "big", CapacityKg: 10, RangeKm: 10})
	retired, _ := drones.Create(ctx, &models.Drone{SerialNumber: "C", Name: "old", CapacityKg: 10, RangeKm: 10, Status: models.DroneStatusRetired})
	bigger, _ := drones.Create(ctx, &models.Drone{SerialNumber: "D", Name: "bigger", CapacityKg: 20, RangeKm: 10})

	got, err := drones.ListAvailable(ctx, 5)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(got) != 2 || got[0].ID != big.ID || got[1].ID != bigger.ID {
		t.Fatalf("unexpected eligible drones: %+v", got)
	}

	st := models.DroneStatusRetired
	list, err := drones.List(ctx, ListDronesParams{Status: &st})
	if err != nil || len(list) != 1 || list[0].ID != retired.ID {
		t.Fatalf("filter by status: %+v err=%v", list, err)
	}
	q := "big"
	list, _ = drones.List(ctx, ListDronesParams{NameOrSerialContains: &q})
	if len(list) != 2 {
		t.Fatalf("name filter: want 2, got %d", len(list))
	}
	list, _ = drones.List(ctx, ListDronesParams{PageSize: 2, AfterID: small.ID})
	if len(list) != 2 || list[0].ID != big.ID {
		t.Fatalf("keyset page: %+v", list)
	}
}

func TestDeliveryRepository_OpenAndComplete(t *testing.T) {
	d := openRepoDB(t, "deliveryrepo")
	repos := NewStore(d, 0).Repos()
	ctx := context.Background()

	ord := seedOrder(t, repos)
	ord2, err := repos.Orders.Create(ctx, &models.Order{CustomerID: ord.CustomerID, RestaurantID: ord.RestaurantID, LocationID: ord.LocationID})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	dr, _ := repos.Drones.Create(ctx, &models.Drone{SerialNumber: "S", CapacityKg: 1, RangeKm: 1})

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	del, err := repos.Deliveries.Create(ctx, &models.Delivery{OrderID: ord.ID, DroneID: dr.ID, StartTime: start})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if del.Status != models.DeliveryStatusInTransit {
		t.Fatalf("default status: %s", del.Status)
	}

	// A drone cannot fly two open deliveries.
	if _, err := repos.Deliveries.Create(ctx, &models.Delivery{OrderID: ord2.ID, DroneID: dr.ID, StartTime: start}); err == nil {
		t.Fatalf("expected unique violation for second open delivery")
	}

	open, err := repos.Deliveries.GetOpenByDrone(ctx, dr.ID)
	if err != nil || open == nil || open.ID != del.ID {
		t.Fatalf("open delivery: %+v err=%v", open, err)
	}
	if !open.StartTime.Equal(start) || open.EndTime != nil {
		t.Fatalf("times: %+v", open)
	}

	end := start.Add(15 * time.Minute)
	ok, err := repos.Deliveries.Complete(ctx, del.ID, end)
	if err != nil || !ok {
		t.Fatalf("complete: ok=%v err=%v", ok, err)
	}
	ok, _ = repos.Deliveries.Complete(ctx, del.ID, end)
	if ok {
		t.Fatalf("completing twice should report false")
	}
	got, _ := repos.Deliveries.GetByOrderID(ctx, ord.ID)
	if got.Status != models.DeliveryStatusCompleted || got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Fatalf("completed delivery: %+v", got)
	}
	if open, _ := repos.Deliveries.GetOpenByDrone(ctx, dr.ID); open != nil {
		t.Fatalf("expected no open delivery, got %+v", open)
	}

	// Once the first delivery is closed the drone can fly again.
	if _, err := repos.Deliveries.Create(ctx, &models.Delivery{OrderID: ord2.ID, DroneID: dr.ID, StartTime: end}); err != nil {
		t.Fatalf("second delivery after completion: %v", err)
	}
	log, _ := repos.Deliveries.ListByDrone(ctx, dr.ID)
	if len(log) != 2 || log[0].OrderID != ord2.ID {
		t.Fatalf("delivery log: %+v", log)
	}
}

func TestDeliveryRepository_EndTimeRequiresCompleted(t *testing.T) {
	d := openRepoDB(t, "deliveryrepo_check")
	repos := NewStore(d, 0).Repos()
	ctx := context.Background()
	ord := seedOrder(t, repos)
	dr, _ := repos.Drones.Create(ctx, &models.Drone{SerialNumber: "S", CapacityKg: 1, RangeKm: 1})

	_, err := d.ExecContext(ctx, `INSERT INTO deliveries (order_id, drone_id, status, start_time, end_time) VALUES (?,?,?,?,?)`,
		ord.ID, dr.ID, "InTransit", time.Now().UTC(), time.Now().UTC())
	if err == nil {
		t.Fatalf("expected check constraint failure")
	}
}
