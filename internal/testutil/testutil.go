package testutil

import (
	"context"
	"database/sql"
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"

	"droneFoodDelivery/internal/db"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// The DB is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache keeps the database alive for as long as the pool holds a connection.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// Fixture holds the reference rows most lifecycle tests need.
type Fixture struct {
	Customer   *models.Customer
	Restaurant *models.Restaurant
	Location   *models.Location
	// Burger costs 8.50 and weighs 0.4 kg, Soda costs 2.25 and weighs 0.5 kg.
	Burger *models.MenuItem
	Soda   *models.MenuItem
	// Retired is an inactive item of the same restaurant.
	Retired *models.MenuItem
	// Foreign belongs to a second restaurant.
	Foreign *models.MenuItem
}

// Seed creates one customer, two restaurants roughly 1.1 km from the delivery
// location, and a small menu.
func Seed(t *testing.T, r *repository.Repos) *Fixture {
	t.Helper()
	ctx := context.Background()
	f := &Fixture{}
	var err error

	if f.Customer, err = r.Customers.Create(ctx, &models.Customer{Name: "Ada", Username: "ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if f.Restaurant, err = r.Restaurants.Create(ctx, &models.Restaurant{Name: "Grill House", Location: "Main St", Lat: 52.5200, Lng: 13.4050}); err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	other, err := r.Restaurants.Create(ctx, &models.Restaurant{Name: "Noodle Bar", Location: "Side St", Lat: 52.5210, Lng: 13.4100})
	if err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	cid := f.Customer.ID
	if f.Location, err = r.Locations.Create(ctx, &models.Location{CustomerID: &cid, Label: "home", Address: "Park Ave 1", Lat: 52.5300, Lng: 13.4050}); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	if f.Burger, err = r.Menu.Create(ctx, &models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Burger", Price: 8.50, WeightKg: 0.4}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if f.Soda, err = r.Menu.Create(ctx, &models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Soda", Price: 2.25, WeightKg: 0.5}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if f.Retired, err = r.Menu.Create(ctx, &models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Old Special", Price: 5, WeightKg: 0.3, Status: models.MenuItemInactive}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	if f.Foreign, err = r.Menu.Create(ctx, &models.MenuItem{RestaurantID: other.ID, Name: "Ramen", Price: 11, WeightKg: 0.8}); err != nil {
		t.Fatalf("seed menu: %v", err)
	}
	return f
}

// AddDrone creates an Available drone.
func AddDrone(t *testing.T, r *repository.Repos, serial string, capacityKg, rangeKm float64) *models.Drone {
	t.Helper()
	d, err := r.Drones.Create(context.Background(), &models.Drone{SerialNumber: serial, Name: serial, CapacityKg: capacityKg, MaxHeightM: 120, RangeKm: rangeKm})
	if err != nil {
		t.Fatalf("seed drone: %v", err)
	}
	return d
}

// GenerateJWTHS256 returns a signed JWT string with minimal claims used by the app.
func GenerateJWTHS256(t *testing.T, secret, name, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"kind": kind,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// CtxWithBearer returns a context containing gRPC metadata Authorization header with the given token.
func CtxWithBearer(ctx context.Context, token string) context.Context {
	md := metadata.Pairs("authorization", "Bearer "+token)
	return metadata.NewIncomingContext(ctx, md)
}
