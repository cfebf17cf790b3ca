// Package seed loads a demo catalog and drone fleet into an empty store.
package seed

import (
	"context"
	"fmt"

	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

// Config controls how much demo data is created.
type Config struct {
	Drones int
	// SerialPrefix is followed by a three digit sequence number.
	SerialPrefix string
}

// Result lists the rows present after seeding.
type Result struct {
	Customers   []models.Customer
	Restaurants []models.Restaurant
	Menu        []models.MenuItem
	Drones      []models.Drone
}

type restaurantSeed struct {
	restaurant models.Restaurant
	menu       []models.MenuItem
}

var restaurants = []restaurantSeed{
	{
		restaurant: models.Restaurant{Name: "Grill House", Location: "Unter den Linden 5", Contact: "+49 30 1000", Lat: 52.5170, Lng: 13.3889},
		menu: []models.MenuItem{
			{Name: "Classic Burger", Description: "Beef, cheddar, pickles", Price: 8.50, WeightKg: 0.40},
			{Name: "Fries", Price: 3.20, WeightKg: 0.25},
			{Name: "Lemonade", Price: 2.80, WeightKg: 0.50},
		},
	},
	{
		restaurant: models.Restaurant{Name: "Noodle Bar", Location: "Kastanienallee 12", Contact: "+49 30 2000", Lat: 52.5380, Lng: 13.4100},
		menu: []models.MenuItem{
			{Name: "Ramen", Description: "Pork broth, egg", Price: 11.00, WeightKg: 0.80},
			{Name: "Gyoza", Price: 5.50, WeightKg: 0.30},
		},
	},
}

var customers = []struct {
	customer models.Customer
	home     models.Location
}{
	{
		customer: models.Customer{Name: "Ada Lovelace", Username: "ada", Email: "ada@example.com", Phone: "+49 151 100"},
		home:     models.Location{Label: "home", Address: "Torstrasse 1", Lat: 52.5290, Lng: 13.4010},
	},
	{
		customer: models.Customer{Name: "Alan Turing", Username: "alan", Email: "alan@example.com", Phone: "+49 151 200"},
		home:     models.Location{Label: "office", Address: "Friedrichstrasse 100", Lat: 52.5200, Lng: 13.3880},
	},
}

// Run seeds the catalog when no restaurant exists yet and tops the fleet up
// to cfg.Drones drones. It is safe to run repeatedly.
func Run(ctx context.Context, store *repository.Store, cfg Config) (*Result, error) {
	if cfg.SerialPrefix == "" {
		cfg.SerialPrefix = "DRN"
	}
	err := store.InTx(ctx, func(r *repository.Repos) error {
		existing, err := r.Restaurants.List(ctx)
		if err != nil {
			return fmt.Errorf("list restaurants: %w", err)
		}
		if len(existing) == 0 {
			if err := seedCatalog(ctx, r); err != nil {
				return err
			}
		}
		return seedFleet(ctx, r, cfg)
	})
	if err != nil {
		return nil, err
	}
	return collect(ctx, store.Repos())
}

func seedCatalog(ctx context.Context, r *repository.Repos) error {
	for _, s := range restaurants {
		rs := s.restaurant
		created, err := r.Restaurants.Create(ctx, &rs)
		if err != nil {
			return fmt.Errorf("create restaurant %q: %w", rs.Name, err)
		}
		for _, m := range s.menu {
			m.RestaurantID = created.ID
			if _, err := r.Menu.Create(ctx, &m); err != nil {
				return fmt.Errorf("create menu item %q: %w", m.Name, err)
			}
		}
	}
	for _, s := range customers {
		if c, err := r.Customers.GetByUsername(ctx, s.customer.Username); err != nil {
			return fmt.Errorf("lookup customer %q: %w", s.customer.Username, err)
		} else if c != nil {
			continue
		}
		c := s.customer
		created, err := r.Customers.Create(ctx, &c)
		if err != nil {
			return fmt.Errorf("create customer %q: %w", c.Username, err)
		}
		loc := s.home
		loc.CustomerID = &created.ID
		if _, err := r.Locations.Create(ctx, &loc); err != nil {
			return fmt.Errorf("create location for %q: %w", c.Username, err)
		}
	}
	return nil
}

func seedFleet(ctx context.Context, r *repository.Repos, cfg Config) error {
	for i := 1; i <= cfg.Drones; i++ {
		serial := fmt.Sprintf("%s-%03d", cfg.SerialPrefix, i)
		d, err := r.Drones.GetBySerial(ctx, serial)
		if err != nil {
			return fmt.Errorf("lookup drone %s: %w", serial, err)
		}
		if d != nil {
			continue
		}
		// Alternate light short-range and heavy long-range airframes.
		capacity, rangeKm := 2.5, 8.0
		if i%2 == 0 {
			capacity, rangeKm = 6.0, 20.0
		}
		if _, err := r.Drones.Create(ctx, &models.Drone{
			SerialNumber: serial,
			Name:         fmt.Sprintf("Courier %d", i),
			CapacityKg:   capacity,
			MaxHeightM:   120,
			RangeKm:      rangeKm,
		}); err != nil {
			return fmt.Errorf("create drone %s: %w", serial, err)
		}
	}
	return nil
}

func collect(ctx context.Context, r *repository.Repos) (*Result, error) {
	res := &Result{}
	var err error
	if res.Customers, err = r.Customers.List(ctx, 100, 0); err != nil {
		return nil, err
	}
	if res.Restaurants, err = r.Restaurants.List(ctx); err != nil {
		return nil, err
	}
	for _, rs := range res.Restaurants {
		items, err := r.Menu.ListActive(ctx, rs.ID)
		if err != nil {
			return nil, err
		}
		res.Menu = append(res.Menu, items...)
	}
	if res.Drones, err = r.Drones.List(ctx, repository.ListDronesParams{PageSize: 100}); err != nil {
		return nil, err
	}
	return res, nil
}
