package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"droneFoodDelivery/internal/auth"
	"droneFoodDelivery/internal/config"
	"droneFoodDelivery/internal/db"
	"droneFoodDelivery/internal/seed"
	"droneFoodDelivery/repository"
)

func main() {
	var (
		drones   = flag.Int("drones", 4, "number of drones the fleet should have")
		prefix   = flag.String("prefix", "DRN", "drone serial number prefix")
		tokens   = flag.Bool("tokens", false, "print a bearer token for every drone")
		tokenTTL = flag.Duration("token-ttl", 24*time.Hour, "lifetime of printed tokens")
	)
	flag.Parse()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	res, err := seed.Run(ctx, repository.NewStore(d, cfg.Database.Timeout), seed.Config{Drones: *drones, SerialPrefix: *prefix})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("dataset ready in %s (db=%s)", time.Since(start), cfg.Database.Path)

	restaurants := make([][]string, 0, len(res.Restaurants))
	for _, r := range res.Restaurants {
		restaurants = append(restaurants, []string{id(r.ID), r.Name, r.Location, coord(r.Lat, r.Lng)})
	}
	render("Restaurants", []string{"ID", "Name", "Address", "Position"}, restaurants)

	menu := make([][]string, 0, len(res.Menu))
	for _, m := range res.Menu {
		menu = append(menu, []string{id(m.ID), id(m.RestaurantID), m.Name, fmt.Sprintf("%.2f", m.Price), fmt.Sprintf("%.2f", m.WeightKg)})
	}
	render("Menu", []string{"ID", "Restaurant", "Name", "Price", "Weight kg"}, menu)

	customers := make([][]string, 0, len(res.Customers))
	for _, c := range res.Customers {
		customers = append(customers, []string{id(c.ID), c.Username, c.Name, c.Email})
	}
	render("Customers", []string{"ID", "Username", "Name", "Email"}, customers)

	header := []string{"ID", "Serial", "Capacity kg", "Range km", "Status"}
	if *tokens {
		header = append(header, "Token")
	}
	fleet := make([][]string, 0, len(res.Drones))
	for _, dr := range res.Drones {
		row := []string{id(dr.ID), dr.SerialNumber, fmt.Sprintf("%.1f", dr.CapacityKg), fmt.Sprintf("%.1f", dr.RangeKm), string(dr.Status)}
		if *tokens {
			tok, err := auth.IssueToken(cfg.Auth.JWTSecret, dr.SerialNumber, auth.KindDrone, *tokenTTL)
			if err != nil {
				log.Fatalf("issue token for %s: %v", dr.SerialNumber, err)
			}
			row = append(row, tok)
		}
		fleet = append(fleet, row)
	}
	render("Drones", header, fleet)
}

func render(title string, header []string, rows [][]string) {
	fmt.Printf("\n%s\n", title)
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		log.Printf("render %s: %v", title, err)
		return
	}
	if err := table.Render(); err != nil {
		log.Printf("render %s: %v", title, err)
	}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func coord(lat, lng float64) string { return fmt.Sprintf("%.4f, %.4f", lat, lng) }
