package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"rentroll-cloud/internal/migrations"
)

type config struct {
	dsn        string
	ownerEmail string
	password   string
	houses     int
	rooms      int
	months     int
	migrate    bool
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.houses <= 0 || cfg.rooms <= 0 {
		log.Fatal("houses and rooms must be > 0")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if cfg.migrate {
		if err := migrations.Up(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	ownerID, err := seedOwner(ctx, db, cfg.ownerEmail, cfg.password)
	if err != nil {
		log.Fatalf("seed owner: %v", err)
	}
	log.Printf("owner ready: %s (%s)", cfg.ownerEmail, ownerID)

	contracts, err := seedPortfolio(ctx, db, ownerID, cfg.houses, cfg.rooms)
	if err != nil {
		log.Fatalf("seed portfolio: %v", err)
	}
	log.Printf("seeded %d houses, %d rooms per house, %d contracts", cfg.houses, cfg.rooms, len(contracts))

	invoices, err := seedInvoices(ctx, db, contracts, cfg.months)
	if err != nil {
		log.Fatalf("seed invoices: %v", err)
	}
	log.Printf("seeded %d invoices over %d months", invoices, cfg.months)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "dsn", getenvDefault("DATABASE_URL", ""), "postgres dsn")
	flag.StringVar(&cfg.ownerEmail, "owner-email", "demo@rentroll.local", "demo owner email")
	flag.StringVar(&cfg.password, "password", "demo-password", "demo owner password")
	flag.IntVar(&cfg.houses, "houses", 2, "houses to seed")
	flag.IntVar(&cfg.rooms, "rooms", 4, "rooms per house")
	flag.IntVar(&cfg.months, "months", 3, "months of invoice history")
	flag.BoolVar(&cfg.migrate, "migrate", true, "apply migrations first")
	flag.Parse()
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func seedOwner(ctx context.Context, db *sql.DB, email, password string) (string, error) {
	var existing string
	err := db.QueryRowContext(ctx, `SELECT user_id FROM users WHERE email = $1`, email).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	ownerID := "owner-" + uuid.NewString()
	_, err = db.ExecContext(ctx, `
INSERT INTO users (user_id, email, name, password_hash, role, created_at)
VALUES ($1,$2,$3,$4,'owner',$5)`,
		ownerID, email, "Demo Owner", string(hash), time.Now().UTC())
	return ownerID, err
}

type seededContract struct {
	rrID                  string
	unitPrice             float64
	initialElectricityNum float64
	monthlyRent           float64
	waterPrice            float64
	internetPrice         float64
	generalPrice          float64
}

func seedPortfolio(ctx context.Context, db *sql.DB, ownerID string, houses, rooms int) ([]seededContract, error) {
	now := time.Now().UTC()
	var contracts []seededContract
	for h := 0; h < houses; h++ {
		houseID := "house-" + uuid.NewString()
		_, err := db.ExecContext(ctx, `
INSERT INTO houses (house_id, owner_id, name, address, created_at)
VALUES ($1,$2,$3,$4,$5)`,
			houseID, ownerID, fmt.Sprintf("Demo House %d", h+1), fmt.Sprintf("%d Demo Street", 10+h), now)
		if err != nil {
			return nil, err
		}
		for r := 0; r < rooms; r++ {
			roomID := "room-" + uuid.NewString()
			// Leave the last room of each house vacant.
			occupied := r < rooms-1
			_, err := db.ExecContext(ctx, `
INSERT INTO rooms (room_id, house_id, name, floor, area_m2, is_occupied, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				roomID, houseID, fmt.Sprintf("%d0%d", r/2+1, r%2+1), r/2+1, 18.0, occupied, now)
			if err != nil {
				return nil, err
			}
			if !occupied {
				continue
			}
			contract := seededContract{
				rrID:          "rr-" + uuid.NewString(),
				unitPrice:     3500,
				monthlyRent:   2500000,
				waterPrice:    80000,
				internetPrice: 100000,
				generalPrice:  100000,
			}
			_, err = db.ExecContext(ctx, `
INSERT INTO contracts (
	rr_id, room_id, tenant_name, tenant_phone, start_date,
	monthly_rent, electricity_price, water_price, internet_price, general_price,
	initial_electricity_num, is_active, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,TRUE,$12)`,
				contract.rrID, roomID, fmt.Sprintf("Tenant %d-%d", h+1, r+1), "0900000000",
				now.AddDate(0, -6, 0), contract.monthlyRent, contract.unitPrice,
				contract.waterPrice, contract.internetPrice, contract.generalPrice,
				contract.initialElectricityNum, now)
			if err != nil {
				return nil, err
			}
			contracts = append(contracts, contract)
		}
	}
	return contracts, nil
}

func seedInvoices(ctx context.Context, db *sql.DB, contracts []seededContract, months int) (int, error) {
	if months <= 0 {
		months = 3
	}
	count := 0
	now := time.Now().UTC()
	for _, contract := range contracts {
		for m := months; m >= 1; m-- {
			due := time.Date(now.Year(), now.Month(), 5, 0, 0, 0, 0, time.UTC).AddDate(0, -m+1, 0)
			usage := 100.0 + float64(m*7%40)
			isPaid := m > 1
			var paymentDate any
			if isPaid {
				paymentDate = due.AddDate(0, 0, 2)
			}
			_, err := db.ExecContext(ctx, `
INSERT INTO invoices (
	invoice_id, rr_id, price, water_price, internet_price, general_price,
	electricity_price, electricity_num, due_date, is_paid, payment_date, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
				"inv-"+uuid.NewString(), contract.rrID,
				contract.monthlyRent, contract.waterPrice, contract.internetPrice, contract.generalPrice,
				usage*contract.unitPrice, usage, due, isPaid, paymentDate, due.AddDate(0, 0, -3))
			if err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
