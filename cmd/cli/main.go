package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alextreichler/tiffin/internal/config"
	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/report"
	"github.com/alextreichler/tiffin/internal/sales"
	"github.com/alextreichler/tiffin/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const usage = "expected 'add-user', 'seed-menu' or 'report' subcommand"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")

	seedCmd := flag.NewFlagSet("seed-menu", flag.ExitOnError)

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	month := reportCmd.String("month", "", "Month to report as YYYY-MM (default: current month)")
	format := reportCmd.String("format", "csv", "Output format: csv or xlsx")
	out := reportCmd.String("out", "", "Output file (default: sales-report-YYYY-MM.<format>, '-' for stdout)")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		createUser(ctx, db, *username, *password)
	case "seed-menu":
		seedCmd.Parse(os.Args[2:])
		if err := menu.NewService(db, nil).Initialize(ctx); err != nil {
			log.Fatalf("Failed to seed menu: %v", err)
		}
		fmt.Println("Menu ready.")
	case "report":
		reportCmd.Parse(os.Args[2:])
		if err := writeReport(ctx, db, cfg.Location, *month, *format, *out); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createUser(ctx context.Context, db *store.Store, username, password string) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	err = db.CreateUser(ctx, username, string(hashedPassword))
	if errors.Is(err, store.ErrUserExists) {
		log.Fatalf("User '%s' already exists.", username)
	}
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' created successfully.\n", username)
}

func writeReport(ctx context.Context, db *store.Store, loc *time.Location, month, format, out string) error {
	now := time.Now().In(loc)
	year, mon := now.Year(), now.Month()
	if month != "" {
		y, m, err := report.ParseMonth(month)
		if err != nil {
			return err
		}
		year, mon = y, m
	}

	format = strings.ToLower(format)
	var write func(io.Writer, *report.Monthly, *time.Location) error
	switch format {
	case "csv":
		write = report.WriteCSV
	case "xlsx":
		write = report.WriteXLSX
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	monthly, err := report.Build(ctx, sales.NewLog(db, loc), year, mon)
	if err != nil {
		return err
	}

	if out == "-" {
		return write(os.Stdout, monthly, loc)
	}
	if out == "" {
		out = monthly.Filename(format)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := write(f, monthly, loc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %d orders to %s\n", monthly.Summary.TotalOrders, out)
	return nil
}
