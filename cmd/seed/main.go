package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/eatsplorer/eatsplorer-backend/config"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	"github.com/eatsplorer/eatsplorer-backend/internal/db"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// importSummary counts what happened to the sheet rows.
type importSummary struct {
	Rows               int
	Valid              int
	Skipped            int
	InvalidCoordinates int
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()
	conn := db.GetDB()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	inputs, summary, err := readEstablishmentsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", summary.Rows)
	fmt.Printf("  Valid establishments: %d\n", summary.Valid)
	fmt.Printf("  Skipped rows: %d\n", summary.Skipped)
	fmt.Printf("  Rows with invalid coordinates: %d\n", summary.InvalidCoordinates)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	ctx := context.Background()
	created, existing, err := importEstablishments(ctx, conn, inputs)
	if err != nil {
		log.Fatal("Failed to import establishments:", err)
	}
	fmt.Printf("Import completed: %d created, %d already present\n", created, existing)

	// ADMIN_USERNAME/ADMIN_PASSWORD bootstrap the admin used by /login
	username, password := os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD")
	if username != "" && password != "" {
		admin, err := service.NewAdminService(repository.NewAdminRepository(conn)).EnsureAdmin(ctx, username, password)
		if err != nil {
			log.Fatal("Failed to ensure admin:", err)
		}
		fmt.Printf("Admin %q ready (id %d)\n", admin.Username, admin.ID)
	}
}

// importEstablishments creates every input whose name is not stored yet.
// Creation goes through the service so unlinked ratings are adopted.
func importEstablishments(ctx context.Context, conn *gorm.DB, inputs []service.EstablishmentInput) (created, existing int, err error) {
	repo := repository.NewEstablishmentRepository(conn)
	svc := service.NewEstablishmentService(conn)

	for i, input := range inputs {
		_, err := repo.FindByName(ctx, input.Name, false)
		if err == nil {
			existing++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, existing, err
		}
		if _, err := svc.Create(ctx, input); err != nil {
			return created, existing, fmt.Errorf("row for %q: %w", input.Name, err)
		}
		created++

		if (i+1)%500 == 0 {
			fmt.Printf("Processed %d establishments...\n", i+1)
		}
	}
	return created, existing, nil
}

// readEstablishmentsFromXLSX reads the first sheet. Columns are matched by
// header name (feName, barangay, description, location, phone, email,
// latitude, longitude, <day>_opening, <day>_closing) in any order.
func readEstablishmentsFromXLSX(filePath string) ([]service.EstablishmentInput, importSummary, error) {
	var summary importSummary

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, summary, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, summary, fmt.Errorf("no data found in XLSX file")
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns["fename"]; !ok {
		return nil, summary, fmt.Errorf("missing feName column")
	}
	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var inputs []service.EstablishmentInput
	seen := make(map[string]bool)

	for _, row := range rows[1:] {
		summary.Rows++

		name := cell(row, "fename")
		if !isValidName(name) || seen[strings.ToLower(name)] {
			summary.Skipped++
			continue
		}

		input := service.EstablishmentInput{
			Name:        name,
			Barangay:    cell(row, "barangay"),
			Description: cell(row, "description"),
			Location:    cell(row, "location"),
			Phone:       cell(row, "phone"),
			Email:       cell(row, "email"),
		}

		// Coordinates are optional, but a half or unparsable pair is dropped
		latStr, lngStr := cell(row, "latitude"), cell(row, "longitude")
		if latStr != "" || lngStr != "" {
			lat, errLat := strconv.ParseFloat(latStr, 64)
			lng, errLng := strconv.ParseFloat(lngStr, 64)
			if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
				summary.InvalidCoordinates++
			} else {
				input.Latitude, input.Longitude = lat, lng
			}
		}

		for _, day := range model.Weekdays {
			opening, closing := input.Hours.Slot(day)
			*opening = cell(row, day+"_opening")
			*closing = cell(row, day+"_closing")
		}

		seen[strings.ToLower(name)] = true
		inputs = append(inputs, input)
		summary.Valid++
	}

	return inputs, summary, nil
}

// isValidName rejects blank names and names made only of digits or punctuation.
func isValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127 {
			return true
		}
	}
	return false
}
