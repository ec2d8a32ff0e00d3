package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nravish/kanakam-backend/config"
	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/db"
	"github.com/nravish/kanakam-backend/internal/pricing"
)

// Imports a catalog workbook. Sheet "Products" holds one product per row;
// an optional "Stones" sheet lists stones keyed by product name.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d (skipped %d rows)\n", len(products), skipped)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			log.Printf("Failed to create product %q: %v", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", imported)
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := "Products"
	if idx, _ := f.GetSheetIndex(sheetName); idx < 0 {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	stonesByProduct, err := readStonesSheet(f)
	if err != nil {
		return nil, 0, err
	}

	var products []model.Product
	skipped := 0

	// Expected columns:
	// 0 name, 1 description, 2 category, 3 pricing_mode, 4 metal_weight,
	// 5 metal_purity, 6 making_charge_percent, 7 tax_percent,
	// 8 cost_price, 9 selling_price, 10 mrp, 11 stock_quantity
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 12 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			skipped++
			continue
		}

		mode := pricing.Mode(strings.ToLower(strings.TrimSpace(row[3])))
		if mode == "" {
			mode = pricing.ModeFixed
		}
		if !pricing.ValidMode(mode) {
			log.Printf("Row %d: unknown pricing mode %q, skipping", i+1, row[3])
			skipped++
			continue
		}

		product := model.Product{
			Name:                name,
			Description:         strings.TrimSpace(row[1]),
			Category:            parseCategory(row[2]),
			PricingMode:         mode,
			MetalWeight:         parseCell(row[4]),
			MetalPurity:         pricing.Purity(strings.TrimSpace(row[5])),
			MakingChargePercent: parseCell(row[6]),
			TaxPercent:          parseCell(row[7]),
			CostPrice:           parseCell(row[8]),
			SellingPrice:        parseCell(row[9]),
			MRP:                 parseCell(row[10]),
		}
		if qty, err := strconv.Atoi(strings.TrimSpace(row[11])); err == nil {
			product.StockQuantity = qty
		}
		product.Price = product.SellingPrice

		// Run mounted stones through the collection so stored totals are
		// derived, not trusted from the sheet.
		collection := pricing.NewCollection()
		for _, in := range stonesByProduct[name] {
			if _, err := collection.Add(in); err != nil {
				log.Printf("Row %d: bad stone for %q: %v", i+1, name, err)
			}
		}
		product.SetStones(collection.Stones())

		if err := pricing.ValidateCommit(pricing.Commercial{
			Mode:         product.PricingMode,
			MetalWeight:  product.MetalWeight,
			CostPrice:    product.CostPrice,
			SellingPrice: product.SellingPrice,
			MRP:          product.MRP,
		}); err != nil {
			log.Printf("Row %d: %q fails pricing validation: %v, skipping", i+1, name, err)
			skipped++
			continue
		}

		products = append(products, product)
	}

	return products, skipped, nil
}

// readStonesSheet reads the optional "Stones" sheet:
// 0 product_name, 1 type, 2 quality, 3 weight, 4 unit_price, 5 color,
// 6 cut, 7 setting
func readStonesSheet(f *excelize.File) (map[string][]pricing.StoneInput, error) {
	if idx, _ := f.GetSheetIndex("Stones"); idx < 0 {
		return nil, nil
	}

	rows, err := f.GetRows("Stones")
	if err != nil {
		return nil, fmt.Errorf("failed to read Stones sheet: %w", err)
	}

	stones := make(map[string][]pricing.StoneInput)
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		in := pricing.StoneInput{
			Type:      pricing.StoneType(strings.ToLower(strings.TrimSpace(row[1]))),
			Quality:   strings.TrimSpace(row[2]),
			Weight:    parseCell(row[3]),
			UnitPrice: parseCell(row[4]),
		}
		if len(row) > 5 {
			in.Color = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			in.Cut = strings.TrimSpace(row[6])
		}
		if len(row) > 7 {
			in.Setting = strings.TrimSpace(row[7])
		}
		stones[name] = append(stones[name], in)
	}
	return stones, nil
}

func parseCategory(cell string) model.ProductCategory {
	category := model.ProductCategory(strings.ToLower(strings.TrimSpace(cell)))
	switch category {
	case model.CategoryRing, model.CategoryNecklace, model.CategoryEarring,
		model.CategoryBangle, model.CategoryChain, model.CategoryPendant:
		return category
	default:
		return model.CategoryOther
	}
}

func parseCell(cell string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(cell))
	if err != nil {
		return decimal.Zero
	}
	return d
}
