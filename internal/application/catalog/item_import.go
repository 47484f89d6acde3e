package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/domain/catalog"
	"github.com/lookbook/backend/internal/domain/shared"
	csvimport "github.com/lookbook/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RowError describes a rejected import row
type RowError = csvimport.RowError

// Columns of a catalog CSV feed
const (
	colSKU      = "sku"
	colTitle    = "title"
	colPrice    = "price"
	colSizes    = "sizes"
	colCategory = "category"
	colColor    = "color"
	colMaterial = "material"
	colPattern  = "pattern"
	colOccasion = "occasion"
	colFit      = "fit"
	colPlusSize = "plus_size"
	colInStock  = "in_stock"
	colImageKey = "image_key"
)

const maxImportErrors = 100

var zeroPrice = decimal.Zero

// importColumns are the checks applied to catalog feed rows
var importColumns = []csvimport.Column{
	{Name: colSKU, Required: true, MaxLen: 64, Unique: true},
	{Name: colTitle, Required: true, MaxLen: 200},
	{Name: colPrice, Kind: csvimport.Decimal, Required: true, Min: &zeroPrice},
	{Name: colSizes, MaxLen: 100, Check: validateSizes},
	{Name: colCategory, MaxLen: 50},
	{Name: colColor, MaxLen: 50},
	{Name: colMaterial, MaxLen: 50},
	{Name: colPattern, MaxLen: 50},
	{Name: colOccasion, MaxLen: 50},
	{Name: colFit, MaxLen: 50},
	{Name: colPlusSize, Kind: csvimport.Bool},
	{Name: colInStock, Kind: csvimport.Bool},
	{Name: colImageKey, MaxLen: 500},
}

// ImportCSV bulk-loads a shop catalog feed.
// Invalid rows are reported and skipped; valid rows are saved in one batch.
// Rows whose SKU already exists are skipped unless UpdateExisting is set.
func (s *ItemService) ImportCSV(ctx context.Context, tenantID uuid.UUID, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	feed, err := csvimport.Open(r, csvimport.WithMaxRows(s.config.MaxImportRows))
	if err != nil {
		return nil, importFileError(err)
	}
	if missing := feed.Missing(colSKU, colTitle, colPrice); len(missing) > 0 {
		return nil, shared.NewDomainError(csvimport.ErrCodeImportMissingHeader,
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows, err := feed.Rows()
	if err != nil {
		return nil, importFileError(err)
	}

	validator := csvimport.NewRowValidator(importColumns, maxImportErrors)
	result := &ImportResult{TotalRows: len(rows)}
	batch := make([]*catalog.Item, 0, len(rows))

	for _, row := range rows {
		if !validator.Validate(row) {
			result.ErrorRows++
			continue
		}

		sku := strings.ToUpper(row.Get(colSKU))
		existing, err := s.itemRepo.FindBySKU(ctx, tenantID, sku)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && !opts.UpdateExisting {
			result.SkippedRows++
			continue
		}

		item, err := applyImportRow(tenantID, existing, row)
		if err != nil {
			validator.Log().Add(RowError{
				Row:     row.LineNumber,
				Code:    csvimport.ErrCodeImportInvalidValue,
				Message: err.Error(),
			})
			result.ErrorRows++
			continue
		}

		batch = append(batch, item)
		if existing != nil {
			result.UpdatedRows++
		} else {
			result.ImportedRows++
		}
	}

	if len(batch) > 0 {
		if err := s.itemRepo.SaveBatch(ctx, batch); err != nil {
			return nil, err
		}
	}

	errs := validator.Log()
	result.Errors = errs.Rows()
	result.IsTruncated = errs.Truncated()
	result.TotalErrors = errs.Total()

	s.logger.Info("Catalog import finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("updated", result.UpdatedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows),
	)

	return result, nil
}

// applyImportRow builds a new item or updates an existing one from a validated row
func applyImportRow(tenantID uuid.UUID, existing *catalog.Item, row *csvimport.Row) (*catalog.Item, error) {
	price, err := decimal.NewFromString(row.Get(colPrice))
	if err != nil {
		return nil, err
	}

	item := existing
	if item == nil {
		item, err = catalog.NewItem(tenantID, row.Get(colSKU), row.Get(colTitle), price)
		if err != nil {
			return nil, err
		}
	} else {
		if err := item.Update(row.Get(colTitle)); err != nil {
			return nil, err
		}
		if err := item.SetPrice(price); err != nil {
			return nil, err
		}
	}

	sizes, err := catalog.NewSizeSet(splitList(row.Get(colSizes))...)
	if err != nil {
		return nil, err
	}
	item.SetSizes(sizes)

	plusSize := false
	if v := row.Get(colPlusSize); v != "" {
		plusSize, _ = csvimport.ParseBool(v)
	}
	item.SetAttributes(catalog.VisionAttributes{
		Category: catalog.Category(row.Get(colCategory)),
		Color:    row.Get(colColor),
		Material: row.Get(colMaterial),
		Pattern:  row.Get(colPattern),
		Occasion: row.Get(colOccasion),
		Fit:      row.Get(colFit),
		PlusSize: plusSize,
	})

	if v := row.Get(colInStock); v != "" {
		inStock, _ := csvimport.ParseBool(v)
		item.SetStock(inStock)
	}
	if key := row.Get(colImageKey); key != "" {
		if err := item.SetImageKey(key); err != nil {
			return nil, err
		}
	}

	return item, nil
}

func validateSizes(value string) error {
	_, err := catalog.NewSizeSet(splitList(value)...)
	return err
}

// splitList splits a size list separated by pipes, semicolons or slashes
func splitList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == '|' || r == ';' || r == '/'
	})
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewDomainError(csvimport.ErrCodeImportInvalidFile, err.Error())
	case errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewDomainError(csvimport.ErrCodeImportMissingHeader, err.Error())
	default:
		return shared.NewDomainError(csvimport.ErrCodeImportInvalidFile, fmt.Sprintf("Failed to read CSV: %v", err))
	}
}
