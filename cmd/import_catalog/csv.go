package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var requiredColumns = []string{"code", "name", "sale_price"}

// catalogRow fila del CSV ya convertida; Category es el nombre, se resuelve al importar.
type catalogRow struct {
	Line     int
	Category string
	Product  dto.CreateProductRequest
}

// rowError error de una fila concreta; la importación continúa con las siguientes.
type rowError struct {
	Line int
	Err  error
}

func (e rowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

// parseCatalog lee el CSV con encabezado. Columnas: code, name, sale_price (obligatorias),
// purchase_price, minimum_stock, initial_stock, measurement_type, category, description.
// Exportaciones de Excel en Windows suelen venir en ISO-8859-1 y separadas por ';'.
func parseCatalog(r io.Reader, delimiter rune, latin1 bool) ([]catalogRow, []rowError, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("archivo vacío")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var rows []catalogRow
	var rowErrs []rowError
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, rowError{Line: line, Err: err})
			continue
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if get("code") == "" && get("name") == "" {
			continue
		}

		row := catalogRow{
			Line:     line,
			Category: get("category"),
			Product: dto.CreateProductRequest{
				Code:            get("code"),
				Name:            get("name"),
				Description:     get("description"),
				MeasurementType: strings.ToLower(get("measurement_type")),
			},
		}
		var perr error
		for _, f := range []struct {
			col string
			dst *decimal.Decimal
		}{
			{"sale_price", &row.Product.SalePrice},
			{"purchase_price", &row.Product.PurchasePrice},
			{"minimum_stock", &row.Product.MinimumStock},
			{"initial_stock", &row.Product.InitialStock},
		} {
			if *f.dst, perr = parseAmount(get(f.col)); perr != nil {
				perr = fmt.Errorf("%s: %w", f.col, perr)
				break
			}
		}
		if perr != nil {
			rowErrs = append(rowErrs, rowError{Line: line, Err: perr})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

// parseAmount acepta "1234.5" y "1234,5"; vacío = 0. Con ambos separadores el último es el decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
