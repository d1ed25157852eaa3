// Package pdf implementa la generación de recibos POS (venta y devolución)
// usando Maroto v2. Los archivos se escriben en disco y el caso de uso guarda
// la ruta resultante en la transacción.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + NIT  │  N° Recibo + Fecha                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuesto / TOTAL / Pagado   │
//	│  FOOTER: método de reembolso y motivo (solo devoluciones)    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger-api/internal/application/pos"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ pos.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa pos.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct {
	outputDir string
}

// NewReceiptGenerator construye el generador. outputDir se crea si no existe.
func NewReceiptGenerator(outputDir string) *ReceiptGenerator {
	return &ReceiptGenerator{outputDir: outputDir}
}

// RenderSaleReceipt genera el recibo de venta y devuelve la ruta del archivo.
func (g *ReceiptGenerator) RenderSaleReceipt(_ context.Context, data pos.ReceiptData) (string, error) {
	return g.render(data, "RECIBO DE VENTA", "recibo")
}

// RenderReturnReceipt genera el recibo de devolución y devuelve la ruta.
func (g *ReceiptGenerator) RenderReturnReceipt(_ context.Context, data pos.ReceiptData) (string, error) {
	return g.render(data, "RECIBO DE DEVOLUCIÓN", "devolucion")
}

func (g *ReceiptGenerator) render(data pos.ReceiptData, title, prefix string) (string, error) {
	companyName := "—"
	if data.Company != nil {
		companyName = data.Company.Name
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data, title))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(data.Lines) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data))
	if data.RefundMethod != "" || data.Reason != "" {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(refundFooterRow(data))
	}

	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("pdf: generar documento: %w", err)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: crear directorio: %w", err)
	}
	path := filepath.Join(g.outputDir, fmt.Sprintf("%s_%s.pdf", prefix, data.DocumentID))
	if err := os.WriteFile(path, doc.GetBytes(), 0o644); err != nil {
		return "", fmt.Errorf("pdf: escribir archivo: %w", err)
	}
	return path, nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + identificación fiscal (izq) y número + fecha (der).
func headerRow(data pos.ReceiptData, title string) core.Row {
	companyName, taxID := "—", "—"
	if data.Company != nil {
		companyName = data.Company.Name
		taxID = data.Company.TaxID
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+taxID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(data.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+data.Date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del recibo.
func tableDetailRows(lines []pos.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				l.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				l.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(l.UnitPrice.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"$"+formatMoney(l.TotalPrice.StringFixed(2)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(data pos.ReceiptData) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(d decimal.Decimal) core.Component {
		return text.New("$"+formatMoney(d.StringFixed(2)), props.Text{
			Size: 9, Align: align.Right, Right: 1,
		})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(d decimal.Decimal) core.Component {
		return text.New("$"+formatMoney(d.StringFixed(2)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(34).Add(
		col.New(3),
		col.New(3).Add(
			label("Subtotal:"),
			label("Descuento:"),
			label("Impuesto:"),
			grandLabel("TOTAL:"),
			label("Pagado:"),
			label("Cambio:"),
		),
		col.New(3).Add(
			value(data.Subtotal),
			value(data.Discount),
			value(data.Tax),
			grandValue(data.Total),
			value(data.Paid),
			value(data.Change),
		),
		col.New(3),
	)
}

// refundFooterRow: método de reembolso y motivo de la devolución.
func refundFooterRow(data pos.ReceiptData) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Reembolso: "+nonEmpty(data.RefundMethod, "—"), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Motivo: "+nonEmpty(data.Reason, "—"), props.Text{
				Size: 8, Top: 7, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en la parte entera de un string
// numérico con decimales separados por punto.
// Ej: "25000.00" → "25.000,00"
func formatMoney(s string) string {
	intPart, fracPart := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, fracPart = s[:i], s[i+1:]
			break
		}
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(fracPart)+1)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 && intPart[i] != '-' && intPart[i-1] != '-' {
			buf = append(buf, '.')
		}
		buf = append(buf, intPart[i])
	}
	if fracPart != "" {
		buf = append(buf, ',')
		buf = append(buf, fracPart...)
	}
	return string(buf)
}
