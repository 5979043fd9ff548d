// Package pdf implementa la generación de la nota de crédito en PDF que se
// entrega al cliente cuando una devolución se completa.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre tienda  │  N° Control + Fecha               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + contacto                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Artículo | P.Unit | Crédito                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL ACREDITADO                                            │
//	│  FOOTER: motivo + leyenda                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

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

	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ returns.CreditNoteGenerator = (*CreditNoteGenerator)(nil)

// CreditNoteGenerator implementa returns.CreditNoteGenerator usando Maroto v2.
type CreditNoteGenerator struct {
	storeName string
}

// NewCreditNoteGenerator construye el generador con el nombre de la tienda.
func NewCreditNoteGenerator(storeName string) *CreditNoteGenerator {
	return &CreditNoteGenerator{storeName: storeName}
}

// Generate genera la nota de crédito y devuelve sus bytes.
func (g *CreditNoteGenerator) Generate(
	record *entity.ReturnRecord,
	profile *entity.CustomerProfile,
	lines []*entity.ReturnLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Nota de Crédito "+record.ControlID, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(record))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(profile))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(record))
	m.AddRows(line.NewRow(3))
	for _, r := range footerRows(record) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: nombre de la tienda (izq) y N° de control + fecha (der).
func (g *CreditNoteGenerator) headerRow(record *entity.ReturnRecord) core.Row {
	fecha := record.UpdatedAt.Format("02/01/2006")
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("NOTA DE CRÉDITO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(record.ControlID, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// customerRow: datos del cliente acreditado.
func customerRow(profile *entity.CustomerProfile) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(profile.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Email: %s   |   Tel: %s",
				nonEmpty(profile.Email, "—"),
				nonEmpty(profile.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de artículos devueltos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Artículo devuelto", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Crédito", 3, align.Right),
	)
}

// tableLineRows: una fila por línea devuelta.
func tableLineRows(lines []*entity.ReturnLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		item := l.VariantID
		if item == "" {
			item = l.ProductID
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				fmt.Sprintf("%d", l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				item,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				"$"+l.UnitPrice.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"$"+l.LineCredit().StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: total acreditado alineado a la derecha.
func totalRow(record *entity.ReturnRecord) core.Row {
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL ACREDITADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+record.AmountCredited.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// footerRows: motivo de la devolución + leyenda del crédito.
func footerRows(record *entity.ReturnRecord) []core.Row {
	rows := []core.Row{}
	if record.Reason != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Motivo: "+record.Reason, props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"El monto acreditado queda disponible como crédito de tienda "+
				"y puede aplicarse en compras futuras. Conserve este documento.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
