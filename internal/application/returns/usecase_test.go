package returns_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tienda-backoffice/internal/application/apptest"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	st       *apptest.Store
	uc       *returns.ReturnsUseCase
	notifier *apptest.Notifier
	pdf      *apptest.PDFGenerator
}

func newFixture() *fixture {
	st := apptest.NewStore()
	tx := &apptest.TxRunner{S: st}
	ledger := inventory.NewStockLedgerUseCase(tx, &apptest.VariantRepo{S: st}, &apptest.MovementRepo{S: st}, logger.Nop())
	notifier := &apptest.Notifier{}
	pdf := &apptest.PDFGenerator{}
	uc := returns.NewReturnsUseCase(
		tx,
		ledger,
		&apptest.ReturnRepo{S: st},
		&apptest.ProfileRepo{S: st},
		notifier,
		pdf,
		logger.Nop(),
	)
	return &fixture{st: st, uc: uc, notifier: notifier, pdf: pdf}
}

func (f *fixture) seedProfile(id string) {
	f.st.Profiles = append(f.st.Profiles, &entity.CustomerProfile{
		ID: id, Name: "Ana Pérez", Email: "ana@example.com", Phone: "+58 412 0000000",
		StoreCredit: decimal.Zero,
	})
}

func (f *fixture) seedVariant(id string, stock int64) {
	f.st.Variants = append(f.st.Variants, &entity.ProductVariant{
		ID: id, ProductID: "prod-1", Size: "M", Color: "Rojo", Stock: stock,
	})
	f.st.Movements = append(f.st.Movements, &entity.StockMovement{
		ID: "seed-" + id, VariantID: id, ProductID: "prod-1",
		Type: entity.MovementPurchase, Quantity: stock,
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateReturnRecord
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateReturnRecord_QuedaPendienteSinEfectos(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 3)

	rec, err := f.uc.CreateReturnRecord(context.Background(), returns.CreateInput{
		ProfileID: "prof-1",
		OrderID:   "ord-1",
		Reason:    "no le quedó",
		Lines: []returns.ReturnLineInput{
			{VariantID: "var-1", Quantity: 2, UnitPrice: dec("15")},
		},
		ActorID: "admin-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnPending, rec.Status)
	assert.True(t, rec.AmountCredited.IsZero(), "pending no acredita nada")
	assert.True(t, strings.HasPrefix(rec.ControlID, "DEV-"), "control id legible: %s", rec.ControlID)

	// Sin efectos: ni stock ni crédito hasta completar.
	v, _ := (&apptest.VariantRepo{S: f.st}).GetByID("var-1")
	assert.EqualValues(t, 3, v.Stock)
	assert.Empty(t, f.st.Credits)
	assert.Empty(t, f.notifier.Returns)

	lines, err := (&apptest.ReturnRepo{S: f.st}).GetLines(rec.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCreateReturnRecord_Validaciones(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	ctx := context.Background()

	_, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{ProfileID: "prof-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "requiere al menos una línea")

	_, err = f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{Quantity: 1, UnitPrice: dec("5")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "línea sin variante ni producto")

	_, err = f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "no-existe",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("5")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CompleteReturnRecord
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteReturnRecord_ReponeStockYAcredita(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 3)
	f.seedVariant("var-2", 0)
	ctx := context.Background()

	rec, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		OrderID:   "ord-1",
		Reason:    "defecto de fábrica",
		Lines: []returns.ReturnLineInput{
			{VariantID: "var-1", Quantity: 2, UnitPrice: dec("15")},
			{VariantID: "var-2", Quantity: 1, UnitPrice: dec("8.50")},
		},
	})
	require.NoError(t, err)

	done, err := f.uc.CompleteReturnRecord(ctx, rec.ID, "revisado en tienda", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnCompleted, done.Status)
	assert.True(t, done.AmountCredited.Equal(dec("38.50")), "2×15 + 1×8.50")
	assert.Equal(t, "revisado en tienda", done.AdminNotes)

	// Restock por línea, referenciando el control id.
	vr := &apptest.VariantRepo{S: f.st}
	v1, _ := vr.GetByID("var-1")
	v2, _ := vr.GetByID("var-2")
	assert.EqualValues(t, 5, v1.Stock)
	assert.EqualValues(t, 1, v2.Stock)
	var returned int
	for _, m := range f.st.Movements {
		if m.Type == entity.MovementReturn {
			returned++
			assert.Contains(t, m.Reason, rec.ControlID)
		}
	}
	assert.Equal(t, 2, returned, "una entrada de stock por línea")

	// Una sola entrada de crédito por el total, y el saldo denormalizado.
	require.Len(t, f.st.Credits, 1)
	assert.Equal(t, entity.CreditReturn, f.st.Credits[0].Type)
	assert.True(t, f.st.Credits[0].Amount.Equal(dec("38.50")))
	p, _ := (&apptest.ProfileRepo{S: f.st}).GetByID("prof-1")
	assert.True(t, p.StoreCredit.Equal(dec("38.50")))

	// Notificación después del commit con el detalle completo.
	require.Len(t, f.notifier.Returns, 1)
	n := f.notifier.Returns[0]
	assert.Equal(t, rec.ControlID, n.ControlID)
	assert.Equal(t, "38.5", n.AmountCredited)
	assert.Len(t, n.Lines, 2)
}

func TestCompleteReturnRecord_ReCompletarEsConflicto(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 3)
	ctx := context.Background()

	rec, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("15")}},
	})
	require.NoError(t, err)

	_, err = f.uc.CompleteReturnRecord(ctx, rec.ID, "", "admin-1")
	require.NoError(t, err)

	_, err = f.uc.CompleteReturnRecord(ctx, rec.ID, "", "admin-2")
	assert.ErrorIs(t, err, domain.ErrConflict, "la doble acreditación debe rechazarse")

	// El segundo intento no tocó ni stock ni crédito.
	v, _ := (&apptest.VariantRepo{S: f.st}).GetByID("var-1")
	assert.EqualValues(t, 4, v.Stock)
	assert.Len(t, f.st.Credits, 1)
	p, _ := (&apptest.ProfileRepo{S: f.st}).GetByID("prof-1")
	assert.True(t, p.StoreCredit.Equal(dec("15")))
}

func TestCompleteReturnRecord_MarcaLineaDeOrdenComoDevuelta(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 3)
	f.st.Items = append(f.st.Items, &entity.OrderItem{
		ID: "item-1", OrderID: "ord-1", VariantID: "var-1",
		Quantity: 1, UnitPrice: dec("15"),
	})
	ctx := context.Background()

	rec, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		OrderID:   "ord-1",
		Reason:    "no le quedó",
		Lines: []returns.ReturnLineInput{
			{VariantID: "var-1", OrderItemID: "item-1", Quantity: 1, UnitPrice: dec("15")},
		},
	})
	require.NoError(t, err)
	_, err = f.uc.CompleteReturnRecord(ctx, rec.ID, "", "admin-1")
	require.NoError(t, err)

	it, _ := (&apptest.OrderRepo{S: f.st}).GetItem("item-1")
	assert.True(t, it.Metadata.IsReturned, "la línea de la orden queda marcada")
	assert.Equal(t, "no le quedó", it.Metadata.ReturnReason)
}

// ──────────────────────────────────────────────────────────────────────────────
// RejectReturnRecord
// ──────────────────────────────────────────────────────────────────────────────

func TestRejectReturnRecord_SinEfectos(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 3)
	ctx := context.Background()

	rec, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("15")}},
	})
	require.NoError(t, err)

	rejected, err := f.uc.RejectReturnRecord(ctx, rec.ID, "fuera de plazo")
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnRejected, rejected.Status)
	assert.Equal(t, "fuera de plazo", rejected.AdminNotes)

	v, _ := (&apptest.VariantRepo{S: f.st}).GetByID("var-1")
	assert.EqualValues(t, 3, v.Stock, "rechazar no repone stock")
	assert.Empty(t, f.st.Credits, "rechazar no acredita")

	// Un registro rechazado ya no puede completarse.
	_, err = f.uc.CompleteReturnRecord(ctx, rec.ID, "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessReturn — devolución directa en un paso
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessReturn_AcreditaYDevuelveSaldo(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.st.Profiles[0].StoreCredit = dec("5")
	f.seedVariant("var-1", 2)

	newBalance, err := f.uc.ProcessReturn(context.Background(), returns.ProcessInput{
		ProfileID:      "prof-1",
		VariantID:      "var-1",
		Quantity:       2,
		AmountToCredit: dec("30"),
		Reason:         "devolución en tienda",
		ActorID:        "admin-1",
	})
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(dec("35")), "5 previos + 30 acreditados")

	v, _ := (&apptest.VariantRepo{S: f.st}).GetByID("var-1")
	assert.EqualValues(t, 4, v.Stock)

	// Queda un registro completed como historial, con su línea.
	require.Len(t, f.st.Returns, 1)
	rec := f.st.Returns[0]
	assert.Equal(t, entity.ReturnCompleted, rec.Status)
	assert.True(t, rec.AmountCredited.Equal(dec("30")))
	lines, _ := (&apptest.ReturnRepo{S: f.st}).GetLines(rec.ID)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(dec("15")), "precio unitario = 30 / 2")

	require.Len(t, f.notifier.Returns, 1)
}

func TestProcessReturn_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.ProcessReturn(ctx, returns.ProcessInput{
		VariantID: "var-1", Quantity: 1, AmountToCredit: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "perfil requerido")

	_, err = f.uc.ProcessReturn(ctx, returns.ProcessInput{
		ProfileID: "prof-1", Quantity: 1, AmountToCredit: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "variante o producto requerido")
}

// ──────────────────────────────────────────────────────────────────────────────
// Listado y nota de crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestListReturnRecords_FiltraPorEstado(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 5)
	ctx := context.Background()

	a, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.NoError(t, err)
	_, err = f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.NoError(t, err)
	_, err = f.uc.CompleteReturnRecord(ctx, a.ID, "", "admin-1")
	require.NoError(t, err)

	pending, err := f.uc.ListReturnRecords(ctx, entity.ReturnPending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := f.uc.ListReturnRecords(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.uc.ListReturnRecords(ctx, "archivado", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreditNotePDF_SoloParaCompletadas(t *testing.T) {
	f := newFixture()
	f.seedProfile("prof-1")
	f.seedVariant("var-1", 5)
	ctx := context.Background()

	rec, err := f.uc.CreateReturnRecord(ctx, returns.CreateInput{
		ProfileID: "prof-1",
		Lines:     []returns.ReturnLineInput{{VariantID: "var-1", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.NoError(t, err)

	_, err = f.uc.CreditNotePDF(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "una devolución pending no tiene nota de crédito")
	assert.Zero(t, f.pdf.Calls)

	_, err = f.uc.CompleteReturnRecord(ctx, rec.ID, "", "admin-1")
	require.NoError(t, err)

	pdf, err := f.uc.CreditNotePDF(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, 1, f.pdf.Calls)

	_, err = f.uc.CreditNotePDF(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
