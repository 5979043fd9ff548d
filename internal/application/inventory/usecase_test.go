package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tienda-backoffice/internal/application/apptest"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newLedger(st *apptest.Store) *inventory.StockLedgerUseCase {
	return inventory.NewStockLedgerUseCase(
		&apptest.TxRunner{S: st},
		&apptest.VariantRepo{S: st},
		&apptest.MovementRepo{S: st},
		logger.Nop(),
	)
}

// seedVariant agrega una variante con el stock dado y su movimiento de compra
// semilla, de modo que la invariante stock == Σ movimientos se cumpla desde
// el inicio.
func seedVariant(st *apptest.Store, id, productID string, stock int64) {
	st.Variants = append(st.Variants, &entity.ProductVariant{
		ID:        id,
		ProductID: productID,
		Size:      "M",
		Color:     "Negro",
		Stock:     stock,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if stock != 0 {
		st.Movements = append(st.Movements, &entity.StockMovement{
			ID:        "seed-" + id,
			VariantID: id,
			ProductID: productID,
			Type:      entity.MovementPurchase,
			Quantity:  stock,
			Reason:    "stock inicial",
			CreatedAt: time.Now(),
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement — movimientos sobre variantes
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_CompraSumaStock(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	res, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		VariantID: "var-1",
		Type:      entity.MovementPurchase,
		Quantity:  5,
		Reason:    "reposición proveedor",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 15, res.NewStock, "compra de 5 sobre 10 debe dejar 15")
	assert.False(t, res.Clamped)
	assert.Equal(t, entity.MovementPurchase, res.Movement.Type)

	v, err := (&apptest.VariantRepo{S: st}).GetByID("var-1")
	require.NoError(t, err)
	assert.EqualValues(t, 15, v.Stock, "el stock derivado debe persistirse")
}

func TestRecordMovement_VentaDescuentaStock(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	res, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		VariantID:   "var-1",
		OrderItemID: "item-1",
		Type:        entity.MovementSale,
		Quantity:    -2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, res.NewStock, "venta de 2 sobre 10 debe dejar 8")
	assert.False(t, res.Clamped)
}

// La invariante de conservación debe mantenerse tras cada movimiento:
// el stock de la variante es igual a la suma firmada de su libro.
func TestRecordMovement_ConservacionDelLibro(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx, inventory.MovementInput{
		VariantID: "var-1", Type: entity.MovementPurchase, Quantity: 3,
	})
	require.NoError(t, err)
	_, err = uc.RecordMovement(ctx, inventory.MovementInput{
		VariantID: "var-1", OrderItemID: "item-a", Type: entity.MovementSale, Quantity: -4,
	})
	require.NoError(t, err)

	stock, sum, err := uc.VerifyStock(ctx, "var-1")
	require.NoError(t, err)
	assert.Equal(t, stock, sum, "stock derivado y suma del libro deben coincidir")
	assert.EqualValues(t, 9, stock)
}

func TestRecordMovement_SobreventaClampEnCero(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 5)
	uc := newLedger(st)
	ctx := context.Background()

	res, err := uc.RecordMovement(ctx, inventory.MovementInput{
		VariantID:   "var-1",
		OrderItemID: "item-1",
		Type:        entity.MovementSale,
		Quantity:    -20,
	})
	require.NoError(t, err, "la sobreventa no es error: se tolera con clamp")
	assert.EqualValues(t, 0, res.NewStock, "el stock nunca queda negativo")
	assert.True(t, res.Clamped, "el clamp debe reportarse en el resultado")
	assert.EqualValues(t, -5, res.Movement.Quantity,
		"el movimiento registra el delta efectivamente aplicado")
	assert.Contains(t, res.Movement.Reason, "solicitado -20",
		"la cantidad solicitada queda visible en la razón")

	// El libro sigue cuadrado tras el clamp: stock 0 y suma firmada 0.
	stock, sum, err := uc.VerifyStock(ctx, "var-1")
	require.NoError(t, err, "el clamp no debe dejar el libro descuadrado")
	assert.EqualValues(t, 0, stock)
	assert.EqualValues(t, 0, sum)
}

func TestRecordMovement_VentaIdempotentePorLinea(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)
	ctx := context.Background()

	in := inventory.MovementInput{
		VariantID:   "var-1",
		OrderItemID: "item-1",
		Type:        entity.MovementSale,
		Quantity:    -2,
	}
	first, err := uc.RecordMovement(ctx, in)
	require.NoError(t, err)
	assert.EqualValues(t, 8, first.NewStock)

	// El reintento con la misma línea no descuenta una segunda vez.
	second, err := uc.RecordMovement(ctx, in)
	require.NoError(t, err)
	assert.EqualValues(t, 8, second.NewStock, "el stock no cambia en el reintento")
	assert.Equal(t, first.Movement.ID, second.Movement.ID,
		"debe devolverse el movimiento de venta existente")

	var sales int
	for _, m := range st.Movements {
		if m.Type == entity.MovementSale && m.OrderItemID == "item-1" {
			sales++
		}
	}
	assert.Equal(t, 1, sales, "a lo sumo un movimiento de venta por línea")
}

// trackedVariantRepo y trackedMovementRepo registran el orden de llamadas
// para verificar que la búsqueda de la venta existente corre con la fila de
// la variante ya bloqueada; si corriera antes, dos reintentos concurrentes
// podrían ver ambos "sin movimiento" e insertar dos deducciones.
type trackedVariantRepo struct {
	repository.VariantRepository
	calls *[]string
}

func (r *trackedVariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	*r.calls = append(*r.calls, "variant.GetForUpdate")
	return r.VariantRepository.GetForUpdate(id)
}

type trackedMovementRepo struct {
	repository.StockMovementRepository
	calls *[]string
}

func (r *trackedMovementRepo) GetSaleByOrderItem(orderItemID string) (*entity.StockMovement, error) {
	*r.calls = append(*r.calls, "movement.GetSaleByOrderItem")
	return r.StockMovementRepository.GetSaleByOrderItem(orderItemID)
}

func TestApplyInTx_ChequeoDeVentaCorreBajoBloqueoDeFila(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	var calls []string
	variants := &trackedVariantRepo{VariantRepository: &apptest.VariantRepo{S: st}, calls: &calls}
	movements := &trackedMovementRepo{StockMovementRepository: &apptest.MovementRepo{S: st}, calls: &calls}

	res, err := uc.ApplyInTx(movements, variants, &apptest.ProductRepo{S: st}, inventory.MovementInput{
		VariantID:   "var-1",
		OrderItemID: "item-1",
		Type:        entity.MovementSale,
		Quantity:    -2,
	}, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 8, res.NewStock)

	require.Contains(t, calls, "movement.GetSaleByOrderItem")
	require.NotEmpty(t, calls)
	assert.Equal(t, "variant.GetForUpdate", calls[0],
		"la fila se bloquea antes de buscar la venta existente")
}

func TestRecordMovement_VarianteInexistente(t *testing.T) {
	st := apptest.NewStore()
	uc := newLedger(st)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		VariantID: "no-existe",
		Type:      entity.MovementPurchase,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	cases := []struct {
		name string
		in   inventory.MovementInput
	}{
		{"cantidad cero", inventory.MovementInput{VariantID: "var-1", Type: entity.MovementPurchase, Quantity: 0}},
		{"tipo desconocido", inventory.MovementInput{VariantID: "var-1", Type: "regalo", Quantity: 1}},
		{"sin variante ni producto", inventory.MovementInput{Type: entity.MovementPurchase, Quantity: 1}},
		{"compra con cantidad negativa", inventory.MovementInput{VariantID: "var-1", Type: entity.MovementPurchase, Quantity: -3}},
		{"venta con cantidad positiva", inventory.MovementInput{VariantID: "var-1", Type: entity.MovementSale, Quantity: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RecordMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, st.Movements[1:], "las entradas inválidas no deben tocar el libro")
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos legacy sin variantes
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_ProductoLegacy_CompraMutaStockDelProducto(t *testing.T) {
	st := apptest.NewStore()
	st.Products = append(st.Products, &entity.Product{ID: "prod-1", Name: "Gorra", Stock: 3, Active: true})
	uc := newLedger(st)

	res, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "prod-1",
		Type:      entity.MovementPurchase,
		Quantity:  4,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, res.NewStock)

	p, err := (&apptest.ProductRepo{S: st}).GetByID("prod-1")
	require.NoError(t, err)
	assert.EqualValues(t, 7, p.Stock)
}

func TestRecordMovement_ProductoLegacy_VentaAutoProvisionaVariante(t *testing.T) {
	st := apptest.NewStore()
	st.Products = append(st.Products, &entity.Product{ID: "prod-1", Name: "Gorra", Stock: 7, Active: true})
	uc := newLedger(st)
	ctx := context.Background()

	res, err := uc.RecordMovement(ctx, inventory.MovementInput{
		ProductID:   "prod-1",
		OrderItemID: "item-1",
		Type:        entity.MovementSale,
		Quantity:    -2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.NewStock, "hereda el stock legacy (7) y vende 2")

	// Se crea la variante por defecto y el producto queda en cero.
	variants, err := (&apptest.VariantRepo{S: st}).ListByProduct("prod-1")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	v := variants[0]
	assert.Equal(t, entity.DefaultVariantSize, v.Size)
	assert.Equal(t, entity.DefaultVariantColor, v.Color)
	assert.EqualValues(t, 5, v.Stock)

	p, err := (&apptest.ProductRepo{S: st}).GetByID("prod-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Stock, "el stock legacy migra a la variante")

	// El stock heredado entra al libro como corrección: la suma firmada de la
	// variante nueva debe igualar su stock.
	stock, sum, err := uc.VerifyStock(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, stock, sum)
	assert.EqualValues(t, 5, stock)
}

func TestRecordMovement_ProductoConVariantes_RechazaProductID(t *testing.T) {
	st := apptest.NewStore()
	st.Products = append(st.Products, &entity.Product{ID: "prod-1", Name: "Camisa", Active: true})
	seedVariant(st, "var-1", "prod-1", 5)
	uc := newLedger(st)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "prod-1",
		Type:      entity.MovementPurchase,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"un producto con variantes exige variant_id")
}

// ──────────────────────────────────────────────────────────────────────────────
// QuickAdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestQuickAdjust_Add(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	newStock, err := uc.QuickAdjustStock(context.Background(), "var-1", inventory.AdjustAdd, 3, "conteo físico", "admin-1")
	require.NoError(t, err)
	assert.EqualValues(t, 13, newStock)

	last := st.Movements[len(st.Movements)-1]
	assert.Equal(t, entity.MovementAdjustmentIn, last.Type)
	assert.EqualValues(t, 3, last.Quantity)
}

func TestQuickAdjust_Remove(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	newStock, err := uc.QuickAdjustStock(context.Background(), "var-1", inventory.AdjustRemove, 4, "merma", "admin-1")
	require.NoError(t, err)
	assert.EqualValues(t, 6, newStock)

	last := st.Movements[len(st.Movements)-1]
	assert.Equal(t, entity.MovementAdjustmentOut, last.Type)
	assert.EqualValues(t, -4, last.Quantity)
}

func TestQuickAdjust_Set_RegistraCorreccionPorDiferencia(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)

	newStock, err := uc.QuickAdjustStock(context.Background(), "var-1", inventory.AdjustSet, 6, "inventario anual", "admin-1")
	require.NoError(t, err)
	assert.EqualValues(t, 6, newStock)

	last := st.Movements[len(st.Movements)-1]
	assert.Equal(t, entity.MovementCorrection, last.Type)
	assert.EqualValues(t, -4, last.Quantity, "set 6 sobre 10 registra corrección -4")
}

func TestQuickAdjust_Set_SinCambioNoAgregaMovimiento(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)
	before := len(st.Movements)

	newStock, err := uc.QuickAdjustStock(context.Background(), "var-1", inventory.AdjustSet, 10, "", "admin-1")
	require.NoError(t, err)
	assert.EqualValues(t, 10, newStock)
	assert.Len(t, st.Movements, before, "set al valor actual es un no-op")
}

func TestQuickAdjust_Validaciones(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 10)
	uc := newLedger(st)
	ctx := context.Background()

	_, err := uc.QuickAdjustStock(ctx, "", inventory.AdjustAdd, 1, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.QuickAdjustStock(ctx, "var-1", inventory.AdjustAdd, 0, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.QuickAdjustStock(ctx, "var-1", inventory.AdjustSet, -1, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.QuickAdjustStock(ctx, "var-1", "duplicar", 2, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyStock
// ──────────────────────────────────────────────────────────────────────────────

func TestVerifyStock_DesajusteReportaInconsistencia(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 5)
	// Se corrompe el stock derivado a espaldas del libro.
	st.Variants[0].Stock = 6
	uc := newLedger(st)

	stock, sum, err := uc.VerifyStock(context.Background(), "var-1")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.EqualValues(t, 6, stock, "debe reportar los dos valores en conflicto")
	assert.EqualValues(t, 5, sum)
}

func TestVerifyStock_VarianteInexistente(t *testing.T) {
	st := apptest.NewStore()
	uc := newLedger(st)

	_, _, err := uc.VerifyStock(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ListMovements
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_FiltraPorRangoDeFechas(t *testing.T) {
	st := apptest.NewStore()
	seedVariant(st, "var-1", "prod-1", 0)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		st.Movements = append(st.Movements, &entity.StockMovement{
			ID:        string(rune('a' + i)),
			VariantID: "var-1",
			Type:      entity.MovementPurchase,
			Quantity:  1,
			CreatedAt: base.AddDate(0, 0, i),
		})
	}
	uc := newLedger(st)

	from := base.AddDate(0, 0, 1)
	movs, err := uc.ListMovements(context.Background(), "var-1", &from, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2, "solo los movimientos desde la fecha indicada")

	_, err = uc.ListMovements(context.Background(), "", nil, nil, 50, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
