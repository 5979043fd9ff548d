package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tienda-backoffice/internal/application/apptest"
	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newFinance(st *apptest.Store) *finance.FinanceUseCase {
	return finance.NewFinanceUseCase(
		&apptest.TxRunner{S: st},
		&apptest.AccountRepo{S: st},
		&apptest.CategoryRepo{S: st},
		&apptest.TrxRepo{S: st},
		&apptest.SettingsRepo{S: st},
		logger.Nop(),
	)
}

func seedAccount(st *apptest.Store, id string, currency entity.Currency, balance decimal.Decimal) {
	st.Accounts = append(st.Accounts, &entity.FinanceAccount{
		ID:       id,
		Name:     "Cuenta " + id,
		Currency: currency,
		Balance:  balance,
		Active:   true,
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuentas
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateAccount(t *testing.T) {
	st := apptest.NewStore()
	uc := newFinance(st)

	acc, err := uc.CreateAccount(context.Background(), finance.CreateAccountInput{
		Name:           "Caja principal",
		Currency:       entity.CurrencyUSD,
		InitialBalance: dec("100"),
	})
	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.True(t, acc.Balance.Equal(dec("100")))

	_, err = uc.CreateAccount(context.Background(), finance.CreateAccountInput{
		Name: "Sin moneda", Currency: "EUR",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "solo USD y VES")
}

func TestDeleteAccount_ConTransaccionesEsConflicto(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, decimal.Zero)
	seedAccount(st, "acc-2", entity.CurrencyUSD, decimal.Zero)
	st.Transactions = append(st.Transactions, &entity.FinanceTransaction{
		ID: "trx-1", AccountID: "acc-1", Type: entity.TransactionIncome, Amount: dec("10"),
	})
	uc := newFinance(st)
	ctx := context.Background()

	err := uc.DeleteAccount(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrConflict,
		"una cuenta con historial no se borra: se desactiva")
	acc, _ := (&apptest.AccountRepo{S: st}).GetByID("acc-1")
	assert.NotNil(t, acc, "la cuenta sobrevive al intento de borrado")

	require.NoError(t, uc.DeleteAccount(ctx, "acc-2"), "sin transacciones sí puede borrarse")
	acc, _ = (&apptest.AccountRepo{S: st}).GetByID("acc-2")
	assert.Nil(t, acc)
}

func TestUpdateAccount_SoloNombreYEstado(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyVES, dec("500"))
	uc := newFinance(st)

	name := "Banco de Venezuela"
	inactive := false
	acc, err := uc.UpdateAccount(context.Background(), "acc-1", finance.UpdateAccountInput{
		Name:   &name,
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, name, acc.Name)
	assert.False(t, acc.Active)
	assert.True(t, acc.Balance.Equal(dec("500")), "el saldo no es editable por esta vía")
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteCategory_EnUsoEsConflicto(t *testing.T) {
	st := apptest.NewStore()
	st.Categories = append(st.Categories, &entity.FinanceCategory{ID: "cat-1", Name: "Ventas", Active: true})
	st.Transactions = append(st.Transactions, &entity.FinanceTransaction{
		ID: "trx-1", AccountID: "acc-1", CategoryID: "cat-1",
		Type: entity.TransactionIncome, Amount: dec("10"),
	})
	uc := newFinance(st)

	err := uc.DeleteCategory(context.Background(), "cat-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	cat, _ := (&apptest.CategoryRepo{S: st}).GetByID("cat-1")
	assert.NotNil(t, cat)
}

// ──────────────────────────────────────────────────────────────────────────────
// PostTransaction
// ──────────────────────────────────────────────────────────────────────────────

func TestPostTransaction_IngresoUSDMueveSaldo(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, dec("100"))
	uc := newFinance(st)

	trx, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID:   "acc-1",
		Type:        entity.TransactionIncome,
		Amount:      dec("40"),
		Description: "venta del día",
	})
	require.NoError(t, err)
	assert.True(t, trx.ExchangeRate.Equal(dec("1")), "USD siempre fija tasa 1")
	assert.True(t, trx.AmountUSD.Equal(dec("40")))

	acc, _ := (&apptest.AccountRepo{S: st}).GetByID("acc-1")
	assert.True(t, acc.Balance.Equal(dec("140")))
}

func TestPostTransaction_GastoRestaDelSaldo(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, dec("100"))
	uc := newFinance(st)

	_, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID: "acc-1",
		Type:      entity.TransactionExpense,
		Amount:    dec("30"),
	})
	require.NoError(t, err)

	acc, _ := (&apptest.AccountRepo{S: st}).GetByID("acc-1")
	assert.True(t, acc.Balance.Equal(dec("70")))
}

func TestPostTransaction_VESFijaTasaYEquivalenteUSD(t *testing.T) {
	st := apptest.NewStore()
	st.Rate = dec("60")
	seedAccount(st, "acc-ves", entity.CurrencyVES, decimal.Zero)
	uc := newFinance(st)

	trx, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID: "acc-ves",
		Type:      entity.TransactionIncome,
		Amount:    dec("600"),
	})
	require.NoError(t, err)
	assert.True(t, trx.ExchangeRate.Equal(dec("60")), "toma la tasa global vigente")
	assert.True(t, trx.AmountUSD.Equal(dec("10")), "600 VES / 60 = 10 USD")
}

func TestPostTransaction_TasaExplicitaPrevalece(t *testing.T) {
	st := apptest.NewStore()
	st.Rate = dec("60")
	seedAccount(st, "acc-ves", entity.CurrencyVES, decimal.Zero)
	uc := newFinance(st)

	rate := dec("50")
	trx, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID:    "acc-ves",
		Type:         entity.TransactionIncome,
		Amount:       dec("100"),
		ExchangeRate: &rate,
	})
	require.NoError(t, err)
	assert.True(t, trx.ExchangeRate.Equal(dec("50")))
	assert.True(t, trx.AmountUSD.Equal(dec("2")))
}

// La tasa explícita también prevalece en cuentas USD: la transacción guarda
// la tasa indicada por el caller, aunque el equivalente USD siga siendo el
// monto (la cuenta ya está en dólares).
func TestPostTransaction_TasaExplicitaEnCuentaUSDSeRespeta(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-usd", entity.CurrencyUSD, dec("100"))
	uc := newFinance(st)

	rate := dec("60")
	trx, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID:    "acc-usd",
		Type:         entity.TransactionIncome,
		Amount:       dec("40"),
		ExchangeRate: &rate,
	})
	require.NoError(t, err)
	assert.True(t, trx.ExchangeRate.Equal(dec("60")),
		"la tasa guardada es la indicada, no la implícita de USD")
	assert.True(t, trx.AmountUSD.Equal(dec("40")))
}

func TestPostTransaction_SinTasaConfigurada_RegistraConTasaUno(t *testing.T) {
	st := apptest.NewStore() // Rate queda en cero: sin configurar
	seedAccount(st, "acc-ves", entity.CurrencyVES, decimal.Zero)
	uc := newFinance(st)

	trx, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID: "acc-ves",
		Type:      entity.TransactionIncome,
		Amount:    dec("500"),
	})
	require.NoError(t, err, "la falta de tasa no bloquea la caja")
	assert.True(t, trx.ExchangeRate.Equal(dec("1")))
	assert.True(t, trx.AmountUSD.Equal(dec("500")))
}

func TestPostTransaction_CuentaInactivaEsConflicto(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, decimal.Zero)
	st.Accounts[0].Active = false
	uc := newFinance(st)

	_, err := uc.PostTransaction(context.Background(), finance.PostTransactionInput{
		AccountID: "acc-1",
		Type:      entity.TransactionIncome,
		Amount:    dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, st.Transactions, "no se registra nada contra una cuenta inactiva")
}

func TestPostTransaction_Validaciones(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, decimal.Zero)
	uc := newFinance(st)
	ctx := context.Background()

	_, err := uc.PostTransaction(ctx, finance.PostTransactionInput{
		AccountID: "acc-1", Type: "transferencia", Amount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.PostTransaction(ctx, finance.PostTransactionInput{
		AccountID: "acc-1", Type: entity.TransactionIncome, Amount: dec("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.PostTransaction(ctx, finance.PostTransactionInput{
		AccountID: "acc-1", Type: entity.TransactionIncome, Amount: dec("10"),
		CategoryID: "no-existe",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.PostTransaction(ctx, finance.PostTransactionInput{
		AccountID: "no-existe", Type: entity.TransactionIncome, Amount: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetDailySummary
// ──────────────────────────────────────────────────────────────────────────────

func TestGetDailySummary_AgregaPorMonedaYCuenta(t *testing.T) {
	st := apptest.NewStore()
	st.Rate = dec("60")
	seedAccount(st, "acc-usd", entity.CurrencyUSD, decimal.Zero)
	seedAccount(st, "acc-ves", entity.CurrencyVES, decimal.Zero)
	uc := newFinance(st)
	ctx := context.Background()

	// Dos ingresos USD, un gasto USD y un ingreso VES el mismo día.
	post := func(accountID string, typ entity.TransactionType, amount string) {
		t.Helper()
		_, err := uc.PostTransaction(ctx, finance.PostTransactionInput{
			AccountID: accountID, Type: typ, Amount: dec(amount),
		})
		require.NoError(t, err)
	}
	post("acc-usd", entity.TransactionIncome, "100")
	post("acc-usd", entity.TransactionIncome, "50")
	post("acc-usd", entity.TransactionExpense, "30")
	post("acc-ves", entity.TransactionIncome, "600")

	summary, err := uc.GetDailySummary(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Transactions)

	// USD primero, VES después: orden estable para la UI.
	require.Len(t, summary.ByCurrency, 2)
	usd := summary.ByCurrency[0]
	ves := summary.ByCurrency[1]
	assert.Equal(t, entity.CurrencyUSD, usd.Currency)
	assert.True(t, usd.Income.Equal(dec("150")))
	assert.True(t, usd.Expense.Equal(dec("30")))
	assert.True(t, usd.Net.Equal(dec("120")))
	assert.Equal(t, entity.CurrencyVES, ves.Currency)
	assert.True(t, ves.Net.Equal(dec("600")))

	// Equivalentes USD con la tasa fijada en cada transacción.
	assert.True(t, summary.IncomeUSD.Equal(dec("160")), "150 USD + 600/60")
	assert.True(t, summary.ExpenseUSD.Equal(dec("30")))
	assert.True(t, summary.NetUSD.Equal(dec("130")))

	require.Len(t, summary.ByAccount, 2)
	assert.Equal(t, "acc-usd", summary.ByAccount[0].AccountID)
	assert.Equal(t, 3, summary.ByAccount[0].Count)
	assert.True(t, summary.ByAccount[0].Net.Equal(dec("120")))
}

func TestGetDailySummary_DiaSinMovimientos(t *testing.T) {
	st := apptest.NewStore()
	seedAccount(st, "acc-1", entity.CurrencyUSD, decimal.Zero)
	uc := newFinance(st)

	summary, err := uc.GetDailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, summary.Transactions)
	assert.Empty(t, summary.ByCurrency)
	assert.True(t, summary.NetUSD.IsZero())
}

// La tasa global cambia después de registrar: el resumen sigue usando la tasa
// histórica fijada en la transacción.
func TestGetDailySummary_TasaHistoricaInmutable(t *testing.T) {
	st := apptest.NewStore()
	st.Rate = dec("60")
	seedAccount(st, "acc-ves", entity.CurrencyVES, decimal.Zero)
	uc := newFinance(st)
	ctx := context.Background()

	_, err := uc.PostTransaction(ctx, finance.PostTransactionInput{
		AccountID: "acc-ves", Type: entity.TransactionIncome, Amount: dec("600"),
	})
	require.NoError(t, err)

	st.Rate = dec("120") // devaluación posterior

	summary, err := uc.GetDailySummary(ctx, time.Now())
	require.NoError(t, err)
	assert.True(t, summary.IncomeUSD.Equal(dec("10")),
		"sigue valiendo 600/60, no 600/120")
}
