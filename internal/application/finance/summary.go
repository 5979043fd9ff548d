package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// CurrencyTotals acumulados de un día para una moneda.
type CurrencyTotals struct {
	Currency entity.Currency `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Net      decimal.Decimal `json:"net"`
}

// AccountNet neto del día por cuenta, en la moneda de la cuenta.
type AccountNet struct {
	AccountID   string          `json:"account_id"`
	AccountName string          `json:"account_name"`
	Currency    entity.Currency `json:"currency"`
	Net         decimal.Decimal `json:"net"`
	Count       int             `json:"count"`
}

// DailySummary proyección de solo lectura del libro de un día calendario.
// Los equivalentes USD usan la tasa fijada en cada transacción, no la actual.
type DailySummary struct {
	Day          string           `json:"day"`
	ByCurrency   []CurrencyTotals `json:"by_currency"`
	ByAccount    []AccountNet     `json:"by_account"`
	IncomeUSD    decimal.Decimal  `json:"income_usd"`
	ExpenseUSD   decimal.Decimal  `json:"expense_usd"`
	NetUSD       decimal.Decimal  `json:"net_usd"`
	Transactions int              `json:"transactions"`
}

// GetDailySummary agrega las transacciones del día por moneda y por cuenta.
// Es una proyección derivada del libro: no persiste nada.
func (uc *FinanceUseCase) GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	trxs, err := uc.trxRepo.ListByDay(day)
	if err != nil {
		return nil, err
	}
	accounts, err := uc.accountRepo.List(true)
	if err != nil {
		return nil, err
	}
	accByID := make(map[string]*entity.FinanceAccount, len(accounts))
	for _, a := range accounts {
		accByID[a.ID] = a
	}

	summary := &DailySummary{
		Day:          day.Format("2006-01-02"),
		IncomeUSD:    decimal.Zero,
		ExpenseUSD:   decimal.Zero,
		NetUSD:       decimal.Zero,
		Transactions: len(trxs),
	}
	byCurrency := map[entity.Currency]*CurrencyTotals{}
	byAccount := map[string]*AccountNet{}

	for _, t := range trxs {
		account := accByID[t.AccountID]
		currency := entity.CurrencyUSD
		if account != nil {
			currency = account.Currency
		}

		ct, ok := byCurrency[currency]
		if !ok {
			ct = &CurrencyTotals{
				Currency: currency,
				Income:   decimal.Zero,
				Expense:  decimal.Zero,
				Net:      decimal.Zero,
			}
			byCurrency[currency] = ct
		}
		signedUSD := t.AmountUSD
		if t.Type == entity.TransactionExpense {
			ct.Expense = ct.Expense.Add(t.Amount)
			summary.ExpenseUSD = summary.ExpenseUSD.Add(t.AmountUSD)
			signedUSD = signedUSD.Neg()
		} else {
			ct.Income = ct.Income.Add(t.Amount)
			summary.IncomeUSD = summary.IncomeUSD.Add(t.AmountUSD)
		}
		ct.Net = ct.Net.Add(t.SignedAmount())
		summary.NetUSD = summary.NetUSD.Add(signedUSD)

		an, ok := byAccount[t.AccountID]
		if !ok {
			an = &AccountNet{
				AccountID: t.AccountID,
				Currency:  currency,
				Net:       decimal.Zero,
			}
			if account != nil {
				an.AccountName = account.Name
			}
			byAccount[t.AccountID] = an
		}
		an.Net = an.Net.Add(t.SignedAmount())
		an.Count++
	}

	// Orden estable: USD primero, luego VES.
	for _, c := range []entity.Currency{entity.CurrencyUSD, entity.CurrencyVES} {
		if ct, ok := byCurrency[c]; ok {
			summary.ByCurrency = append(summary.ByCurrency, *ct)
		}
	}
	for _, a := range accounts {
		if an, ok := byAccount[a.ID]; ok {
			summary.ByAccount = append(summary.ByAccount, *an)
		}
	}
	return summary, nil
}
