package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

// FinanceUseCase administra cuentas, categorías y el libro append-only de
// transacciones de caja. Cada transacción fija su tasa de cambio y su
// equivalente en USD al momento del registro; nunca se recalculan.
type FinanceUseCase struct {
	txRunner     TxRunner
	accountRepo  repository.FinanceAccountRepository
	categoryRepo repository.FinanceCategoryRepository
	trxRepo      repository.FinanceTransactionRepository
	settingsRepo repository.SettingsRepository
	log          *logger.Logger
}

// NewFinanceUseCase construye el caso de uso.
func NewFinanceUseCase(
	txRunner TxRunner,
	accountRepo repository.FinanceAccountRepository,
	categoryRepo repository.FinanceCategoryRepository,
	trxRepo repository.FinanceTransactionRepository,
	settingsRepo repository.SettingsRepository,
	log *logger.Logger,
) *FinanceUseCase {
	return &FinanceUseCase{
		txRunner:     txRunner,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		trxRepo:      trxRepo,
		settingsRepo: settingsRepo,
		log:          log,
	}
}

// -------- Cuentas --------

// CreateAccountInput entrada para crear una cuenta.
type CreateAccountInput struct {
	Name           string
	Currency       entity.Currency
	InitialBalance decimal.Decimal
}

// CreateAccount crea una cuenta activa con su saldo inicial.
func (uc *FinanceUseCase) CreateAccount(ctx context.Context, in CreateAccountInput) (*entity.FinanceAccount, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre de cuenta requerido", domain.ErrInvalidInput)
	}
	if !in.Currency.Valid() {
		return nil, fmt.Errorf("%w: moneda %q no soportada", domain.ErrInvalidInput, in.Currency)
	}
	now := time.Now()
	account := &entity.FinanceAccount{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Currency:  in.Currency,
		Balance:   in.InitialBalance,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.accountRepo.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccountInput campos editables de una cuenta. Balance no es editable:
// solo las transacciones lo mueven. Moneda tampoco, cambiaría el significado
// del histórico.
type UpdateAccountInput struct {
	Name   *string
	Active *bool
}

// UpdateAccount actualiza nombre o estado activo de la cuenta.
func (uc *FinanceUseCase) UpdateAccount(ctx context.Context, accountID string, in UpdateAccountInput) (*entity.FinanceAccount, error) {
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, accountID)
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: nombre de cuenta vacío", domain.ErrInvalidInput)
		}
		account.Name = *in.Name
	}
	if in.Active != nil {
		account.Active = *in.Active
	}
	account.UpdatedAt = time.Now()
	if err := uc.accountRepo.Update(account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAccount borra una cuenta solo si no tiene transacciones; si las
// tiene devuelve Conflict (el histórico debe conservarse: desactívela).
func (uc *FinanceUseCase) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, accountID)
	}
	count, err := uc.trxRepo.CountByAccount(accountID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: la cuenta %s tiene %d transacciones, desactívela en su lugar", domain.ErrConflict, account.Name, count)
	}
	return uc.accountRepo.Delete(accountID)
}

// GetAccount obtiene una cuenta por id.
func (uc *FinanceUseCase) GetAccount(ctx context.Context, accountID string) (*entity.FinanceAccount, error) {
	account, err := uc.accountRepo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, accountID)
	}
	return account, nil
}

// ListAccounts lista cuentas, con o sin las inactivas.
func (uc *FinanceUseCase) ListAccounts(ctx context.Context, includeInactive bool) ([]*entity.FinanceAccount, error) {
	return uc.accountRepo.List(includeInactive)
}

// -------- Categorías --------

// CreateCategory crea una categoría de ingreso/gasto.
func (uc *FinanceUseCase) CreateCategory(ctx context.Context, name string) (*entity.FinanceCategory, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: nombre de categoría requerido", domain.ErrInvalidInput)
	}
	category := &entity.FinanceCategory{
		ID:        uuid.New().String(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if err := uc.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory actualiza nombre o estado de una categoría.
func (uc *FinanceUseCase) UpdateCategory(ctx context.Context, categoryID string, name *string, active *bool) (*entity.FinanceCategory, error) {
	category, err := uc.categoryRepo.GetByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	if name != nil {
		if *name == "" {
			return nil, fmt.Errorf("%w: nombre de categoría vacío", domain.ErrInvalidInput)
		}
		category.Name = *name
	}
	if active != nil {
		category.Active = *active
	}
	if err := uc.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory borra una categoría solo si ninguna transacción la referencia.
func (uc *FinanceUseCase) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := uc.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, categoryID)
	}
	count, err := uc.trxRepo.CountByCategory(categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: la categoría %s tiene %d transacciones, desactívela en su lugar", domain.ErrConflict, category.Name, count)
	}
	return uc.categoryRepo.Delete(categoryID)
}

// ListCategories lista todas las categorías.
func (uc *FinanceUseCase) ListCategories(ctx context.Context) ([]*entity.FinanceCategory, error) {
	return uc.categoryRepo.List()
}

// -------- Transacciones --------

// PostTransactionInput entrada para registrar una transacción de caja.
// ExchangeRate opcional: si es nil y la cuenta no es USD, se toma la tasa
// global; si tampoco hay, se usa 1 y se deja constancia en el log.
type PostTransactionInput struct {
	AccountID    string
	CategoryID   string
	OrderID      string
	Type         entity.TransactionType
	Amount       decimal.Decimal
	ExchangeRate *decimal.Decimal
	Description  string
	ActorID      string
}

// PostTransaction registra la transacción y muta el saldo de la cuenta en una
// sola transacción de BD. La cuenta se bloquea para serializar saldos.
func (uc *FinanceUseCase) PostTransaction(ctx context.Context, in PostTransactionInput) (*entity.FinanceTransaction, error) {
	if in.AccountID == "" {
		return nil, fmt.Errorf("%w: cuenta requerida", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: tipo de transacción %q", domain.ErrInvalidInput, in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el monto debe ser positivo", domain.ErrInvalidInput)
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: la tasa de cambio debe ser positiva", domain.ErrInvalidInput)
	}
	if in.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, fmt.Errorf("%w: categoría %s", domain.ErrNotFound, in.CategoryID)
		}
	}

	var trx *entity.FinanceTransaction
	err := uc.txRunner.RunFinance(ctx, func(
		accountRepo repository.FinanceAccountRepository,
		trxRepo repository.FinanceTransactionRepository,
	) error {
		account, err := accountRepo.GetForUpdate(in.AccountID)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, in.AccountID)
		}
		if !account.Active {
			return fmt.Errorf("%w: la cuenta %s está inactiva", domain.ErrConflict, account.Name)
		}

		rate, err := uc.resolveRate(account.Currency, in.ExchangeRate)
		if err != nil {
			return err
		}
		amountUSD := in.Amount
		if account.Currency != entity.CurrencyUSD {
			amountUSD = in.Amount.Div(rate)
		}

		trx = &entity.FinanceTransaction{
			ID:           uuid.New().String(),
			AccountID:    account.ID,
			CategoryID:   in.CategoryID,
			OrderID:      in.OrderID,
			Type:         in.Type,
			Amount:       in.Amount,
			ExchangeRate: rate,
			AmountUSD:    amountUSD,
			Description:  in.Description,
			CreatedBy:    in.ActorID,
			CreatedAt:    time.Now(),
		}
		if err := trxRepo.Create(trx); err != nil {
			return err
		}
		return accountRepo.UpdateBalance(account.ID, account.Balance.Add(trx.SignedAmount()))
	})
	if err != nil {
		return nil, err
	}
	return trx, nil
}

// resolveRate resuelve la tasa VES/USD a fijar en la transacción:
// explícita > USD (1) > tasa global > 1 (con aviso, para no bloquear la caja).
// La tasa explícita prevalece siempre, también en cuentas USD, para que la
// transacción guarde exactamente lo que el caller indicó.
func (uc *FinanceUseCase) resolveRate(currency entity.Currency, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}
	if currency == entity.CurrencyUSD {
		return decimal.NewFromInt(1), nil
	}
	rate, err := uc.settingsRepo.GetExchangeRate()
	if err != nil {
		return decimal.Zero, err
	}
	if rate.IsPositive() {
		return rate, nil
	}
	uc.log.Warn().
		Str("currency", string(currency)).
		Msg("sin tasa de cambio configurada, registrando con tasa 1; el equivalente USD quedará distorsionado")
	return decimal.NewFromInt(1), nil
}

// GetTransaction obtiene una transacción por id.
func (uc *FinanceUseCase) GetTransaction(ctx context.Context, trxID string) (*entity.FinanceTransaction, error) {
	trx, err := uc.trxRepo.GetByID(trxID)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, fmt.Errorf("%w: transacción %s", domain.ErrNotFound, trxID)
	}
	return trx, nil
}
