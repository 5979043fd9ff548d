// Package apptest provee dobles en memoria de los puertos de persistencia
// para los tests de los casos de uso. No simula transacciones reales: el
// TxRunner de prueba ejecuta la función directamente sobre el mismo Store,
// suficiente para verificar la lógica de negocio sin una base de datos.
package apptest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/application/inventory"
	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/internal/domain"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*TxRunner)(nil)
	_ orders.TxRunner    = (*TxRunner)(nil)
	_ returns.TxRunner   = (*TxRunner)(nil)
	_ finance.TxRunner   = (*TxRunner)(nil)

	_ repository.VariantRepository            = (*VariantRepo)(nil)
	_ repository.ProductRepository            = (*ProductRepo)(nil)
	_ repository.StockMovementRepository      = (*MovementRepo)(nil)
	_ repository.OrderRepository              = (*OrderRepo)(nil)
	_ repository.ReturnRepository             = (*ReturnRepo)(nil)
	_ repository.StoreCreditRepository        = (*CreditRepo)(nil)
	_ repository.ProfileRepository            = (*ProfileRepo)(nil)
	_ repository.FinanceAccountRepository     = (*AccountRepo)(nil)
	_ repository.FinanceCategoryRepository    = (*CategoryRepo)(nil)
	_ repository.FinanceTransactionRepository = (*TrxRepo)(nil)
	_ repository.SettingsRepository           = (*SettingsRepo)(nil)
	_ repository.UserRepository               = (*UserRepo)(nil)

	_ returns.Notifier            = (*Notifier)(nil)
	_ orders.Notifier             = (*Notifier)(nil)
	_ returns.CreditNoteGenerator = (*PDFGenerator)(nil)
)

// Store estado compartido por todos los repositorios falsos.
// Los Get devuelven copias para imitar el comportamiento de una fila leída:
// mutar la copia no afecta el estado hasta el Update correspondiente.
type Store struct {
	Variants     []*entity.ProductVariant
	Products     []*entity.Product
	Movements    []*entity.StockMovement
	Orders       []*entity.Order
	Items        []*entity.OrderItem
	Returns      []*entity.ReturnRecord
	ReturnLines  []*entity.ReturnLine
	Credits      []*entity.StoreCreditEntry
	Profiles     []*entity.CustomerProfile
	Accounts     []*entity.FinanceAccount
	Categories   []*entity.FinanceCategory
	Transactions []*entity.FinanceTransaction
	Users        []*entity.User

	// Rate tasa VES/USD que devuelve el SettingsRepo; cero = sin configurar.
	Rate decimal.Decimal
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{}
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// TxRunner implementa los cuatro contratos transaccionales de la aplicación
// ejecutando la función con repositorios atados al mismo Store.
type TxRunner struct {
	S *Store
}

func (t *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(&MovementRepo{t.S}, &VariantRepo{t.S}, &ProductRepo{t.S})
}

func (t *TxRunner) RunOrders(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	creditRepo repository.StoreCreditRepository,
	profileRepo repository.ProfileRepository,
) error) error {
	return fn(&OrderRepo{t.S}, &MovementRepo{t.S}, &VariantRepo{t.S}, &ProductRepo{t.S}, &CreditRepo{t.S}, &ProfileRepo{t.S})
}

func (t *TxRunner) RunReturns(ctx context.Context, fn func(
	returnRepo repository.ReturnRepository,
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	creditRepo repository.StoreCreditRepository,
	profileRepo repository.ProfileRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return fn(&ReturnRepo{t.S}, &MovementRepo{t.S}, &VariantRepo{t.S}, &ProductRepo{t.S}, &CreditRepo{t.S}, &ProfileRepo{t.S}, &OrderRepo{t.S})
}

func (t *TxRunner) RunFinance(ctx context.Context, fn func(
	accountRepo repository.FinanceAccountRepository,
	trxRepo repository.FinanceTransactionRepository,
) error) error {
	return fn(&AccountRepo{t.S}, &TrxRepo{t.S})
}

// ── Variantes y productos ────────────────────────────────────────────────────

type VariantRepo struct{ S *Store }

func (r *VariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	for _, v := range r.S.Variants {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *VariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	return r.GetByID(id)
}

func (r *VariantRepo) ListByProduct(productID string) ([]*entity.ProductVariant, error) {
	var out []*entity.ProductVariant
	for _, v := range r.S.Variants {
		if v.ProductID == productID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *VariantRepo) Create(v *entity.ProductVariant) error {
	for _, existing := range r.S.Variants {
		if existing.ID == v.ID {
			return fmt.Errorf("%w: variante %s ya existe", domain.ErrConflict, v.ID)
		}
	}
	cp := *v
	r.S.Variants = append(r.S.Variants, &cp)
	return nil
}

func (r *VariantRepo) UpdateStock(id string, stock int64) error {
	for _, v := range r.S.Variants {
		if v.ID == id {
			v.Stock = stock
			return nil
		}
	}
	return fmt.Errorf("%w: variante %s", domain.ErrNotFound, id)
}

type ProductRepo struct{ S *Store }

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	for _, p := range r.S.Products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *ProductRepo) UpdateStock(id string, stock int64) error {
	for _, p := range r.S.Products {
		if p.ID == id {
			p.Stock = stock
			return nil
		}
	}
	return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
}

// ── Libro de stock ───────────────────────────────────────────────────────────

type MovementRepo struct{ S *Store }

func (r *MovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.S.Movements = append(r.S.Movements, &cp)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.S.Movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) GetSaleByOrderItem(orderItemID string) (*entity.StockMovement, error) {
	for _, m := range r.S.Movements {
		if m.OrderItemID == orderItemID && m.Type == entity.MovementSale {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByVariant(variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.S.Movements {
		if m.VariantID != variantID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) SumByVariant(variantID string) (int64, error) {
	var sum int64
	for _, m := range r.S.Movements {
		if m.VariantID == variantID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

// ── Órdenes ──────────────────────────────────────────────────────────────────

type OrderRepo struct{ S *Store }

func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	for _, o := range r.S.Orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *OrderRepo) UpdateTotal(id string, total decimal.Decimal) error {
	for _, o := range r.S.Orders {
		if o.ID == id {
			o.Total = total
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
}

func (r *OrderRepo) Delete(id string) error {
	for i, o := range r.S.Orders {
		if o.ID == id {
			r.S.Orders = append(r.S.Orders[:i], r.S.Orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
}

func (r *OrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	for _, it := range r.S.Items {
		if it.OrderID == orderID {
			cp := *it
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *OrderRepo) GetItem(itemID string) (*entity.OrderItem, error) {
	for _, it := range r.S.Items {
		if it.ID == itemID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	cp := *item
	r.S.Items = append(r.S.Items, &cp)
	return nil
}

func (r *OrderRepo) UpdateItem(item *entity.OrderItem) error {
	for i, it := range r.S.Items {
		if it.ID == item.ID {
			cp := *item
			r.S.Items[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, item.ID)
}

func (r *OrderRepo) DeleteItem(itemID string) error {
	for i, it := range r.S.Items {
		if it.ID == itemID {
			r.S.Items = append(r.S.Items[:i], r.S.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, itemID)
}

// ── Devoluciones ─────────────────────────────────────────────────────────────

type ReturnRepo struct{ S *Store }

func (r *ReturnRepo) Create(rec *entity.ReturnRecord) error {
	cp := *rec
	r.S.Returns = append(r.S.Returns, &cp)
	return nil
}

func (r *ReturnRepo) GetByID(id string) (*entity.ReturnRecord, error) {
	for _, rec := range r.S.Returns {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ReturnRepo) GetForUpdate(id string) (*entity.ReturnRecord, error) {
	return r.GetByID(id)
}

func (r *ReturnRepo) Update(rec *entity.ReturnRecord) error {
	for i, existing := range r.S.Returns {
		if existing.ID == rec.ID {
			cp := *rec
			r.S.Returns[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: devolución %s", domain.ErrNotFound, rec.ID)
}

func (r *ReturnRepo) List(status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnRecord, error) {
	var out []*entity.ReturnRecord
	for _, rec := range r.S.Returns {
		if status != "" && rec.Status != status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReturnRepo) CreateLine(l *entity.ReturnLine) error {
	cp := *l
	r.S.ReturnLines = append(r.S.ReturnLines, &cp)
	return nil
}

func (r *ReturnRepo) GetLines(returnID string) ([]*entity.ReturnLine, error) {
	var out []*entity.ReturnLine
	for _, l := range r.S.ReturnLines {
		if l.ReturnID == returnID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Crédito de tienda y perfiles ─────────────────────────────────────────────

type CreditRepo struct{ S *Store }

func (r *CreditRepo) Create(e *entity.StoreCreditEntry) error {
	cp := *e
	r.S.Credits = append(r.S.Credits, &cp)
	return nil
}

func (r *CreditRepo) ListByProfile(profileID string, limit, offset int) ([]*entity.StoreCreditEntry, error) {
	var out []*entity.StoreCreditEntry
	for _, e := range r.S.Credits {
		if e.ProfileID == profileID {
			cp := *e
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type ProfileRepo struct{ S *Store }

func (r *ProfileRepo) GetByID(id string) (*entity.CustomerProfile, error) {
	for _, p := range r.S.Profiles {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProfileRepo) GetForUpdate(id string) (*entity.CustomerProfile, error) {
	return r.GetByID(id)
}

func (r *ProfileRepo) UpdateCredit(id string, credit decimal.Decimal) error {
	for _, p := range r.S.Profiles {
		if p.ID == id {
			p.StoreCredit = credit
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: perfil %s", domain.ErrNotFound, id)
}

// ── Finanzas ─────────────────────────────────────────────────────────────────

type AccountRepo struct{ S *Store }

func (r *AccountRepo) Create(a *entity.FinanceAccount) error {
	cp := *a
	r.S.Accounts = append(r.S.Accounts, &cp)
	return nil
}

func (r *AccountRepo) GetByID(id string) (*entity.FinanceAccount, error) {
	for _, a := range r.S.Accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *AccountRepo) GetForUpdate(id string) (*entity.FinanceAccount, error) {
	return r.GetByID(id)
}

func (r *AccountRepo) Update(a *entity.FinanceAccount) error {
	for i, existing := range r.S.Accounts {
		if existing.ID == a.ID {
			cp := *a
			r.S.Accounts[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, a.ID)
}

func (r *AccountRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	for _, a := range r.S.Accounts {
		if a.ID == id {
			a.Balance = balance
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
}

func (r *AccountRepo) Delete(id string) error {
	for i, a := range r.S.Accounts {
		if a.ID == id {
			r.S.Accounts = append(r.S.Accounts[:i], r.S.Accounts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: cuenta %s", domain.ErrNotFound, id)
}

func (r *AccountRepo) List(includeInactive bool) ([]*entity.FinanceAccount, error) {
	var out []*entity.FinanceAccount
	for _, a := range r.S.Accounts {
		if !includeInactive && !a.Active {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type CategoryRepo struct{ S *Store }

func (r *CategoryRepo) Create(c *entity.FinanceCategory) error {
	cp := *c
	r.S.Categories = append(r.S.Categories, &cp)
	return nil
}

func (r *CategoryRepo) GetByID(id string) (*entity.FinanceCategory, error) {
	for _, c := range r.S.Categories {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) Update(c *entity.FinanceCategory) error {
	for i, existing := range r.S.Categories {
		if existing.ID == c.ID {
			cp := *c
			r.S.Categories[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, c.ID)
}

func (r *CategoryRepo) Delete(id string) error {
	for i, c := range r.S.Categories {
		if c.ID == id {
			r.S.Categories = append(r.S.Categories[:i], r.S.Categories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: categoría %s", domain.ErrNotFound, id)
}

func (r *CategoryRepo) List() ([]*entity.FinanceCategory, error) {
	out := make([]*entity.FinanceCategory, 0, len(r.S.Categories))
	for _, c := range r.S.Categories {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type TrxRepo struct{ S *Store }

func (r *TrxRepo) Create(t *entity.FinanceTransaction) error {
	cp := *t
	r.S.Transactions = append(r.S.Transactions, &cp)
	return nil
}

func (r *TrxRepo) GetByID(id string) (*entity.FinanceTransaction, error) {
	for _, t := range r.S.Transactions {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *TrxRepo) ListByDay(day time.Time) ([]*entity.FinanceTransaction, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var out []*entity.FinanceTransaction
	for _, t := range r.S.Transactions {
		if t.CreatedAt.Before(start) || !t.CreatedAt.Before(end) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *TrxRepo) CountByAccount(accountID string) (int64, error) {
	var n int64
	for _, t := range r.S.Transactions {
		if t.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (r *TrxRepo) CountByCategory(categoryID string) (int64, error) {
	var n int64
	for _, t := range r.S.Transactions {
		if t.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// SettingsRepo devuelve la tasa configurada en el Store.
type SettingsRepo struct{ S *Store }

func (r *SettingsRepo) GetExchangeRate() (decimal.Decimal, error) {
	return r.S.Rate, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type UserRepo struct{ S *Store }

func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.S.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Create(u *entity.User) error {
	for _, existing := range r.S.Users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email %s ya registrado", domain.ErrConflict, u.Email)
		}
	}
	cp := *u
	r.S.Users = append(r.S.Users, &cp)
	return nil
}

// ── Notificador y PDF de prueba ──────────────────────────────────────────────

// Notifier captura las notificaciones despachadas para inspección en tests.
type Notifier struct {
	Returns   []returns.ReturnNotification
	Exchanges []orders.ExchangeNotification
}

func (n *Notifier) NotifyReturn(notif returns.ReturnNotification) {
	n.Returns = append(n.Returns, notif)
}

func (n *Notifier) NotifyExchange(notif orders.ExchangeNotification) {
	n.Exchanges = append(n.Exchanges, notif)
}

// PDFGenerator genera un contenido fijo; registra las invocaciones.
type PDFGenerator struct {
	Calls int
}

func (g *PDFGenerator) Generate(record *entity.ReturnRecord, profile *entity.CustomerProfile, lines []*entity.ReturnLine) ([]byte, error) {
	g.Calls = g.Calls + 1
	return []byte("%PDF-1.7 nota de crédito " + record.ControlID), nil
}
