package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/tienda-backoffice/internal/application/dto"
	"github.com/tu-usuario/tienda-backoffice/internal/application/finance"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// FinanceHandler maneja las peticiones HTTP del libro financiero (protegido, admin).
type FinanceHandler struct {
	uc *finance.FinanceUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(uc *finance.FinanceUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

func toAccountResponse(a *entity.FinanceAccount) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  string(a.Currency),
		Balance:   a.Balance,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
	}
}

func toTransactionResponse(t *entity.FinanceTransaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:           t.ID,
		AccountID:    t.AccountID,
		CategoryID:   t.CategoryID,
		OrderID:      t.OrderID,
		Type:         string(t.Type),
		Amount:       t.Amount,
		ExchangeRate: t.ExchangeRate,
		AmountUSD:    t.AmountUSD,
		Description:  t.Description,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
	}
}

// CreateAccount godoc
// @Summary      Crear cuenta financiera
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "name, currency, initial_balance"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/finance/accounts [post]
func (h *FinanceHandler) CreateAccount(c *fiber.Ctx) error {
	var in dto.CreateAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	account, err := h.uc.CreateAccount(c.Context(), finance.CreateAccountInput{
		Name:           in.Name,
		Currency:       entity.Currency(in.Currency),
		InitialBalance: in.InitialBalance,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(account))
}

// UpdateAccount godoc
// @Summary      Editar cuenta financiera
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la cuenta"
// @Param        body  body  dto.UpdateAccountRequest  true  "name, active"
// @Success      200   {object}  dto.AccountResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/finance/accounts/{id} [put]
func (h *FinanceHandler) UpdateAccount(c *fiber.Ctx) error {
	var in dto.UpdateAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	account, err := h.uc.UpdateAccount(c.Context(), c.Params("id"), finance.UpdateAccountInput{
		Name:   in.Name,
		Active: in.Active,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAccountResponse(account))
}

// DeleteAccount godoc
// @Summary      Borrar cuenta financiera
// @Description  Solo cuentas sin transacciones; con historial responde 409.
// @Tags         finance
// @Security     Bearer
// @Param        id  path  string  true  "ID de la cuenta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/finance/accounts/{id} [delete]
func (h *FinanceHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.uc.DeleteAccount(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAccounts godoc
// @Summary      Listar cuentas financieras
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        include_inactive  query  bool  false  "Incluir cuentas inactivas"
// @Success      200  {array}  dto.AccountResponse
// @Router       /api/finance/accounts [get]
func (h *FinanceHandler) ListAccounts(c *fiber.Ctx) error {
	list, err := h.uc.ListAccounts(c.Context(), c.QueryBool("include_inactive"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AccountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	return c.JSON(out)
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CategoryRequest  true  "name"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/finance/categories [post]
func (h *FinanceHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	category, err := h.uc.CreateCategory(c.Context(), in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CategoryResponse{ID: category.ID, Name: category.Name, Active: category.Active})
}

// UpdateCategory godoc
// @Summary      Editar categoría
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.CategoryRequest  true  "name, active"
// @Success      200   {object}  dto.CategoryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/finance/categories/{id} [put]
func (h *FinanceHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.CategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var name *string
	if in.Name != "" {
		name = &in.Name
	}
	category, err := h.uc.UpdateCategory(c.Context(), c.Params("id"), name, in.Active)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CategoryResponse{ID: category.ID, Name: category.Name, Active: category.Active})
}

// DeleteCategory godoc
// @Summary      Borrar categoría
// @Description  Solo categorías sin transacciones; con historial responde 409.
// @Tags         finance
// @Security     Bearer
// @Param        id  path  string  true  "ID de la categoría"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/finance/categories/{id} [delete]
func (h *FinanceHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.uc.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CategoryResponse
// @Router       /api/finance/categories [get]
func (h *FinanceHandler) ListCategories(c *fiber.Ctx) error {
	list, err := h.uc.ListCategories(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, cat := range list {
		out = append(out, dto.CategoryResponse{ID: cat.ID, Name: cat.Name, Active: cat.Active})
	}
	return c.JSON(out)
}

// PostTransaction godoc
// @Summary      Registrar transacción de caja
// @Description  Fija la tasa de cambio y el equivalente USD al momento del
//
//	registro y muta el saldo de la cuenta en la misma transacción de BD.
//
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostTransactionRequest  true  "account_id, type, amount, exchange_rate opcional"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/finance/transactions [post]
func (h *FinanceHandler) PostTransaction(c *fiber.Ctx) error {
	var in dto.PostTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	trx, err := h.uc.PostTransaction(c.Context(), finance.PostTransactionInput{
		AccountID:    in.AccountID,
		CategoryID:   in.CategoryID,
		OrderID:      in.OrderID,
		Type:         entity.TransactionType(in.Type),
		Amount:       in.Amount,
		ExchangeRate: in.ExchangeRate,
		Description:  in.Description,
		ActorID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(trx))
}

// GetTransaction godoc
// @Summary      Obtener transacción
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/finance/transactions/{id} [get]
func (h *FinanceHandler) GetTransaction(c *fiber.Ctx) error {
	trx, err := h.uc.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTransactionResponse(trx))
}

// DailySummary godoc
// @Summary      Resumen diario de caja
// @Description  Proyección de solo lectura: totales por moneda y neto por
//
//	cuenta del día indicado (default hoy).
//
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        day  query  string  false  "Día (YYYY-MM-DD, default hoy)"
// @Success      200  {object}  finance.DailySummary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/finance/summary/daily [get]
func (h *FinanceHandler) DailySummary(c *fiber.Ctx) error {
	day := time.Now()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "day debe ser YYYY-MM-DD"})
		}
		day = parsed
	}
	summary, err := h.uc.GetDailySummary(c.Context(), day)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
