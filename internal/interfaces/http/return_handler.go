package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/tienda-backoffice/internal/application/dto"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/internal/domain/entity"
)

// ReturnHandler maneja las peticiones HTTP del motor de devoluciones (protegido).
type ReturnHandler struct {
	uc *returns.ReturnsUseCase
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.ReturnsUseCase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

func toReturnResponse(r *entity.ReturnRecord, lines []*entity.ReturnLine) dto.ReturnResponse {
	out := dto.ReturnResponse{
		ID:             r.ID,
		ControlID:      r.ControlID,
		Kind:           string(r.Kind),
		OrderID:        r.OrderID,
		ProfileID:      r.ProfileID,
		Status:         string(r.Status),
		Reason:         r.Reason,
		AmountCredited: r.AmountCredited,
		AdminNotes:     r.AdminNotes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.ReturnLineResponse{
			ID:          l.ID,
			VariantID:   l.VariantID,
			ProductID:   l.ProductID,
			OrderItemID: l.OrderItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	return out
}

// Create godoc
// @Summary      Crear devolución (pending)
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "profile_id, lines"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]returns.ReturnLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, returns.ReturnLineInput{
			VariantID:   l.VariantID,
			ProductID:   l.ProductID,
			OrderItemID: l.OrderItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}
	record, err := h.uc.CreateReturnRecord(c.Context(), returns.CreateInput{
		ProfileID: in.ProfileID,
		OrderID:   in.OrderID,
		Reason:    in.Reason,
		Lines:     lines,
		ActorID:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReturnResponse(record, nil))
}

// Complete godoc
// @Summary      Completar devolución
// @Description  Repone stock, acredita crédito de tienda y marca las líneas
//
//	devueltas en la orden, como una sola unidad atómica. Re-completar
//	devuelve 409 sin efectos.
//
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la devolución"
// @Param        body  body  dto.ResolveReturnRequest  false  "admin_notes"
// @Success      200   {object}  dto.ReturnResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/complete [post]
func (h *ReturnHandler) Complete(c *fiber.Ctx) error {
	var in dto.ResolveReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	record, err := h.uc.CompleteReturnRecord(c.Context(), c.Params("id"), in.AdminNotes, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReturnResponse(record, nil))
}

// Reject godoc
// @Summary      Rechazar devolución
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la devolución"
// @Param        body  body  dto.ResolveReturnRequest  false  "admin_notes"
// @Success      200   {object}  dto.ReturnResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *fiber.Ctx) error {
	var in dto.ResolveReturnRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	record, err := h.uc.RejectReturnRecord(c.Context(), c.Params("id"), in.AdminNotes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReturnResponse(record, nil))
}

// Process godoc
// @Summary      Devolución directa en un paso
// @Description  Repone stock, acredita el monto indicado y deja el registro
//
//	completed, en una transacción. Devuelve el saldo nuevo del perfil.
//
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessReturnRequest  true  "profile_id, variant_id o product_id, quantity, amount_to_credit"
// @Success      200   {object}  dto.ProcessReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns/process [post]
func (h *ReturnHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	newBalance, err := h.uc.ProcessReturn(c.Context(), returns.ProcessInput{
		ProfileID:      in.ProfileID,
		VariantID:      in.VariantID,
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		AmountToCredit: in.AmountToCredit,
		Reason:         in.Reason,
		OrderID:        in.OrderID,
		OrderItemID:    in.OrderItemID,
		ActorID:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProcessReturnResponse{ProfileID: in.ProfileID, NewBalance: newBalance})
}

// GetByID godoc
// @Summary      Obtener devolución con sus líneas
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	record, lines, err := h.uc.GetReturnRecord(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReturnResponse(record, lines))
}

// List godoc
// @Summary      Listar devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | completed | rejected"
// @Param        limit   query  int     false  "Máximo de filas"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.ReturnResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/returns [get]
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListReturnRecords(c.Context(), entity.ReturnStatus(c.Query("status")), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReturnResponse(r, nil))
	}
	return c.JSON(out)
}

// CreditNote godoc
// @Summary      Nota de crédito en PDF
// @Tags         returns
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la devolución (debe estar completed)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/credit-note [get]
func (h *ReturnHandler) CreditNote(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.CreditNotePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=nota-credito-%s.pdf", c.Params("id")))
	return c.Send(pdfBytes)
}
