// Package webhook despacha notificaciones de devoluciones y cambios hacia el
// colaborador externo (típicamente un bot de mensajería de la tienda).
// El despacho es fire-and-forget: corre en su propia goroutine después del
// commit y un fallo solo deja rastro en el log.
package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tu-usuario/tienda-backoffice/internal/application/orders"
	"github.com/tu-usuario/tienda-backoffice/internal/application/returns"
	"github.com/tu-usuario/tienda-backoffice/pkg/config"
	"github.com/tu-usuario/tienda-backoffice/pkg/logger"
)

var _ returns.Notifier = (*Notifier)(nil)
var _ orders.Notifier = (*Notifier)(nil)

// Notifier implementa returns.Notifier y orders.Notifier sobre HTTP POST JSON.
type Notifier struct {
	url    string
	client *http.Client
	log    *logger.Logger
}

// NewNotifier construye el despachador. Con URL vacía las notificaciones se
// descartan con un log de debug (instalaciones sin bot configurado).
func NewNotifier(cfg config.WebhookConfig, log *logger.Logger) *Notifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// NotifyReturn envía la notificación de devolución completada.
func (n *Notifier) NotifyReturn(payload returns.ReturnNotification) {
	n.dispatch("return_completed", payload.ControlID, payload)
}

// NotifyExchange envía la notificación de cambio de línea.
func (n *Notifier) NotifyExchange(payload orders.ExchangeNotification) {
	n.dispatch("item_exchanged", payload.OrderID, payload)
}

type envelope struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

func (n *Notifier) dispatch(event, ref string, data any) {
	if n.url == "" {
		n.log.Debug().Str("event", event).Str("ref", ref).Msg("webhook sin configurar, notificación descartada")
		return
	}
	go func() {
		body, err := json.Marshal(envelope{
			Event:     event,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Data:      data,
		})
		if err != nil {
			n.log.Error().Err(err).Str("event", event).Msg("serializar notificación webhook")
			return
		}
		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			n.log.Warn().Err(err).Str("event", event).Str("ref", ref).Msg("enviar notificación webhook")
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			n.log.Warn().Int("status", resp.StatusCode).Str("event", event).Str("ref", ref).Msg("webhook respondió con error")
			return
		}
		n.log.Debug().Str("event", event).Str("ref", ref).Msg("notificación webhook enviada")
	}()
}
