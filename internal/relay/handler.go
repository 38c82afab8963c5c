package relay

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wsupload/service/internal/logger"
	"github.com/wsupload/service/internal/middleware"
)

// writeWait bounds a single reply write.
const writeWait = 10 * time.Second

// Handler upgrades requests to WebSocket and runs the per-connection loop.
type Handler struct {
	proc     *Processor
	metrics  *Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler. allowedOrigins lists accepted Origin values;
// "*" or an empty list accepts any origin.
func NewHandler(proc *Processor, allowedOrigins []string) *Handler {
	return &Handler{
		proc:    proc,
		metrics: proc.metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeHTTP godoc
//
//	@Summary		Upload socket
//	@Description	WebSocket endpoint. Send text frames of the form {"data": "<base64>"}; each frame is uploaded to the configured bucket and answered with a text reply. Invalid frames end the connection.
//	@Tags			upload
//	@Param			token	query	string	false	"Access token when auth is enabled"
//	@Success		101	{string}	string	"Switching Protocols"
//	@Failure		401	{object}	response.Envelope
//	@Router			/ws [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		logger.Log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.NewString()
	log := logger.Log.With().
		Str("conn_id", connID).
		Str("remote", conn.RemoteAddr().String()).
		Str("subject", middleware.Subject(r.Context())).
		Logger()
	ctx := log.WithContext(r.Context())

	// Unblock the read loop when the server shuts down.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	h.metrics.activeConnections.Inc()
	defer h.metrics.activeConnections.Dec()

	log.Info().Msg("websocket connection established")
	h.serve(ctx, conn, connID)
	conn.Close()
	log.Info().Msg("websocket connection closed")
}

// serve reads frames until the client leaves or a terminal error occurs.
func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, connID string) {
	log := zerolog.Ctx(ctx)
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) && ctx.Err() == nil {
				log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		reply, perr := h.proc.Process(ctx, connID, frame)
		if perr != nil {
			reply = perr.Reply()
		}

		if err := writeText(conn, reply); err != nil {
			log.Warn().Err(err).Msg("websocket write error")
			return
		}

		if perr != nil && perr.Kind.Terminal() {
			log.Error().Err(perr).Msg("websocket error, closing connection")
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
			return
		}
	}
}

func writeText(conn *websocket.Conn, text string) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		// Same-host requests are always allowed.
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
