package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/wireroom-server/internal/config"
	"github.com/vovakirdan/wireroom-server/internal/core"
	"github.com/vovakirdan/wireroom-server/internal/proto"
	"github.com/vovakirdan/wireroom-server/internal/utils"
)

const errCodeRateLimited = "rate_limited"

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub     *core.Hub
	log     *zerolog.Logger
	accept  *websocket.AcceptOptions
	limit   int64
	perSec  float64
	burst   int
	newConn func() string
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		log:     logger,
		accept:  acceptOptions(cfg.AllowedOrigins),
		limit:   cfg.MaxMessageBytes,
		perSec:  cfg.RateLimitPerSecond,
		burst:   cfg.RateLimitBurst,
		newConn: utils.NewID,
	}
}

// acceptOptions turns configured origins ("http://host:port") into websocket
// origin patterns ("host:port"). A "*" entry disables the origin check.
func acceptOptions(origins []string) *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, o := range origins {
		if o == "*" {
			opts.InsecureSkipVerify = true
			continue
		}
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		opts.OriginPatterns = append(opts.OriginPatterns, strings.TrimSuffix(o, "/"))
	}
	return opts
}

func (h *WSHandler) newLimiter() *rate.Limiter {
	if h.perSec <= 0 {
		return nil
	}
	burst := h.burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(h.perSec), burst)
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.limit > 0 {
		conn.SetReadLimit(h.limit)
	}

	client := core.NewClient(h.newConn(), "")
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := h.newLimiter()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("read ws inbound")
			return err
		}

		// Every frame counts against the budget, malformed ones included.
		if limiter != nil && !limiter.Allow() {
			h.log.Debug().Str("client_id", client.ID).Msg("inbound rate limited")
			if err := h.writeError(ctx, conn, &proto.Error{Code: errCodeRateLimited, Msg: "too many messages"}); err != nil {
				return err
			}
			continue
		}

		var inbound proto.Inbound
		if typ != websocket.MessageText || json.Unmarshal(data, &inbound) != nil {
			if err := h.writeError(ctx, conn, invalidMessage("message is not a JSON envelope")); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			h.log.Debug().Str("client_id", client.ID).Str("type", inbound.Type).Str("code", protoErr.Code).Msg("inbound rejected")
			if err := h.writeError(ctx, conn, protoErr); err != nil {
				return err
			}
			continue
		}
		h.hub.Dispatch(ctx, client, cmd)
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, perr *proto.Error) error {
	return wsjson.Write(ctx, conn, errorOutbound(perr))
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Debug().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
