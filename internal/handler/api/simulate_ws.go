package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"StockCast/internal/domain/models"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
)

const wsWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Frame types sent on /ws/simulate.
const (
	FrameProgress = "progress"
	FrameResult   = "result"
	FrameError    = "error"
)

type wsFrame struct {
	Type  string          `json:"type"`
	Done  int             `json:"done,omitempty"`
	Total int             `json:"total,omitempty"`
	Data  any             `json:"data,omitempty"`
	Error *xhttp.AppError `json:"error,omitempty"`
}

// SimulateStream runs a simulation and streams progress frames followed by a
// single result or error frame, then closes the socket. Parameters are the
// same as GET /api/simulate and are validated before the upgrade. Closing
// the socket early cancels the run.
func (h *EngineHandler) SimulateStream(c echo.Context) error {
	req := &models.SimulateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Any inbound frame error, including a client close, stops the run.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	frames := make(chan wsFrame, 16)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for f := range frames {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(f); err != nil {
				cancel()
				for range frames {
				}
				return
			}
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	progress := func(done, total int) {
		select {
		case frames <- wsFrame{Type: FrameProgress, Done: done, Total: total}:
		default: // slow reader, skip this update
		}
	}
	res, err := h.simulate.Simulate(ctx, simulateParams(req), progress)
	if err != nil {
		appErr := toAppError(err)
		if appErr.Status >= 500 && ctx.Err() == nil {
			h.logger.Error("simulate stream failed", xlogger.Error(err))
		}
		frames <- wsFrame{Type: FrameError, Error: appErr}
	} else {
		frames <- wsFrame{Type: FrameResult, Data: toSimulateResponse(res)}
	}
	close(frames)
	<-written
	return nil
}
