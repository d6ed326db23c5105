package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/calculator"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// calcMessage is sent to the browser for every delivered recompute.
type calcMessage struct {
	Type     string          `json:"type"`
	Revision uint64          `json:"revision"`
	Result   *pricing.Result `json:"result,omitempty"`
	Payback  string          `json:"payback,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func messageFor(u calculator.Update) calcMessage {
	if u.Err != nil {
		return calcMessage{Type: "error", Revision: u.Revision, Error: u.Err.Error()}
	}
	res := u.Result
	return calcMessage{Type: "result", Revision: u.Revision, Result: &res, Payback: res.Payback()}
}

// handleCalculator runs one Controller per connection. The browser sends the
// full selection on every change; results arrive after the debounce, and only
// for the latest selection.
func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctrl := calculator.NewController(s.debounce)
	defer ctrl.Close()

	var writeMu sync.Mutex
	send := func(m calcMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			log.Debug().Err(err).Msg("calculator write failed")
		}
	}

	ctrl.Subscribe(func(u calculator.Update) { send(messageFor(u)) })
	send(messageFor(ctrl.Compute()))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("calculator connection closed")
			}
			return
		}
		var p pricing.Params
		if err := json.Unmarshal(raw, &p); err != nil {
			_, rev := ctrl.Params()
			send(calcMessage{Type: "error", Revision: rev, Error: "malformed message"})
			continue
		}
		ctrl.Update(func(cur *pricing.Params) { *cur = p })
	}
}
