// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the blockchain.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Starting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// Block waiting to receive events and send them to the client.
	for {
		select {
		case e, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteJSON(e); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the origin block of the chain.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen, err := h.State.Genesis()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(gen), http.StatusOK)
}

// Blocks returns every block from the tip back to the origin.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks, err := h.State.Blocks()
	if err != nil {
		return err
	}

	blocks := make([]block, len(dbBlocks))
	for i, dbBlock := range dbBlocks {
		blocks[i] = toBlock(dbBlock)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Balance returns the spendable value of an address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	bal, err := h.State.Balance(address)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, balance{Address: address, Balance: bal}, http.StatusOK)
}

// UnspentOutputs returns the unspent outputs locked with an address.
func (h Handlers) UnspentOutputs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbUTXOs, err := h.State.UnspentOutputs(web.Param(r, "address"))
	if err != nil {
		return err
	}

	utxos := make([]utxo, len(dbUTXOs))
	for i, u := range dbUTXOs {
		utxos[i] = toUTXO(u)
	}

	return web.Respond(ctx, w, utxos, http.StatusOK)
}

// Verify checks the integrity of the stored chain.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := h.State.Verify(); err != nil {
		return web.Respond(ctx, w, verification{Status: "invalid", Error: err.Error()}, http.StatusConflict)
	}

	return web.Respond(ctx, w, verification{Status: "ok"}, http.StatusOK)
}

// Send moves value between addresses by mining a block with the transfer.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req SendRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("send", "traceid", web.GetTraceID(ctx), "from", req.From, "to", req.To, "amount", req.Amount)

	dbBlock, err := h.State.Send(req.From, req.To, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrInsufficientFunds), errors.Is(err, database.ErrInvalidTransaction):
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(dbBlock), http.StatusCreated)
}

// Mine mines a block paying the subsidy to an address.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req MineRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "address", req.Address)

	dbBlock, err := h.State.Mine(req.Address, req.Data)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(dbBlock), http.StatusCreated)
}
