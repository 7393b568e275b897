// Package public maintains the group of handlers open to any client:
// wallets, block explorers, and the websocket event feed.
package public

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/business/validate"
	"github.com/decentraland/stoneage-node/business/web/errs"
	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/genesis"
	"github.com/decentraland/stoneage-node/foundation/blockchain/mempool"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
	"github.com/decentraland/stoneage-node/foundation/events"
	"github.com/decentraland/stoneage-node/foundation/web"
)

// Handlers manages the set of public, client-facing endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Mempool *mempool.Mempool
	Evts    *events.Events
	GenCfg  genesis.Genesis
	WS      websocket.Upgrader
}

// Events upgrades the connection to a websocket and streams every
// chain and miner event line to the client until it disconnects.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis configuration this chain was seeded with.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.GenCfg, http.StatusOK)
}

// Pixels returns every currently owned pixel on the active chain.
func (h Handlers) Pixels(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pixels := h.Chain.CopyPixels()

	views := make([]pixelView, 0, len(pixels))
	for _, t := range pixels {
		views = append(views, newPixelView(t))
	}

	return web.Respond(ctx, w, views, http.StatusOK)
}

// Pixel returns the transaction that currently owns the pixel named by the
// :x and :y route parameters.
func (h Handlers) Pixel(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	x, err := strconv.ParseInt(web.Param(r, "x"), 10, 32)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid x: %w", err), http.StatusBadRequest)
	}
	y, err := strconv.ParseInt(web.Param(r, "y"), 10, 32)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid y: %w", err), http.StatusBadRequest)
	}

	t, ok := h.Chain.GetPixel(pixel.Position{X: int32(x), Y: int32(y)})
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, newPixelView(t), http.StatusOK)
}

// Tip returns the block at the head of the active chain.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	b, ok := h.Chain.GetTipBlock()
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, newBlockView(b), http.StatusOK)
}

// Block returns the block named by the :hash route parameter, searching
// every known block, not just the active chain.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := parseHash(web.Param(r, "hash"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	hash := crypto.Reverse32(id)

	b, ok := h.Chain.GetBlock(hash)
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, newBlockView(b), http.StatusOK)
}

// Transaction returns the transaction named by the :id route parameter.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := parseHash(web.Param(r, "id"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	hash := crypto.Reverse32(id)

	t, ok := h.Chain.GetTransaction(hash)
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, newTxView(t), http.StatusOK)
}

// MempoolList returns every transaction currently waiting to be mined.
func (h Handlers) MempoolList(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending := h.Mempool.PickBest(-1)

	views := make([]txView, len(pending))
	for i, t := range pending {
		views[i] = newTxView(t)
	}

	return web.Respond(ctx, w, views, http.StatusOK)
}

// SubmitTransaction adds a raw, hex-encoded, already-signed transaction to
// the mempool for the miner to pick up.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitTxRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	raw, err := hex.DecodeString(req.Raw)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid raw transaction: %w", err), http.StatusBadRequest)
	}

	t, err := tx.Deserialize(raw)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid raw transaction: %w", err), http.StatusBadRequest)
	}

	size := h.Mempool.Upsert(t)
	h.Log.Infow("tx accepted", "traceid", v.TraceID, "tx", t.ID(), "mempool", size)

	resp := struct {
		Status string `json:"status"`
		ID     string `json:"id"`
	}{
		Status: "accepted",
		ID:     t.ID(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

func parseHash(s string) ([32]byte, error) {
	var h [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != 32 {
		return h, fmt.Errorf("invalid hash length %q", s)
	}
	copy(h[:], b)
	return h, nil
}
