// Package private maintains the group of handlers reserved for node to
// node traffic: peer discovery and block propagation.
package private

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/business/validate"
	"github.com/decentraland/stoneage-node/business/web/errs"
	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/mempool"
	"github.com/decentraland/stoneage-node/foundation/blockchain/peer"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
	"github.com/decentraland/stoneage-node/foundation/web"
)

// Handlers manages the set of node-to-node endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Mempool *mempool.Mempool
	Peers   *peer.Set
	Host    string
}

// Status reports this node's chain tip, height and known peers, so a
// fresh peer can decide whether it needs to sync.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	peers := h.Peers.Copy(h.Host)
	hosts := make([]string, len(peers))
	for i, p := range peers {
		hosts[i] = p.Host
	}

	tip := h.Chain.GetTip()

	resp := status{
		Tip:        hex.EncodeToString(tip[:]),
		Height:     h.Chain.GetCurrentHeight(),
		KnownPeers: hosts,
		Mempool:    h.Mempool.Count(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitPeer registers a peer host this node learned about, either from
// its own configuration or from another peer's gossip.
func (h Handlers) SubmitPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitPeerRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	added := h.Peers.Add(peer.New(req.Host))
	h.Log.Infow("peer submitted", "traceid", v.TraceID, "host", req.Host, "added", added)

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ProposeBlock takes a block received from a peer, validates it, and if
// accepted, lets the chain manager reorganize the active chain onto it.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req proposeBlockRequest
	if err := web.Decode(r, &req); err != nil {
		return err
	}
	if err := validate.Check(req); err != nil {
		return err
	}

	headerBytes, err := hex.DecodeString(req.Header)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid header: %w", err), http.StatusBadRequest)
	}
	header, err := block.DeserializeHeader(headerBytes)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid header: %w", err), http.StatusBadRequest)
	}

	transactions := make([]*tx.Transaction, len(req.Transactions))
	for i, raw := range req.Transactions {
		b, err := hex.DecodeString(raw)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid transaction[%d]: %w", i, err), http.StatusBadRequest)
		}
		t, err := tx.Deserialize(b)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid transaction[%d]: %w", i, err), http.StatusBadRequest)
		}
		transactions[i] = t
	}

	proposed := &block.Block{Header: header, Transactions: transactions}

	unconfirmed, confirmed, err := h.Chain.ProposeNewBlock(proposed)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("block not accepted: %w", err), http.StatusNotAcceptable)
	}

	for _, t := range transactions {
		h.Mempool.Delete(t)
	}

	h.Log.Infow("block proposed", "traceid", v.TraceID, "blk", proposed.ID(), "unconfirmed", len(unconfirmed), "confirmed", len(confirmed))

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
