package private

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/mempool"
	"github.com/decentraland/stoneage-node/foundation/blockchain/peer"
	"github.com/decentraland/stoneage-node/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Mempool *mempool.Mempool
	Peers   *peer.Set
	Host    string
}

// Routes binds all the private routes.
func Routes(app *web.App, cfg Config) {
	prv := Handlers{
		Log:     cfg.Log,
		Chain:   cfg.Chain,
		Mempool: cfg.Mempool,
		Peers:   cfg.Peers,
		Host:    cfg.Host,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodPost, version, "/node/peers", prv.SubmitPeer)
	app.Handle(http.MethodPost, version, "/node/block/propose", prv.ProposeBlock)
}
