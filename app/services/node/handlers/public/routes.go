package public

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/genesis"
	"github.com/decentraland/stoneage-node/foundation/blockchain/mempool"
	"github.com/decentraland/stoneage-node/foundation/events"
	"github.com/decentraland/stoneage-node/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	Chain   *chain.Chain
	Mempool *mempool.Mempool
	Evts    *events.Events
	Genesis genesis.Genesis
}

// Routes binds all the public routes.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:     cfg.Log,
		Chain:   cfg.Chain,
		Mempool: cfg.Mempool,
		Evts:    cfg.Evts,
		GenCfg:  cfg.Genesis,
		WS:      websocket.Upgrader{},
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/pixels", pbl.Pixels)
	app.Handle(http.MethodGet, version, "/pixels/:x/:y", pbl.Pixel)
	app.Handle(http.MethodGet, version, "/blocks/tip", pbl.Tip)
	app.Handle(http.MethodGet, version, "/blocks/:hash", pbl.Block)
	app.Handle(http.MethodGet, version, "/tx/:id", pbl.Transaction)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.MempoolList)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}
