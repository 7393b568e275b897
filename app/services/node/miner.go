package main

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/decentraland/stoneage-node/foundation/blockchain/chain"
	"github.com/decentraland/stoneage-node/foundation/blockchain/crypto"
	"github.com/decentraland/stoneage-node/foundation/blockchain/mempool"
	"github.com/decentraland/stoneage-node/foundation/blockchain/miner"
	"github.com/decentraland/stoneage-node/foundation/blockchain/pixel"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// minerLoop drives mnr.Work one iteration at a time for as long as ctx is
// alive, proposing every solved block to the chain and re-seeding the next
// template with a fresh coinbase claiming the next pixel on the frontier.
func minerLoop(ctx context.Context, log *zap.SugaredLogger, ch *chain.Chain, mp *mempool.Mempool, mnr *miner.Miner, minerKey *crypto.PrivateKey, color pixel.Color, bits uint32) {
	if err := seedTemplate(ch, mp, mnr, minerKey, color, bits); err != nil {
		log.Errorw("miner: seed", "ERROR", err)
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		result, err := mnr.Work()
		if err != nil {
			log.Errorw("miner: work", "ERROR", err)
			return
		}

		if result.Pending {
			continue
		}

		if result.Found == nil {
			// Between a propose and the next seed the miner may briefly have
			// no armed template; yield instead of spinning.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		blk := result.Found
		if _, _, err := ch.ProposeNewBlock(blk); err != nil {
			log.Errorw("miner: propose rejected", "blk", blk.ID(), "ERROR", err)
		} else {
			log.Infow("miner: mined block", "blk", blk.ID(), "height", blk.Header.Height, "transactions", len(blk.Transactions))
			for _, t := range blk.Transactions[1:] {
				mp.Delete(t)
			}
		}

		if err := seedTemplate(ch, mp, mnr, minerKey, color, bits); err != nil {
			log.Errorw("miner: reseed", "ERROR", err)
			return
		}
	}
}

// seedTemplate builds a fresh coinbase claiming the next pixel on the
// frontier and hands it to the miner as the new tip, carrying over
// whatever the mempool has picked up.
func seedTemplate(ch *chain.Chain, mp *mempool.Mempool, mnr *miner.Miner, minerKey *crypto.PrivateKey, color pixel.Color, bits uint32) error {
	tip, ok := ch.GetTipBlock()
	if !ok {
		return nil
	}

	pixels := ch.CopyPixels()
	next := nextClaim(pixels)

	coinbase := tx.New().At(next.X, next.Y).Colored(color).To(minerKey.Public())

	height := uint32(tip.Header.Height) + 1
	if err := mnr.NewTip(tip.RawID(), height, coinbase, bits, time.Now()); err != nil {
		return err
	}

	for _, t := range mp.PickBest(-1) {
		if t.Position == next {
			continue
		}
		if err := mnr.AddTransaction(t); err != nil {
			return err
		}
	}

	return nil
}

// nextClaim picks the lexicographically smallest (by y, then x) position
// adjacent to an owned pixel that is not itself owned, giving every node
// running the same policy a deterministic frontier to race for.
func nextClaim(pixels map[pixel.Position]*tx.Transaction) pixel.Position {
	if len(pixels) == 0 {
		return pixel.Position{}
	}

	seen := make(map[pixel.Position]struct{})
	var frontier []pixel.Position
	for p := range pixels {
		for _, n := range p.Neighbors() {
			if _, owned := pixels[n]; owned {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			frontier = append(frontier, n)
		}
	}

	sort.Slice(frontier, func(i, j int) bool {
		a, b := frontier[i], frontier[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return frontier[0]
}
