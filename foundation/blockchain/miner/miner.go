// Package miner searches a candidate block's header for a nonce that
// satisfies its proof-of-work target, one iteration at a time.
package miner

import (
	"context"
	"errors"
	"time"

	"github.com/decentraland/stoneage-node/foundation/blockchain/block"
	"github.com/decentraland/stoneage-node/foundation/blockchain/tx"
)

// ErrNoTemplate is returned by Work and Run when the miner has not been
// seeded with a tip via NewTip.
var ErrNoTemplate = errors.New("miner: no template, call NewTip first")

// EventHandler defines a function called while the miner works. The miner
// never imports a logging library directly.
type EventHandler func(v string, args ...any)

// WorkResult is the outcome of a single call to Work. Found is non-nil
// exactly once per successful search, carrying the solved block; the
// miner stops and must be re-seeded via NewTip before it runs again.
type WorkResult struct {
	Pending bool
	Found   *block.Block
}

// Miner owns a template block and advances its nonce one call at a time.
// It never blocks and performs no synchronization: the single-threaded
// cooperative scheduling model of the chain manager applies here too.
type Miner struct {
	evHandler EventHandler
	template  *block.Block
	running   bool
	attempts  uint64
}

// New constructs an idle Miner. It must be seeded with NewTip before Work
// or Run will do anything.
func New(evHandler EventHandler) *Miner {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}
	return &Miner{evHandler: evHandler}
}

// NewTip rebuilds the template from a new previous block, height, and
// coinbase, discarding any in-progress nonce search and re-arming the
// miner to run.
func (m *Miner) NewTip(prevHash [32]byte, height uint32, coinbase *tx.Transaction, bits uint32, now time.Time) error {
	b, err := block.FromCoinbase(coinbase, block.Header{
		Version:  block.Version,
		Height:   height,
		PrevHash: prevHash,
		Bits:     bits,
		Time:     uint32(now.Unix()),
	})
	if err != nil {
		return err
	}

	m.template = b
	m.running = true
	m.attempts = 0

	return nil
}

// AddTransaction appends tx to the template and recomputes its Merkle
// root. The in-progress nonce search is not reset: the header's nonce is
// left as-is, since only the root changed and the search resumes from
// there.
func (m *Miner) AddTransaction(t *tx.Transaction) error {
	if m.template == nil {
		return ErrNoTemplate
	}
	m.template.AddTransaction(t)
	return nil
}

// Work performs a single nonce-search iteration: increment the nonce,
// check proof-of-work, and report the outcome. It never blocks.
func (m *Miner) Work() (WorkResult, error) {
	if m.template == nil {
		return WorkResult{}, ErrNoTemplate
	}
	if !m.running {
		return WorkResult{}, nil
	}

	m.template.Header.IncreaseNonce()
	m.attempts++

	if m.attempts%1_000_000 == 0 {
		m.evHandler("miner: work: attempts[%d]", m.attempts)
	}

	if !m.template.Header.ValidProofOfWork() {
		return WorkResult{Pending: true}, nil
	}

	m.running = false
	m.evHandler("miner: work: solved: blk[%s] attempts[%d]", m.template.ID(), m.attempts)

	return WorkResult{Found: m.template}, nil
}

// Run drives Work in a tight loop until a block is found or ctx is
// cancelled. This is the synchronous convenience path; a host that needs
// to interleave AddTransaction/NewTip calls between nonce attempts should
// call Work directly instead.
func (m *Miner) Run(ctx context.Context) (*block.Block, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := m.Work()
		if err != nil {
			return nil, err
		}
		if result.Found != nil {
			return result.Found, nil
		}
	}
}

// Stop halts the in-progress search. The next Work call returns a zero
// WorkResult until NewTip re-arms the miner.
func (m *Miner) Stop() {
	m.running = false
}

// Running reports whether the miner has an active, unsolved template.
func (m *Miner) Running() bool {
	return m.running
}
