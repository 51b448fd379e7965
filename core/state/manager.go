// Package state persists pool records and ledger balances on a key-value
// database and scopes every engine operation inside a copy-on-write
// transaction, giving the engine its all-or-nothing semantics.
package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"dexpool/crypto"
	"dexpool/native/pool"
	"dexpool/storage"
)

// ErrInsufficientFunds is returned by ledger moves exceeding the source
// balance.
var ErrInsufficientFunds = errors.New("state: insufficient funds")

// Manager owns the database handle and opens transactions.
type Manager struct {
	db storage.Database
}

// NewManager constructs a manager bound to the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Begin opens a transaction. Reads see committed state plus the
// transaction's own writes; nothing reaches the database until Commit.
func (m *Manager) Begin() *Txn {
	return &Txn{mgr: m, writes: make(map[string][]byte)}
}

// Credit adds to a balance outside any transaction. Intended for genesis
// funding and test setup only; operational balance changes go through a Txn.
func (m *Manager) Credit(asset, account crypto.Address, amount uint64) error {
	txn := m.Begin()
	if err := txn.credit(asset, account, amount); err != nil {
		return err
	}
	return txn.Commit()
}

// Txn is a copy-on-write view over the database. It implements both state
// interfaces the pool engine consumes: pool record storage and the asset
// ledger.
type Txn struct {
	mgr    *Manager
	writes map[string][]byte
	done   bool
}

func (t *Txn) get(key []byte) ([]byte, bool, error) {
	if v, ok := t.writes[string(key)]; ok {
		return v, true, nil
	}
	v, err := t.mgr.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *Txn) put(key, value []byte) {
	t.writes[string(key)] = append([]byte(nil), value...)
}

// Commit atomically applies the transaction's writes.
func (t *Txn) Commit() error {
	if t.done {
		return errors.New("state: transaction already finished")
	}
	t.done = true
	batch := new(storage.Batch)
	for k, v := range t.writes {
		batch.Put([]byte(k), v)
	}
	return t.mgr.db.Write(batch)
}

// Discard drops every pending write.
func (t *Txn) Discard() {
	t.done = true
	t.writes = nil
}

// --- Pool record storage ---

// PoolGet loads a pool record by control address.
func (t *Txn) PoolGet(control crypto.Address) (*pool.State, bool, error) {
	raw, ok, err := t.get(pool.StateKey(control))
	if err != nil || !ok {
		return nil, false, err
	}
	record := new(pool.State)
	if err := rlp.DecodeBytes(raw, record); err != nil {
		return nil, false, fmt.Errorf("state: decode pool record: %w", err)
	}
	return record, true, nil
}

// PoolPut stores a pool record under its control address.
func (t *Txn) PoolPut(record *pool.State) error {
	if record == nil {
		return errors.New("state: nil pool record")
	}
	raw, err := rlp.EncodeToBytes(record)
	if err != nil {
		return fmt.Errorf("state: encode pool record: %w", err)
	}
	t.put(pool.StateKey(record.ControlAddress), raw)
	return nil
}

// VaultOwner reports which pool, if any, a vault is bound to.
func (t *Txn) VaultOwner(vault crypto.Address) (crypto.Address, bool, error) {
	raw, ok, err := t.get(pool.VaultOwnerKey(vault))
	if err != nil || !ok {
		return crypto.Address{}, false, err
	}
	owner, err := crypto.AddressFromBytes(raw)
	if err != nil {
		return crypto.Address{}, false, err
	}
	return owner, true, nil
}

// BindVault records a pool's exclusive control over a vault.
func (t *Txn) BindVault(vault, control crypto.Address) error {
	t.put(pool.VaultOwnerKey(vault), control[:])
	return nil
}
