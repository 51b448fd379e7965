package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"dexpool/crypto"
)

var (
	balancePrefix       = []byte("ledger/balance/")
	mintSupplyPrefix    = []byte("ledger/mint/supply/")
	mintAuthorityPrefix = []byte("ledger/mint/authority/")
)

func balanceKey(asset, account crypto.Address) []byte {
	buf := make([]byte, len(balancePrefix)+2*crypto.AddressLength)
	copy(buf, balancePrefix)
	copy(buf[len(balancePrefix):], asset[:])
	copy(buf[len(balancePrefix)+crypto.AddressLength:], account[:])
	return buf
}

func mintSupplyKey(mint crypto.Address) []byte {
	buf := make([]byte, len(mintSupplyPrefix)+crypto.AddressLength)
	copy(buf, mintSupplyPrefix)
	copy(buf[len(mintSupplyPrefix):], mint[:])
	return buf
}

func mintAuthorityKey(mint crypto.Address) []byte {
	buf := make([]byte, len(mintAuthorityPrefix)+crypto.AddressLength)
	copy(buf, mintAuthorityPrefix)
	copy(buf[len(mintAuthorityPrefix):], mint[:])
	return buf
}

func (t *Txn) readU64(key []byte) (uint64, error) {
	raw, ok, err := t.get(key)
	if err != nil || !ok {
		return 0, err
	}
	var v uint64
	if err := rlp.DecodeBytes(raw, &v); err != nil {
		return 0, fmt.Errorf("state: decode counter: %w", err)
	}
	return v, nil
}

func (t *Txn) writeU64(key []byte, v uint64) error {
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("state: encode counter: %w", err)
	}
	t.put(key, raw)
	return nil
}

// BalanceOf returns an account's balance of an asset. Share balances use the
// share mint as the asset identifier.
func (t *Txn) BalanceOf(asset, account crypto.Address) (uint64, error) {
	return t.readU64(balanceKey(asset, account))
}

func (t *Txn) credit(asset, account crypto.Address, amount uint64) error {
	balance, err := t.BalanceOf(asset, account)
	if err != nil {
		return err
	}
	sum := balance + amount
	if sum < balance {
		return fmt.Errorf("state: balance overflow for %s", account)
	}
	return t.writeU64(balanceKey(asset, account), sum)
}

func (t *Txn) debit(asset, account crypto.Address, amount uint64) error {
	balance, err := t.BalanceOf(asset, account)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, account, balance, amount)
	}
	return t.writeU64(balanceKey(asset, account), balance-amount)
}

// Transfer moves amount of asset between two accounts.
func (t *Txn) Transfer(asset, from, to crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := t.debit(asset, from, amount); err != nil {
		return err
	}
	return t.credit(asset, to, amount)
}

// MintSupply returns the outstanding supply of a mint.
func (t *Txn) MintSupply(mint crypto.Address) (uint64, error) {
	return t.readU64(mintSupplyKey(mint))
}

// MintAuthority returns the issuance authority of a mint, if one is set.
func (t *Txn) MintAuthority(mint crypto.Address) (crypto.Address, bool, error) {
	raw, ok, err := t.get(mintAuthorityKey(mint))
	if err != nil || !ok {
		return crypto.Address{}, false, err
	}
	authority, err := crypto.AddressFromBytes(raw)
	if err != nil {
		return crypto.Address{}, false, err
	}
	return authority, true, nil
}

// SetMintAuthority assigns the issuance authority of a mint.
func (t *Txn) SetMintAuthority(mint, authority crypto.Address) error {
	t.put(mintAuthorityKey(mint), authority[:])
	return nil
}

// Mint issues new units of a mint to an account and grows the supply.
func (t *Txn) Mint(mint, to crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	supply, err := t.MintSupply(mint)
	if err != nil {
		return err
	}
	sum := supply + amount
	if sum < supply {
		return fmt.Errorf("state: mint supply overflow for %s", mint)
	}
	if err := t.writeU64(mintSupplyKey(mint), sum); err != nil {
		return err
	}
	return t.credit(mint, to, amount)
}

// Burn destroys units of a mint held by an account and shrinks the supply.
func (t *Txn) Burn(mint, from crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := t.debit(mint, from, amount); err != nil {
		return err
	}
	supply, err := t.MintSupply(mint)
	if err != nil {
		return err
	}
	if supply < amount {
		return fmt.Errorf("state: mint supply underflow for %s", mint)
	}
	return t.writeU64(mintSupplyKey(mint), supply-amount)
}
