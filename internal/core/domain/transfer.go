package domain

// Transfer executes one transfer across two loaded wallets: it validates
// the parameters, debits the full amount from the sender, credits the
// amount net of fee to the receiver, and returns the transaction record.
// Validation happens before any mutation, so a failed transfer leaves
// both wallets untouched. The caller must hold both wallet locks and
// persist both wallets together with the returned record in one atomic
// commit.
func Transfer(from, to *Wallet, amountSatoshis int64, internal bool) (*Transaction, error) {
	txn, err := NewTransaction(from.Address, to.Address, amountSatoshis, internal)
	if err != nil {
		return nil, err
	}

	if err := from.Withdraw(txn.TotalDeducted()); err != nil {
		return nil, err
	}

	if err := to.Deposit(txn.RecipientAmount()); err != nil {
		// Unreachable: the factory guarantees a positive recipient
		// amount. Restore the debit so both wallets stay consistent.
		from.BalanceSatoshis += txn.TotalDeducted()
		return nil, err
	}

	return txn, nil
}
