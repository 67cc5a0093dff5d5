package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-engine/internal/aggregate"
	"github.com/carson-networks/budget-engine/internal/classify"
	"github.com/carson-networks/budget-engine/internal/storage"
	"github.com/carson-networks/budget-engine/internal/storage/account"
	"github.com/carson-networks/budget-engine/internal/storage/transaction"
)

// ApplySyncPage applies one provider page and advances the item cursor in
// the same transaction. Added and modified transactions are both upserts:
// whatever was applied before under the same ID is reversed first, so a
// redelivered page changes nothing.
type ApplySyncPage struct {
	Aggregator *aggregate.Aggregator

	ItemID     string
	UserID     uuid.UUID
	Accounts   []*account.Account
	Upserts    []*transaction.Transaction
	Removed    []string
	NextCursor string
	SyncedAt   time.Time

	Result SyncPageResult
}

type SyncPageResult struct {
	Accounts int
	Added    int
	Modified int
	Removed  int
}

func (a *ApplySyncPage) Key() string {
	return a.UserID.String()
}

func (a *ApplySyncPage) Perform(ctx context.Context, writer *storage.Writer) error {
	a.Result = SyncPageResult{}

	for _, acct := range a.Accounts {
		acct.ItemID = a.ItemID
		acct.UserID = a.UserID
		if err := writer.Accounts.Upsert(ctx, acct); err != nil {
			return fmt.Errorf("upsert account %s: %w", acct.ID, err)
		}
		a.Result.Accounts++
	}

	accountTypes := map[string]classify.AccountType{}
	for _, txn := range a.Upserts {
		accountType, ok := accountTypes[txn.AccountID]
		if !ok {
			acct, err := writer.Accounts.FindByID(ctx, txn.AccountID)
			switch {
			case err == nil:
				accountType = acct.Type
			case errors.Is(err, storage.ErrNotFound):
				accountType = classify.AccountTypeUnknown
			default:
				return fmt.Errorf("account %s: %w", txn.AccountID, err)
			}
			accountTypes[txn.AccountID] = accountType
		}
		txn.ItemID = a.ItemID
		txn.UserID = a.UserID
		txn.AccountType = accountType

		old, err := findTransaction(ctx, writer, txn.ID)
		if err != nil {
			return err
		}
		if err := a.Aggregator.Replace(ctx, writer.Summaries, old, txn); err != nil {
			return err
		}
		if err := writer.Transactions.Upsert(ctx, txn); err != nil {
			return fmt.Errorf("upsert transaction %s: %w", txn.ID, err)
		}
		if old == nil {
			a.Result.Added++
		} else {
			a.Result.Modified++
		}
	}

	for _, id := range a.Removed {
		old, err := findTransaction(ctx, writer, id)
		if err != nil {
			return err
		}
		if old == nil {
			continue
		}
		if err := a.Aggregator.Replace(ctx, writer.Summaries, old, nil); err != nil {
			return err
		}
		if err := writer.Transactions.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete transaction %s: %w", id, err)
		}
		a.Result.Removed++
	}

	return writer.Items.UpdateCursor(ctx, a.ItemID, a.NextCursor, a.SyncedAt)
}

func findTransaction(ctx context.Context, writer *storage.Writer, id string) (*transaction.Transaction, error) {
	txn, err := writer.Transactions.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return txn, nil
}
