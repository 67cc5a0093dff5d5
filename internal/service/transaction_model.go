package service

// TransactionCursor continues a listing after the transaction ID After.
type TransactionCursor struct {
	After string
	Limit int
}

const defaultTransactionLimit = 50
