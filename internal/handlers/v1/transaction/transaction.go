package transaction

// Transaction is the API response model for a synced transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID               string `json:"id" doc:"Provider transaction ID"`
	AccountID        string `json:"accountID" doc:"Provider account ID"`
	AccountType      string `json:"accountType" doc:"Account type the transaction was classified under"`
	Amount           string `json:"amount" doc:"Decimal amount, positive for money leaving the account"`
	Currency         string `json:"currency" doc:"ISO currency code"`
	Date             string `json:"date" doc:"ISO posting date"`
	EffectiveDate    string `json:"effectiveDate" doc:"ISO date used for bucketing"`
	Name             string `json:"name" doc:"Transaction description"`
	CategoryPrimary  string `json:"categoryPrimary,omitempty" doc:"Provider primary category"`
	CategoryDetailed string `json:"categoryDetailed,omitempty" doc:"Provider detailed category"`
	Pending          bool   `json:"pending" doc:"Not yet posted"`
}
