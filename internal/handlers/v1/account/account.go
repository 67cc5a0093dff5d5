package account

// Account is the API response model for a provider account.
type Account struct {
	ID       string `json:"id" doc:"Provider account ID"`
	ItemID   string `json:"itemID" doc:"Provider item ID"`
	Name     string `json:"name" doc:"Account name"`
	Type     string `json:"type" doc:"checking, savings, credit, or empty when unknown"`
	Subtype  string `json:"subtype,omitempty" doc:"Provider account subtype"`
	Currency string `json:"currency" doc:"ISO currency code"`
}
