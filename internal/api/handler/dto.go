package handler

// SubscribeRequest represents a request to subscribe a client to a fund.
// Amount travels as a string so money never passes through binary floats.
type SubscribeRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	FundID   string `json:"fund_id" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

// CancelRequest represents a request to cancel a client's fund subscription
type CancelRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	FundID   string `json:"fund_id" binding:"required"`
}

// TransactionResponse represents a transaction record in API responses
type TransactionResponse struct {
	BusinessTransactionID string `json:"business_transaction_id"`
	ClientID              string `json:"client_id"`
	FundID                string `json:"fund_id"`
	FundName              string `json:"fund_name,omitempty"`
	Type                  string `json:"type"`
	Amount                string `json:"amount"`
	Date                  string `json:"date"`
	ClientBalanceBefore   string `json:"client_balance_before"`
	ClientBalanceAfter    string `json:"client_balance_after"`
	Status                string `json:"status"`
	ErrorMessage          string `json:"error_message,omitempty"`
}

// TransactionListResponse represents a client's transaction history in API responses
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}
