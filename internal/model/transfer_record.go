package model

// TransferRecord captures one prepared transfer attempt for the reporting
// boundary. It is a read-only projection for display, not runtime state.
type TransferRecord struct {
	ChainID       uint64 `json:"chain_id"`
	Owner         string `json:"owner"`
	SmartAccount  string `json:"smart_account"`
	Pool          string `json:"pool"`
	Token         string `json:"token"`
	Recipient     string `json:"recipient"`
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	Outcome       string `json:"outcome"`
	FailureKind   string `json:"failure_kind,omitempty"`
	FailureDetail string `json:"failure_detail,omitempty"`
	PreparedAt    string `json:"prepared_at"`
}
