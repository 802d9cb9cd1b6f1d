package model

const (
	EventMessageExecuted = "message_executed"
	EventLedgerTxFailed  = "ledger_tx_failed"
	EventLedgerTxSettled = "ledger_tx_settled"
)

type Event struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	MessageIndex uint64 `json:"message_index"`
	Action       string `json:"action,omitempty"`
	Sender       string `json:"sender,omitempty"`
	Time         string `json:"time"`
	Data         any    `json:"data,omitempty"`
}

type LedgerTxEventData struct {
	ID     int64  `json:"id"`
	Kind   string `json:"kind"`
	TxHash string `json:"tx_hash,omitempty"`
	Error  string `json:"error,omitempty"`
}
