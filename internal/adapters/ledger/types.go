package ledger

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vaultex/vaultex_service/internal/domain/entities"
)

// balanceResponse is the wire shape of a user balance. The ledger keys
// available amounts as "<currency>_available" alongside user_id.
type balanceResponse struct {
	UserID    int64
	Available map[string]decimal.Decimal
}

func (b *balanceResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Available = make(map[string]decimal.Decimal)
	for key, value := range raw {
		if key == "user_id" {
			if err := json.Unmarshal(value, &b.UserID); err != nil {
				return err
			}
			continue
		}
		currency, ok := strings.CutSuffix(key, "_available")
		if !ok {
			continue
		}
		var amount decimal.Decimal
		if err := json.Unmarshal(value, &amount); err != nil {
			return err
		}
		b.Available[currency] = amount
	}
	return nil
}

func (b *balanceResponse) toEntity() *entities.Balance {
	return &entities.Balance{
		UserID:    b.UserID,
		Available: b.Available,
	}
}

// withdrawalRequest is the wire shape of a withdrawal execution call
type withdrawalRequest struct {
	UserID   int64            `json:"user_id"`
	Address  string           `json:"address"`
	Currency string           `json:"currency"`
	Amount   decimal.Decimal  `json:"amount"`
	Network  string           `json:"network,omitempty"`
	Fee      *decimal.Decimal `json:"fee,omitempty"`
	FeeCoin  string           `json:"fee_coin,omitempty"`
}

// transferRequest is the wire shape of an internal asset transfer
type transferRequest struct {
	SenderID      int64           `json:"sender_id"`
	ReceiverID    int64           `json:"receiver_id"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Email         bool            `json:"email"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// mintBurnRequest is the wire shape of mint and burn calls
type mintBurnRequest struct {
	UserID        int64            `json:"user_id"`
	Currency      string           `json:"currency"`
	Amount        decimal.Decimal  `json:"amount"`
	Description   string           `json:"description,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Status        string           `json:"status,omitempty"`
	Email         bool             `json:"email"`
	Fee           *decimal.Decimal `json:"fee,omitempty"`
}

// pendingUpdateRequest is the wire shape of a pending mint/burn update
type pendingUpdateRequest struct {
	TransactionID        string `json:"transaction_id"`
	Status               string `json:"status,omitempty"`
	Dismissed            bool   `json:"dismissed"`
	Rejected             bool   `json:"rejected"`
	Processing           bool   `json:"processing"`
	Waiting              bool   `json:"waiting"`
	UpdatedTransactionID string `json:"updated_transaction_id,omitempty"`
	UpdatedDescription   string `json:"updated_description,omitempty"`
	Email                bool   `json:"email"`
}

// oraclePricesResponse maps asset symbol to its price in the quote
// currency. The ledger reports -1 for assets it has no rate for.
type oraclePricesResponse struct {
	Data map[string]decimal.Decimal `json:"data"`
}

// checkTransactionResponse is the wire shape of a chain transaction check
type checkTransactionResponse struct {
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// historyPage is the ledger's paginated history envelope
type historyPage struct {
	Count int                   `json:"count"`
	Data  []entities.Withdrawal `json:"data"`
}

func (p *historyPage) toEntity() *entities.WithdrawalPage {
	return &entities.WithdrawalPage{
		Count: p.Count,
		Data:  p.Data,
	}
}
