package orders

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	internalorders "github.com/angelmondragon/warehouse-backend/internal/orders"
)

type lineRequest struct {
	ID       string          `json:"id" validate:"required,max=64"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	Type  string        `json:"type" validate:"required,oneof=incoming outgoing"`
	Items []lineRequest `json:"items" validate:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed canceled"`
}

// updateItemsRequest accepts either a bare line array or {"items": [...]}.
type updateItemsRequest struct {
	Items []lineRequest `json:"items" validate:"required,min=1,dive"`
}

func (u *updateItemsRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeStrict(trimmed, &u.Items)
	}
	type wrapped updateItemsRequest
	var w wrapped
	if err := decodeStrict(trimmed, &w); err != nil {
		return err
	}
	u.Items = w.Items
	return nil
}

func decodeStrict(data []byte, dest any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func toLineInputs(lines []lineRequest) []internalorders.LineInput {
	out := make([]internalorders.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, internalorders.LineInput{ItemID: line.ID, Quantity: line.Quantity})
	}
	return out
}
