package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	internalinventory "github.com/angelmondragon/warehouse-backend/internal/inventory"
	"github.com/angelmondragon/warehouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/warehouse-backend/pkg/errors"
)

type createItemRequest struct {
	Name     string           `json:"name" validate:"required,max=255"`
	Price    decimal.Decimal  `json:"price" validate:"gt=0"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Status   *string          `json:"status" validate:"omitempty,oneof=active arrived incoming"`
}

type updateItemRequest struct {
	Name     *string          `json:"name" validate:"omitempty,max=255"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,gte=0"`
	Status   *string          `json:"status" validate:"omitempty,oneof=active arrived incoming deleted"`
}

func (r createItemRequest) toInput() (internalinventory.CreateItemInput, error) {
	input := internalinventory.CreateItemInput{
		Name:     strings.TrimSpace(r.Name),
		Price:    r.Price,
		Quantity: r.Quantity,
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return input, err
	}
	input.Status = status
	return input, nil
}

func (r updateItemRequest) toInput() (internalinventory.UpdateItemInput, error) {
	if r.Name == nil && r.Price == nil && r.Quantity == nil && r.Status == nil {
		return internalinventory.UpdateItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one field is required")
	}
	input := internalinventory.UpdateItemInput{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return input, err
	}
	input.Status = status
	return input, nil
}

func parseStatus(raw *string) (*enums.ItemStatus, error) {
	if raw == nil {
		return nil, nil
	}
	status, err := enums.ParseItemStatus(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	return &status, nil
}
