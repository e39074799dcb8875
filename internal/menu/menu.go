package menu

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/insomniafuel/storefront-core/pkg/errors"
	"github.com/insomniafuel/storefront-core/pkg/types"
	"github.com/shopspring/decimal"
)

// Variant is a priced sub-option of a catalog item (e.g. oat milk).
type Variant struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
}

// Item is a read-only catalog record. The catalog is treated as an
// immutable lookup during cart operations.
type Item struct {
	ID        string          `json:"_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
	Variants  []Variant       `json:"variants,omitempty"`
}

// Catalog supplies current catalog items by id.
type Catalog interface {
	Item(ctx context.Context, id string) (*Item, error)
}

// CompositeLineID joins item and variant into the id a variant line is
// keyed by, so each variant occupies its own cart line.
func CompositeLineID(itemID, variantName string) string {
	return itemID + "::" + variantName
}

var validate = validator.New()

// NewLine builds a validated cart line from a catalog item, rejecting
// records that lack a stable identifier rather than accepting an open
// shape. An empty variantName selects the base item.
func NewLine(item Item, variantName string) (types.CartLine, error) {
	if strings.TrimSpace(item.ID) == "" {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "menu item is missing a stable id")
	}
	if err := validate.Struct(item); err != nil {
		return types.CartLine{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid menu item")
	}
	if !item.Available {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "menu item is not available")
	}
	if item.Price.IsNegative() {
		return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "menu item price cannot be negative")
	}

	line := types.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
	}

	if variantName != "" {
		variant, ok := findVariant(item, variantName)
		if !ok {
			return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown menu item variant").
				WithDetails(map[string]any{"variant": variantName})
		}
		if variant.Price.IsNegative() {
			return types.CartLine{}, pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
		}
		line.ItemID = CompositeLineID(item.ID, variant.Name)
		line.Name = item.Name + " (" + variant.Name + ")"
		line.UnitPrice = variant.Price
	}

	return line, nil
}

func findVariant(item Item, name string) (Variant, bool) {
	for _, variant := range item.Variants {
		if strings.EqualFold(variant.Name, name) {
			return variant, true
		}
	}
	return Variant{}, false
}
