package editproduct

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"spirit-bot/internal/stories/products"
)

const (
	fieldName         = "name"
	fieldCategory     = "category"
	fieldType         = "type"
	fieldPotency      = "potency"
	fieldPrice        = "price"
	fieldDescription  = "description"
	fieldSpecialOffer = "special_offer"
)

var editableFields = []string{
	fieldName,
	fieldCategory,
	fieldType,
	fieldPotency,
	fieldPrice,
	fieldDescription,
	fieldSpecialOffer,
}

var errInvalidValue = errors.New("invalid value")

// choiceField reports whether the field is picked with buttons rather than typed.
func choiceField(field string) bool {
	return field == fieldCategory || field == fieldType
}

// currentValue renders the product's value of field for the prompt.
func currentValue(p *products.Product, field string) string {
	switch field {
	case fieldName:
		return p.Name
	case fieldCategory:
		return string(p.Category)
	case fieldType:
		return string(p.Subtype)
	case fieldPotency:
		return strconv.Itoa(p.Potency)
	case fieldPrice:
		return strconv.FormatInt(p.Price, 10)
	case fieldDescription:
		return p.Description
	case fieldSpecialOffer:
		return p.SpecialOffer
	}
	return ""
}

// parseValue turns raw input into an update touching exactly one field.
func parseValue(field, raw string) (products.UpdateParams, error) {
	raw = strings.TrimSpace(raw)

	switch field {
	case fieldName:
		if raw == "" || utf8.RuneCountInString(raw) > products.MaxNameLength {
			return products.UpdateParams{}, errInvalidValue
		}
		return products.UpdateParams{Name: &raw}, nil
	case fieldCategory:
		c := products.Category(raw)
		if !c.Valid() {
			return products.UpdateParams{}, errInvalidValue
		}
		return products.UpdateParams{Category: &c}, nil
	case fieldType:
		s := products.Subtype(raw)
		if !s.Valid() {
			return products.UpdateParams{}, errInvalidValue
		}
		return products.UpdateParams{Subtype: &s}, nil
	case fieldPotency:
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > 100 {
			return products.UpdateParams{}, errInvalidValue
		}
		return products.UpdateParams{Potency: &v}, nil
	case fieldPrice:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return products.UpdateParams{}, errInvalidValue
		}
		return products.UpdateParams{Price: &v}, nil
	case fieldDescription:
		if raw == skipCommand {
			raw = ""
		}
		return products.UpdateParams{Description: &raw}, nil
	case fieldSpecialOffer:
		if raw == skipCommand {
			raw = ""
		}
		return products.UpdateParams{SpecialOffer: &raw}, nil
	}
	return products.UpdateParams{}, errors.Errorf("unknown field %q", field)
}
