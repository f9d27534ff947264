package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decimal128 limits: 34 significant digits, exponent within [-6176, 6111].
const (
	decimal128MaxDigits   = 34
	decimal128MinExponent = -6176
	decimal128MaxExponent = 6111
)

// Price is an optional monetary amount. Clients may send it as a JSON number,
// a numeric string or null. A value that does not parse is kept as malformed
// so validation can report it; it counts as zero everywhere else.
type Price struct {
	decimal.NullDecimal
	malformed bool
}

func NewPrice(d decimal.Decimal) Price {
	return Price{NullDecimal: decimal.NewNullDecimal(d)}
}

func PriceFromString(s string) Price {
	var p Price
	p.parse(s)
	return p
}

// Amount returns the price, or zero when it is missing or malformed.
func (p Price) Amount() decimal.Decimal {
	if !p.Valid {
		return decimal.Zero
	}
	return p.Decimal
}

func (p Price) Malformed() bool {
	return p.malformed
}

// Storable reports whether the price can be stored as a Decimal128 without
// rounding. It only inspects the coefficient and exponent, so it stays cheap
// for values such as 1e50000000 whose decimal expansion is huge.
func (p Price) Storable() bool {
	if !p.Valid {
		return true
	}
	exp := p.Decimal.Exponent()
	return p.Decimal.NumDigits() <= decimal128MaxDigits &&
		exp >= decimal128MinExponent && exp <= decimal128MaxExponent
}

func (p *Price) parse(s string) {
	s = strings.TrimSpace(s)
	p.NullDecimal = decimal.NullDecimal{}
	p.malformed = false
	if s == "" {
		return
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.malformed = true
		return
	}
	p.NullDecimal = decimal.NewNullDecimal(d)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.parse(s)
		return nil
	}
	p.parse(string(data))
	return nil
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !p.Valid {
		return bson.TypeNull, nil, nil
	}
	if !p.Storable() {
		return 0, nil, fmt.Errorf("price with %d digits and exponent %d does not fit decimal128", p.Decimal.NumDigits(), p.Decimal.Exponent())
	}
	d128, err := primitive.ParseDecimal128(p.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("price %s out of range: %w", p.Decimal.String(), err)
	}
	return bson.MarshalValue(d128)
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*p = Price{}
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		return nil
	case bson.TypeDecimal128:
		p.parse(raw.Decimal128().String())
	case bson.TypeDouble:
		*p = NewPrice(decimal.NewFromFloat(raw.Double()))
	case bson.TypeInt32:
		*p = NewPrice(decimal.NewFromInt32(raw.Int32()))
	case bson.TypeInt64:
		*p = NewPrice(decimal.NewFromInt(raw.Int64()))
	case bson.TypeString:
		p.parse(raw.StringValue())
	default:
		return fmt.Errorf("cannot decode %s into price", t)
	}
	return nil
}
