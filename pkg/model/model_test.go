package model

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantBad   bool
		amount    string
	}{
		{"number", `250`, true, false, "250"},
		{"numeric string", `"199.50"`, true, false, "199.5"},
		{"null", `null`, false, false, "0"},
		{"empty string", `""`, false, false, "0"},
		{"garbage string", `"abc"`, false, true, "0"},
		{"negative", `-5`, true, false, "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if p.Valid != tt.wantValid || p.Malformed() != tt.wantBad {
				t.Errorf("Valid = %v, Malformed = %v; want %v, %v", p.Valid, p.Malformed(), tt.wantValid, tt.wantBad)
			}
			if p.Amount().String() != tt.amount {
				t.Errorf("Amount() = %s, want %s", p.Amount(), tt.amount)
			}
		})
	}
}

func TestPrice_BSONAcceptsLegacyTypes(t *testing.T) {
	docs := []bson.M{
		{"price": int32(100)},
		{"price": int64(100)},
		{"price": 100.0},
		{"price": "100"},
	}

	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal(%v) error = %v", doc, err)
		}
		var out struct {
			Price Price `bson:"price"`
		}
		if err := bson.Unmarshal(raw, &out); err != nil {
			t.Fatalf("Unmarshal(%v) error = %v", doc, err)
		}
		if out.Price.Amount().String() != "100" {
			t.Errorf("%v decoded to %s", doc, out.Price.Amount())
		}
	}
}

func TestBooking_ActiveSlotKey(t *testing.T) {
	tests := []struct {
		name    string
		booking Booking
		want    string
	}{
		{"pending", Booking{Stylist: "Marco", Date: "2025-03-14", Time: "14:30", Status: StatusPending}, "Marco|2025-03-14|14:30"},
		{"confirmed", Booking{Stylist: "Marco", Date: "2025-03-14", Time: "14:30", Status: StatusConfirmed}, "Marco|2025-03-14|14:30"},
		{"cancelled", Booking{Stylist: "Marco", Date: "2025-03-14", Time: "14:30", Status: StatusCancelled}, ""},
		{"no stylist", Booking{Stylist: "  ", Date: "2025-03-14", Time: "14:30", Status: StatusPending}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.booking.ActiveSlotKey(); got != tt.want {
				t.Errorf("ActiveSlotKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrice_Storable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"250", true},
		{"0.0000000001", true},
		{"1e6111", true},
		{"1e7000", false},
		{"1e50000000", false},
		{"0.12345678901234567890123456789012345678", false},
	}

	for _, tt := range tests {
		p := PriceFromString(tt.input)
		if got := p.Storable(); got != tt.want {
			t.Errorf("PriceFromString(%q).Storable() = %v, want %v", tt.input, got, tt.want)
		}
		if !tt.want {
			if _, _, err := p.MarshalBSONValue(); err == nil {
				t.Errorf("MarshalBSONValue(%q) should refuse an unstorable price", tt.input)
			}
		}
	}
}
