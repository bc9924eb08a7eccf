package models

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestTableRefDecodesLegacyBSON(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
		want TableRef
	}{
		{"string", bson.M{"table": " 12 "}, "12"},
		{"int32", bson.M{"table": int32(7)}, "7"},
		{"int64", bson.M{"table": int64(9)}, "9"},
		{"double", bson.M{"table": 3.0}, "3"},
		{"null", bson.M{"table": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var order Order
			if err := bson.Unmarshal(raw, &order); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if order.Table != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, order.Table)
			}
		})
	}
}

func TestEmptyTableRefIsStoredAsNull(t *testing.T) {
	raw, err := bson.Marshal(Order{CustomerName: "alice"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := doc["table"]; !ok || v != nil {
		t.Fatalf("expected table to be null, got %#v", v)
	}
}

func TestTableRefJSONAcceptsNumbers(t *testing.T) {
	var body struct {
		Table TableRef `json:"table"`
	}
	if err := json.Unmarshal([]byte(`{"table": 14}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Table != "14" {
		t.Fatalf("expected 14, got %q", body.Table)
	}
	if err := json.Unmarshal([]byte(`{"table": true}`), &body); err == nil {
		t.Fatal("expected error for boolean table")
	}

	out, _ := json.Marshal(Order{})
	var decoded map[string]any
	_ = json.Unmarshal(out, &decoded)
	if decoded["table"] != nil {
		t.Fatalf("expected null table in JSON, got %#v", decoded["table"])
	}
}

func TestOrderCloneIsDeep(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	order := &Order{Items: []Item{{ItemID: "A", Status: ItemStatusPending, UpdatedAt: &at}}}

	clone := order.Clone()
	clone.Items[0].Status = ItemStatusCooking
	*clone.Items[0].UpdatedAt = at.Add(time.Hour)

	if order.Items[0].Status != ItemStatusPending || !order.Items[0].UpdatedAt.Equal(at) {
		t.Fatalf("clone shares state with original: %+v", order.Items[0])
	}
	if order.ItemIndex("A") != 0 || order.ItemIndex("B") != -1 {
		t.Fatal("unexpected ItemIndex result")
	}
}
