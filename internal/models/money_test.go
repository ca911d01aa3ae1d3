package models

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	got, err := ParseMoney(" 150 ")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	if got.String() != "150.00" {
		t.Fatalf("money want 150.00 got %s", got.String())
	}
	if _, err := ParseMoney("abc"); err == nil {
		t.Fatalf("expected error for non numeric amount")
	}
	if _, err := ParseMoney(""); err == nil {
		t.Fatalf("expected error for empty amount")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price := NewMoneyFromInt(150)
	total := price.Mul(2).Add(NewMoneyFromInt(45))
	if total.String() != "345.00" {
		t.Fatalf("total want 345.00 got %s", total.String())
	}
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"12.345"`), &m); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if m.String() != "12.35" {
		t.Fatalf("rounded money want 12.35 got %s", m.String())
	}
	if err := json.Unmarshal([]byte(`99.5`), &m); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"99.50"` {
		t.Fatalf("json want \"99.50\" got %s", out)
	}
}
