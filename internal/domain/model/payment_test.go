package model_test

import (
	"errors"
	"testing"

	"iris-payments/internal/domain"
	"iris-payments/internal/domain/model"
)

func TestCartReferenceRoundTrip(t *testing.T) {
	md := model.CartReference(42)
	if md != "cart:42" {
		t.Fatalf("expected cart:42, got %q", md)
	}
	id, err := model.ParseCartReference(md)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestParseCartReferenceRejectsMalformed(t *testing.T) {
	cases := []string{"cart:0", "cart:-1", "nope:42", "", "cart:", "cart:abc", "cart:1.5"}
	for _, md := range cases {
		t.Run(md, func(t *testing.T) {
			if _, err := model.ParseCartReference(md); !errors.Is(err, domain.ErrInvalidCartReference) {
				t.Fatalf("expected ErrInvalidCartReference for %q, got %v", md, err)
			}
		})
	}
}
