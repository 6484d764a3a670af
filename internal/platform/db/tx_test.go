package db

import (
	"context"
	"testing"
)

func TestConnFromContext_NilOutsideTransaction(t *testing.T) {
	if c := ConnFromContext(context.Background()); c != nil {
		t.Errorf("expected nil outside a transaction, got %v", c)
	}
}

func TestConnFromContext_IgnoresForeignValues(t *testing.T) {
	type otherKey string
	ctx := context.WithValue(context.Background(), otherKey("db_tx"), "not a tx")
	if c := ConnFromContext(ctx); c != nil {
		t.Errorf("expected nil for foreign context value, got %v", c)
	}
}
