package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/konvo/konvo/pkg/domain"
)

// RunSessionStoreContract verifies that a store implementation honors the
// SessionStore semantics. Adapter test suites call it against their own
// backends.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	ch := domain.Channel{Type: "whatsapp", Identifier: "+100"}
	key := ch.Key()

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, key)
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Save_Get", func(t *testing.T) {
		s := domain.NewSession(ch)
		s.Identity.MemberID = "m-1"
		s.Flow.Path = "login"
		s.Flow.Component = "greeting"
		s.Flow.Data["amount"] = "50"
		s.Flow.Data["payload"] = map[string]any{"amount": "50"}

		if err := store.Save(ctx, key, s); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Identity.MemberID != "m-1" {
			t.Errorf("member_id: got %q, want %q", got.Identity.MemberID, "m-1")
		}
		if got.Flow.Path != "login" || got.Flow.Component != "greeting" {
			t.Errorf("flow position: got %s/%s", got.Flow.Path, got.Flow.Component)
		}
		if got.Flow.Data["amount"] != "50" {
			t.Errorf("flow.data: got %v", got.Flow.Data)
		}
	})

	t.Run("Get_IsolatedCopy", func(t *testing.T) {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got.Flow.Data["amount"] = "tampered"
		if nested, ok := got.Flow.Data["payload"].(map[string]any); ok {
			nested["amount"] = "tampered"
		}

		again, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if again.Flow.Data["amount"] != "50" {
			t.Errorf("store state mutated through returned pointer: %v", again.Flow.Data)
		}
		nested, ok := again.Flow.Data["payload"].(map[string]any)
		if !ok {
			t.Fatalf("nested flow.data region lost: %v", again.Flow.Data)
		}
		if nested["amount"] != "50" {
			t.Errorf("store state mutated through a nested map in a returned copy: %v", nested)
		}
	})

	t.Run("List", func(t *testing.T) {
		keys, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, k := range keys {
			if k == key {
				found = true
			}
		}
		if !found {
			t.Errorf("key %q missing from list %v", key, keys)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, key); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		_, err := store.Get(ctx, key)
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
		}
	})
}
