package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestTokenSlotSetsAndClearsKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	slot := NewTokenSlot(newClient(mr), "studyhub", time.Minute)

	token, err := slot.Load(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected empty token on missing key, got %q err=%v", token, err)
	}

	if err := slot.Save(ctx, "t1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("studyhub:session:accessToken") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("studyhub:session:accessToken"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %s", ttl)
	}
	if token, _ := slot.Load(ctx); token != "t1" {
		t.Fatalf("expected t1, got %q", token)
	}

	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("studyhub:session:accessToken") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestTokenSlotExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	slot := NewTokenSlot(newClient(mr), "studyhub", time.Minute)
	if err := slot.Save(ctx, "t1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if token, _ := slot.Load(ctx); token != "" {
		t.Fatalf("expected expired token to read as absent, got %q", token)
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
