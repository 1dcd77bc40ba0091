package tokencache

import (
	"testing"
	"time"
)

func TestCacheAddGet(t *testing.T) {
	c := New(8, time.Minute)

	c.Add("token-a", "folder-1")

	folderID, ok := c.Get("token-a")
	if !ok {
		t.Fatal("Get(token-a) missed after Add")
	}
	if folderID != "folder-1" {
		t.Errorf("folder = %q, want folder-1", folderID)
	}

	if _, ok := c.Get("token-unknown"); ok {
		t.Error("Get(token-unknown) hit, want miss")
	}
}

func TestCacheRemove(t *testing.T) {
	c := New(8, time.Minute)

	c.Add("token-a", "folder-1")
	c.Remove("token-a")

	if _, ok := c.Get("token-a"); ok {
		t.Error("Get hit after Remove, want miss")
	}

	// Removing an absent token is fine
	c.Remove("token-never-added")
}

func TestCachePurge(t *testing.T) {
	c := New(8, time.Minute)

	c.Add("token-a", "folder-1")
	c.Add("token-b", "folder-2")
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Purge, want 0", c.Len())
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	c := New(2, time.Minute)

	c.Add("token-a", "folder-1")
	c.Add("token-b", "folder-2")
	c.Add("token-c", "folder-3")

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want capacity of 2", c.Len())
	}
	if _, ok := c.Get("token-a"); ok {
		t.Error("oldest entry survived past capacity")
	}
	if _, ok := c.Get("token-c"); !ok {
		t.Error("newest entry evicted")
	}
}

func TestCacheExpires(t *testing.T) {
	c := New(8, 50*time.Millisecond)

	c.Add("token-a", "folder-1")
	time.Sleep(120 * time.Millisecond)

	if _, ok := c.Get("token-a"); ok {
		t.Error("entry survived past its TTL")
	}
}
