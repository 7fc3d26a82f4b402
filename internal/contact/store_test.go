package contact

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_UpsertThenGet(t *testing.T) {
	// Given an empty store
	s := NewStore()
	c := Contact{Name: "Grace Hopper", Email: "grace@example.com"}

	// When a contact is inserted
	updated := s.Upsert("5551234567", c)

	// Then Get returns it and the insert is not reported as an update
	if updated {
		t.Error("Upsert() on new key reported updated = true")
	}
	got, ok := s.Get("5551234567")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got != c {
		t.Errorf("Get() = %+v, want %+v", got, c)
	}
}

func TestStore_UpsertExistingKeyOverwrites(t *testing.T) {
	// Given a store with one contact
	s := NewStore()
	s.Upsert("5551234567", Contact{Name: "Old"})

	// When the same phone is upserted again
	updated := s.Upsert("5551234567", Contact{Name: "New"})

	// Then the record is replaced, not duplicated
	if !updated {
		t.Error("Upsert() on existing key reported updated = false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	got, _ := s.Get("5551234567")
	if got.Name != "New" {
		t.Errorf("Name = %q, want %q", got.Name, "New")
	}
}

func TestStore_RemoveThenGet(t *testing.T) {
	s := NewStore()
	s.Upsert("5551234567", Contact{Name: "Ada"})

	if !s.Remove("5551234567") {
		t.Fatal("Remove() existing = false, want true")
	}
	if _, ok := s.Get("5551234567"); ok {
		t.Error("Get() after Remove ok = true, want false")
	}
}

func TestStore_RemoveMissingLeavesSizeUnchanged(t *testing.T) {
	// Given a store with two contacts
	s := NewStore()
	s.Upsert("5551234567", Contact{})
	s.Upsert("5559876543", Contact{})

	// When a phone that was never stored is removed
	existed := s.Remove("0000000000")

	// Then it reports absence and nothing changes
	if existed {
		t.Error("Remove(missing) = true, want false")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestStore_KeysSorted(t *testing.T) {
	s := NewStore()
	for _, p := range []string{"9000000000", "1000000000", "5000000000", "0500000000"} {
		s.Upsert(p, Contact{})
	}

	got := slices.Collect(s.Keys())

	want := []string{"0500000000", "1000000000", "5000000000", "9000000000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_KeysRecomputedEachCall(t *testing.T) {
	// Given a sequence obtained before a mutation
	s := NewStore()
	s.Upsert("2000000000", Contact{})
	keys := s.Keys()

	// When a contact is added afterwards
	s.Upsert("1000000000", Contact{})

	// Then ranging over the sequence observes the current contents
	got := slices.Collect(keys)
	want := []string{"1000000000", "2000000000"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_KeysEarlyBreak(t *testing.T) {
	s := NewStore()
	for _, p := range []string{"1000000000", "2000000000", "3000000000"} {
		s.Upsert(p, Contact{})
	}

	var seen []string
	for k := range s.Keys() {
		seen = append(seen, k)
		if len(seen) == 2 {
			break
		}
	}

	if len(seen) != 2 {
		t.Errorf("seen %d keys, want 2", len(seen))
	}
}

func TestStore_AllSkipsRemovedDuringIteration(t *testing.T) {
	s := NewStore()
	s.Upsert("1000000000", Contact{Name: "a"})
	s.Upsert("2000000000", Contact{Name: "b"})

	var seen []string
	for phone := range s.All() {
		seen = append(seen, phone)
		s.Remove("2000000000")
	}

	if diff := cmp.Diff([]string{"1000000000"}, seen); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_EntriesAndSnapshot(t *testing.T) {
	s := FromMap(map[string]Contact{
		"2000000000": {Name: "b"},
		"1000000000": {Name: "a"},
	})

	entries := s.Entries()
	want := []Entry{
		{Phone: "1000000000", Contact: Contact{Name: "a"}},
		{Phone: "2000000000", Contact: Contact{Name: "b"}},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	// Mutating the snapshot must not leak into the store.
	snap := s.Snapshot()
	delete(snap, "1000000000")
	if s.Len() != 2 {
		t.Errorf("Len() after snapshot mutation = %d, want 2", s.Len())
	}
}

func TestFromMap_Copies(t *testing.T) {
	m := map[string]Contact{"1000000000": {Name: "a"}}
	s := FromMap(m)

	m["2000000000"] = Contact{Name: "b"}

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
