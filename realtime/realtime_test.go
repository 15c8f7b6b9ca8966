package realtime

import (
	"testing"
	"time"
)

func TestActiveMembersPrunesStaleEntries(t *testing.T) {
	now := time.Unix(1700000000, 0)
	members := []Member{
		{UserID: "u1", LastSeen: now.Add(-5 * time.Second)},
		{UserID: "u2", LastSeen: now.Add(-31 * time.Second)},
		{UserID: "u3", LastSeen: now},
	}

	active := ActiveMembers(members, now, 0)
	if len(active) != 2 {
		t.Fatalf("expected 2 active members, got %d", len(active))
	}
	if active[0].UserID != "u1" || active[1].UserID != "u3" {
		t.Fatalf("unexpected members: %+v", active)
	}
}

func TestActiveMembersExactBoundaryIsStale(t *testing.T) {
	now := time.Unix(1700000000, 0)
	members := []Member{{UserID: "u1", LastSeen: now.Add(-DefaultStaleness)}}

	if got := ActiveMembers(members, now, 0); len(got) != 0 {
		t.Fatalf("expected boundary entry to be pruned, got %+v", got)
	}
}

func TestActiveMembersCustomWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	members := []Member{{UserID: "u1", LastSeen: now.Add(-2 * time.Second)}}

	if got := ActiveMembers(members, now, time.Second); len(got) != 0 {
		t.Fatalf("expected pruning with 1s window, got %+v", got)
	}
	if got := ActiveMembers(members, now, 5*time.Second); len(got) != 1 {
		t.Fatalf("expected entry kept with 5s window, got %+v", got)
	}
}

func TestActiveMembersDoesNotMutateInput(t *testing.T) {
	now := time.Unix(1700000000, 0)
	members := []Member{
		{UserID: "u1", LastSeen: now.Add(-time.Hour)},
		{UserID: "u2", LastSeen: now},
	}

	_ = ActiveMembers(members, now, 0)
	if members[0].UserID != "u1" || members[1].UserID != "u2" {
		t.Fatalf("input slice mutated: %+v", members)
	}
}
