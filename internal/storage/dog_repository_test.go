package storage

import (
	"context"
	"testing"

	"github.com/pewos/backend/internal/storage/models"
)

func TestDogListVisibleToIncludesAcceptedGrants(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	dogs := NewDogRepository(db)
	for _, d := range []models.Dog{
		{UserID: "owner", Name: "Luna"},
		{UserID: "owner", Name: "Rocky"},
		{UserID: "other", Name: "Max"},
	} {
		d := d
		if err := dogs.Create(ctx, &d); err != nil {
			t.Fatalf("create dog %s: %v", d.Name, err)
		}
	}

	grants := NewSharedAccessRepository(db)
	g := &models.SharedAccess{
		OwnerID:         "owner",
		OwnerEmail:      "owner@example.com",
		SharedWithEmail: "friend@example.com",
		Status:          models.SharedStatusPending,
	}
	if err := grants.Create(ctx, g); err != nil {
		t.Fatalf("create grant: %v", err)
	}

	// Pending grants expose nothing
	list, err := dogs.ListVisibleTo(ctx, "friend")
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("pending grant exposed %d dogs, want 0", len(list))
	}

	friendID := "friend"
	if err := grants.SetStatus(ctx, g.ID, models.SharedStatusAccepted, &friendID); err != nil {
		t.Fatalf("accept grant: %v", err)
	}

	// Accepted grant exposes the owner's dogs, sorted by name
	list, err = dogs.ListVisibleTo(ctx, "friend")
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("accepted grant exposed %d dogs, want 2", len(list))
	}
	if list[0].Name != "Luna" || list[1].Name != "Rocky" {
		t.Errorf("visible dogs = %s, %s; want Luna, Rocky", list[0].Name, list[1].Name)
	}

	// The owner sees their own dogs and nobody else's
	list, err = dogs.ListVisibleTo(ctx, "owner")
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("owner sees %d dogs, want 2", len(list))
	}

	// The ungranted third user sees only their own
	list, err = dogs.ListVisibleTo(ctx, "other")
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Max" {
		t.Errorf("other sees %v, want just Max", list)
	}
}
