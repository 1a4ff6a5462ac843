package dashboard

import (
	"net/http"
	"testing"

	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/wishtest"
)

func TestPriorityGifts(t *testing.T) {
	db := wishtest.NewDB(t)
	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	carol := wishtest.CreateUser(t, db, "carol", "Carol")
	stranger := wishtest.CreateUser(t, db, "dave", "Dave")

	wishtest.CreateGroup(t, db, alice, "Birthday", bob)
	wishtest.CreateGroup(t, db, bob, "Hiking", alice, carol)

	high := func(owner models.User, name string) models.Gift {
		g := wishtest.CreateGift(t, db, owner, name, 10)
		db.Model(&g).Update("priority", models.PriorityHigh)
		return g
	}
	high(bob, "Tent")
	high(carol, "Boots")
	high(alice, "Alice's own")
	high(stranger, "Stranger's")
	private := high(bob, "Secret")
	db.Model(&private).Update("is_private", true)
	archived := high(carol, "Old skis")
	db.Model(&archived).Update("is_archived", true)
	wishtest.CreateGift(t, db, bob, "Socks", 5)

	gifts, err := PriorityGifts(db, alice.UserID)
	if err != nil {
		t.Fatalf("PriorityGifts failed: %v", err)
	}
	if len(gifts) != 2 {
		t.Fatalf("Expected 2 gifts, got %d", len(gifts))
	}
	if gifts[0].Name != "Boots" || gifts[1].Name != "Tent" {
		t.Errorf("Expected newest first, got %q then %q", gifts[0].Name, gifts[1].Name)
	}
	if len(gifts[1].Groups) != 2 {
		t.Errorf("Expected alice and bob to share 2 groups, got %+v", gifts[1].Groups)
	}
	if len(gifts[0].Groups) != 1 || gifts[0].Groups[0].Name != "Hiking" {
		t.Errorf("Expected alice and carol to share Hiking, got %+v", gifts[0].Groups)
	}
	if gifts[0].User == nil || gifts[0].User.DisplayName != "Carol" {
		t.Error("Expected the owner to be loaded")
	}
}

func TestPriorityHandler(t *testing.T) {
	db := wishtest.NewDB(t)
	router := wishtest.NewRouter()
	api := router.Group("/api")
	api.Use(auth.Middleware(wishtest.Verifier()))
	NewHandler(db).RegisterRoutes(api.Group("/dashboard"))

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	resp := wishtest.Do(t, router, "GET", "/api/dashboard/priority-gifts", &alice, nil)
	if resp.Code != http.StatusOK || resp.Body.String() != "[]" {
		t.Errorf("Expected an empty list, got %d %s", resp.Code, resp.Body.String())
	}
}
