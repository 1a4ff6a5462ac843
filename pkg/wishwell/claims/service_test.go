package claims

import (
	"context"
	"errors"
	"testing"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/wishtest"
	"gorm.io/gorm"
)

func TestClaimPurchaseUnclaim(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	claim, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StateClaimed)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if claim.ClaimedBy != bob.UserID || claim.StatusID != models.StatusClaimed {
		t.Errorf("Unexpected claim: %+v", claim)
	}

	claim, err = svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StatePurchased)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if claim.StatusID != models.StatusPurchased {
		t.Errorf("Expected purchased, got %v", claim.StatusID)
	}

	if err := svc.UnclaimGift(ctx, bob.UserID, gift.GiftID); err != nil {
		t.Fatalf("Unclaim failed: %v", err)
	}

	var count int64
	db.Model(&models.ClaimedGift{}).Where("gift_id = ?", gift.GiftID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no claim rows after unclaim, got %d", count)
	}
}

func TestPurchaseAvailableRejected(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	_, err := svc.UpdateGiftStatus(context.Background(), bob.UserID, gift.GiftID, StatePurchased)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestOnlyHolderMayChangeClaim(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	carol := wishtest.CreateUser(t, db, "carol", "Carol")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob, carol)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StateClaimed); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	if _, err := svc.UpdateGiftStatus(ctx, carol.UserID, gift.GiftID, StatePurchased); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-holder purchase, got %v", err)
	}
	if err := svc.UnclaimGift(ctx, carol.UserID, gift.GiftID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for non-holder unclaim, got %v", err)
	}

	var claim models.ClaimedGift
	db.Where("gift_id = ?", gift.GiftID).First(&claim)
	if claim.ClaimedBy != bob.UserID || claim.StatusID != models.StatusClaimed {
		t.Errorf("Expected bob's claim to be untouched, got %+v", claim)
	}
}

func TestOwnerCannotClaim(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	_, err := svc.UpdateGiftStatus(context.Background(), alice.UserID, gift.GiftID, StateClaimed)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestInvisibleGiftsAreNotFound(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	stranger := wishtest.CreateUser(t, db, "dave", "Dave")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob)

	gift := wishtest.CreateGift(t, db, alice, "Book", 20)
	if _, err := svc.UpdateGiftStatus(ctx, stranger.UserID, gift.GiftID, StateClaimed); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a non co-member, got %v", err)
	}

	private := wishtest.CreateGift(t, db, alice, "Diary", 10)
	db.Model(&private).Update("is_private", true)
	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, private.GiftID, StateClaimed); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a private gift, got %v", err)
	}

	archived := wishtest.CreateGift(t, db, alice, "Old lamp", 30)
	db.Model(&archived).Update("is_archived", true)
	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, archived.GiftID, StateClaimed); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an archived gift, got %v", err)
	}

	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, 9999, StateClaimed); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a missing gift, got %v", err)
	}
}

func TestSecondClaimantLoses(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	carol := wishtest.CreateUser(t, db, "carol", "Carol")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob, carol)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StateClaimed); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if _, err := svc.UpdateGiftStatus(ctx, carol.UserID, gift.GiftID, StateClaimed); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("Expected ErrAlreadyClaimed, got %v", err)
	}

	var claims []models.ClaimedGift
	db.Where("gift_id = ?", gift.GiftID).Find(&claims)
	if len(claims) != 1 || claims[0].ClaimedBy != bob.UserID {
		t.Errorf("Expected a single claim by bob, got %+v", claims)
	}
}

func TestHolderCanAlwaysUnclaim(t *testing.T) {
	tests := []struct {
		name string
		hide func(t *testing.T, db *gorm.DB, gift models.Gift, holder models.GroupMember)
	}{
		{"holder left the group", func(t *testing.T, db *gorm.DB, gift models.Gift, holder models.GroupMember) {
			if err := db.Delete(&holder).Error; err != nil {
				t.Fatalf("Failed to remove member: %v", err)
			}
		}},
		{"gift archived after claim", func(t *testing.T, db *gorm.DB, gift models.Gift, holder models.GroupMember) {
			db.Model(&gift).Update("is_archived", true)
		}},
		{"gift made private after claim", func(t *testing.T, db *gorm.DB, gift models.Gift, holder models.GroupMember) {
			db.Model(&gift).Update("is_private", true)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := wishtest.NewDB(t)
			svc := NewService(db)
			ctx := context.Background()

			alice := wishtest.CreateUser(t, db, "alice", "Alice")
			bob := wishtest.CreateUser(t, db, "bob", "Bob")
			carol := wishtest.CreateUser(t, db, "carol", "Carol")
			group := wishtest.CreateGroup(t, db, alice, "Birthday", carol)
			bobMember := wishtest.AddMember(t, db, group, bob, false)
			gift := wishtest.CreateGift(t, db, alice, "Book", 20)

			if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StateClaimed); err != nil {
				t.Fatalf("Claim failed: %v", err)
			}
			tt.hide(t, db, gift, bobMember)

			if err := svc.UnclaimGift(ctx, carol.UserID, gift.GiftID); err == nil {
				t.Error("Expected a non-holder unclaim to fail")
			}
			if err := svc.UnclaimGift(ctx, bob.UserID, gift.GiftID); err != nil {
				t.Fatalf("Holder unclaim failed: %v", err)
			}

			var count int64
			db.Model(&models.ClaimedGift{}).Where("gift_id = ?", gift.GiftID).Count(&count)
			if count != 0 {
				t.Errorf("Expected the claim to be released, got %d rows", count)
			}
		})
	}
}

func TestReleasedGiftCanBeClaimedAgain(t *testing.T) {
	db := wishtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	carol := wishtest.CreateUser(t, db, "carol", "Carol")
	group := wishtest.CreateGroup(t, db, alice, "Birthday", carol)
	bobMember := wishtest.AddMember(t, db, group, bob, false)
	gift := wishtest.CreateGift(t, db, alice, "Book", 20)

	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StateClaimed); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	db.Delete(&bobMember)

	if _, err := svc.UpdateGiftStatus(ctx, bob.UserID, gift.GiftID, StatePurchased); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected a former member to be unable to purchase, got %v", err)
	}
	if err := svc.UnclaimGift(ctx, bob.UserID, gift.GiftID); err != nil {
		t.Fatalf("Holder unclaim failed: %v", err)
	}
	claim, err := svc.UpdateGiftStatus(ctx, carol.UserID, gift.GiftID, StateClaimed)
	if err != nil {
		t.Fatalf("Expected the remaining member to claim, got %v", err)
	}
	if claim.ClaimedBy != carol.UserID {
		t.Errorf("Expected carol's claim, got %+v", claim)
	}
}
