package models

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	tables := []string{"users", "groups", "group_members", "group_invites", "gifts", "claimed_gifts", "versions"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUserEmailUnique(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{UserID: "u1", Email: "test@example.com", DisplayName: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	user2 := User{UserID: "u2", Email: "test@example.com", DisplayName: "Another User"}
	if err := db.Create(&user2).Error; err == nil {
		t.Error("Expected error when creating user with duplicate email")
	}
}

func TestGroupMemberUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	db.Create(&User{UserID: "u1", Email: "a@example.com", DisplayName: "A"})
	group := Group{Name: "Birthday", OwnerID: "u1", DueDate: time.Now()}
	db.Create(&group)

	if err := db.Create(&GroupMember{GroupID: group.GroupID, UserID: "u1", IsOwner: true}).Error; err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}
	if err := db.Create(&GroupMember{GroupID: group.GroupID, UserID: "u1"}).Error; err == nil {
		t.Error("Expected error when adding the same user to a group twice")
	}

	var loaded Group
	db.Preload("Members.User").First(&loaded, group.GroupID)
	if len(loaded.Members) != 1 {
		t.Fatalf("Expected 1 member, got %d", len(loaded.Members))
	}
	if loaded.Members[0].User == nil || loaded.Members[0].User.DisplayName != "A" {
		t.Errorf("Expected member user to be preloaded")
	}
}

func TestClaimIsExclusive(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	gift := Gift{UserID: "owner", Name: "Book", Price: 12, Priority: PriorityHigh}
	db.Create(&gift)

	first := ClaimedGift{GiftID: gift.GiftID, ClaimedBy: "a", StatusID: StatusClaimed, ModifiedAt: time.Now()}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("Failed to create claim: %v", err)
	}
	second := ClaimedGift{GiftID: gift.GiftID, ClaimedBy: "b", StatusID: StatusClaimed, ModifiedAt: time.Now()}
	if err := db.Create(&second).Error; err == nil {
		t.Error("Expected error when claiming an already claimed gift")
	}

	var loaded Gift
	db.Preload("Claim").First(&loaded, gift.GiftID)
	if loaded.Claim == nil || loaded.Claim.ClaimedBy != "a" {
		t.Errorf("Expected claim by a, got %+v", loaded.Claim)
	}
}

func TestGiftDefaults(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	gift := Gift{UserID: "owner", Name: "Socks"}
	db.Create(&gift)

	var loaded Gift
	db.First(&loaded, gift.GiftID)
	if loaded.Priority != PriorityMedium {
		t.Errorf("Expected default priority medium, got %v", loaded.Priority)
	}
	if !loaded.VisibleToOthers() {
		t.Error("Expected a new gift to be visible to co-members")
	}
}

func TestEnumStrings(t *testing.T) {
	if PriorityHigh.String() != "high" || PriorityLow.String() != "low" {
		t.Error("unexpected priority text")
	}
	if Priority(7).Valid() {
		t.Error("Expected priority 7 to be invalid")
	}
	if StatusPurchased.String() != "purchased" || StatusClaimed.String() != "claimed" {
		t.Error("unexpected status text")
	}
}
