// Package wishtest provides fixtures shared by the handler tests.
package wishtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/database"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// Secret signs every token issued by Verifier
const Secret = "wishwell-test-secret"

// Verifier returns the verifier tests issue tokens with
func Verifier() *auth.Verifier {
	return auth.NewVerifier(Secret, "")
}

// NewDB creates a migrated in-memory SQLite database
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// NewRouter returns a gin engine in test mode
func NewRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// CreateUser inserts a profile whose email is derived from id
func CreateUser(t *testing.T, db *gorm.DB, id, name string) models.User {
	t.Helper()
	user := models.User{UserID: id, DisplayName: name, Email: id + "@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateGroup inserts a group owned by owner with the given extra members
func CreateGroup(t *testing.T, db *gorm.DB, owner models.User, name string, members ...models.User) models.Group {
	t.Helper()
	group := models.Group{Name: name, OwnerID: owner.UserID, DueDate: time.Now().UTC().AddDate(0, 1, 0)}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	AddMember(t, db, group, owner, true)
	for _, m := range members {
		AddMember(t, db, group, m, false)
	}
	return group
}

// AddMember inserts a GroupMember row
func AddMember(t *testing.T, db *gorm.DB, group models.Group, user models.User, isOwner bool) models.GroupMember {
	t.Helper()
	member := models.GroupMember{GroupID: group.GroupID, UserID: user.UserID, IsOwner: isOwner}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	return member
}

// CreateGift inserts a public gift with the given price
func CreateGift(t *testing.T, db *gorm.DB, owner models.User, name string, price float64) models.Gift {
	t.Helper()
	gift := models.Gift{UserID: owner.UserID, Name: name, Price: price, Priority: models.PriorityMedium}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("Failed to create gift: %v", err)
	}
	return gift
}

// Claim inserts a ClaimedGift row directly
func Claim(t *testing.T, db *gorm.DB, gift models.Gift, by models.User, status models.Status, at time.Time) models.ClaimedGift {
	t.Helper()
	claim := models.ClaimedGift{GiftID: gift.GiftID, ClaimedBy: by.UserID, StatusID: status, ModifiedAt: at}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("Failed to claim gift: %v", err)
	}
	return claim
}

// AuthHeader returns a bearer header for user
func AuthHeader(t *testing.T, user models.User) string {
	t.Helper()
	token, err := Verifier().Issue(user.UserID, user.Email, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Bearer " + token
}

// Do performs a request against router as user, JSON-encoding body when
// it is not nil.
func Do(t *testing.T, router http.Handler, method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", AuthHeader(t, *user))
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// Decode unmarshals a response body into v
func Decode(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", resp.Body.String(), err)
	}
}
