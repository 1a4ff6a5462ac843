package spending

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mikepea/wishwell/pkg/wishwell/auth"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"github.com/mikepea/wishwell/pkg/wishwell/wishtest"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	alice, bob models.User
}

func setup(t *testing.T) fixture {
	db := wishtest.NewDB(t)
	alice := wishtest.CreateUser(t, db, "alice", "Alice")
	bob := wishtest.CreateUser(t, db, "bob", "Bob")
	wishtest.CreateGroup(t, db, alice, "Birthday", bob)
	return fixture{db: db, alice: alice, bob: bob}
}

func TestAggregate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	monthStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	late := wishtest.CreateGift(t, f.db, f.alice, "Lamp", 30)
	early := wishtest.CreateGift(t, f.db, f.alice, "Book", 12.5)
	before := wishtest.CreateGift(t, f.db, f.alice, "Kite", 100)
	claimedOnly := wishtest.CreateGift(t, f.db, f.alice, "Pen", 4)

	wishtest.Claim(t, f.db, late, f.bob, models.StatusPurchased, monthStart.AddDate(0, 0, 10))
	wishtest.Claim(t, f.db, early, f.bob, models.StatusPurchased, monthStart)
	wishtest.Claim(t, f.db, before, f.bob, models.StatusPurchased, monthStart.Add(-time.Second))
	wishtest.Claim(t, f.db, claimedOnly, f.bob, models.StatusClaimed, monthStart.AddDate(0, 0, 2))

	report, err := Aggregate(ctx, f.db, f.bob.UserID, Month, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if report.Total != 42.5 {
		t.Errorf("Expected total 42.5, got %v", report.Total)
	}
	if len(report.DataPoints) != 2 || report.DataPoints[0].Name != "Book" || report.DataPoints[1].Name != "Lamp" {
		t.Errorf("Expected Book then Lamp, got %+v", report.DataPoints)
	}

	lifetime, err := Aggregate(ctx, f.db, f.bob.UserID, Lifetime, testNow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if lifetime.Total != 142.5 {
		t.Errorf("Expected lifetime total 142.5, got %v", lifetime.Total)
	}

	if _, err := Aggregate(ctx, f.db, f.alice.UserID, Lifetime, testNow); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData for a user with no purchases, got %v", err)
	}
}

func TestClaimedAndRecentPurchase(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	old := wishtest.CreateGift(t, f.db, f.alice, "Old", 5)
	recent := wishtest.CreateGift(t, f.db, f.alice, "Recent", 6)
	archived := wishtest.CreateGift(t, f.db, f.alice, "Archived", 7)
	f.db.Model(&archived).Update("is_archived", true)

	wishtest.Claim(t, f.db, old, f.bob, models.StatusPurchased, testNow.AddDate(-1, 0, 0))
	wishtest.Claim(t, f.db, recent, f.bob, models.StatusClaimed, testNow.AddDate(0, -1, 0))
	wishtest.Claim(t, f.db, archived, f.bob, models.StatusClaimed, testNow.AddDate(0, 0, -1))

	all, err := Claimed(ctx, f.db, f.bob.UserID, false, testNow)
	if err != nil {
		t.Fatalf("Claimed failed: %v", err)
	}
	if len(all) != 2 || all[0].Gift.Name != "Old" {
		t.Errorf("Expected Old and Recent without the archived gift, got %d rows", len(all))
	}

	recentOnly, _ := Claimed(ctx, f.db, f.bob.UserID, true, testNow)
	if len(recentOnly) != 1 || recentOnly[0].Gift.Name != "Recent" {
		t.Errorf("Expected only Recent, got %d rows", len(recentOnly))
	}
	if recentOnly[0].Gift.User == nil || recentOnly[0].Gift.User.DisplayName != "Alice" {
		t.Error("Expected the gift owner to be loaded")
	}

	purchase, err := RecentPurchase(ctx, f.db, f.bob.UserID)
	if err != nil {
		t.Fatalf("RecentPurchase failed: %v", err)
	}
	if purchase.Gift.Name != "Old" {
		t.Errorf("Expected Old as the only purchase, got %q", purchase.Gift.Name)
	}
	if _, err := RecentPurchase(ctx, f.db, f.alice.UserID); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	owner := &models.User{DisplayName: "Alice"}
	claimed := []models.ClaimedGift{{
		StatusID:   models.StatusPurchased,
		ModifiedAt: testNow,
		Gift:       &models.Gift{Name: "Book, hardback", Price: 12.5, User: owner},
	}}

	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, claimed); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one row, got %d", len(records))
	}
	row := records[1]
	if row[0] != "Book, hardback" || row[1] != "Alice" || row[2] != "12.50" || row[3] != "purchased" {
		t.Errorf("Unexpected row: %v", row)
	}
}

func TestExportXLSX(t *testing.T) {
	claimed := []models.ClaimedGift{{
		StatusID:   models.StatusClaimed,
		ModifiedAt: testNow,
		Gift:       &models.Gift{Name: "Book", Price: 12.5},
	}}

	var buf bytes.Buffer
	if err := Export(&buf, FormatXLSX, claimed); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("Expected a zip container")
	}
}

func TestSpendingHandlers(t *testing.T) {
	f := setup(t)
	router := wishtest.NewRouter()
	api := router.Group("/api")
	api.Use(auth.Middleware(wishtest.Verifier()))
	h := NewHandler(f.db)
	h.now = func() time.Time { return testNow }
	h.RegisterRoutes(api.Group("/claimed"))

	resp := wishtest.Do(t, router, "GET", "/api/claimed/spending?range=week", &f.bob, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.Code)
	}

	gift := wishtest.CreateGift(t, f.db, f.alice, "Book", 20)
	wishtest.Claim(t, f.db, gift, f.bob, models.StatusPurchased, testNow.Add(-time.Hour))

	resp = wishtest.Do(t, router, "GET", "/api/claimed/spending?range=week", &f.bob, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var report Report
	wishtest.Decode(t, resp, &report)
	if report.Total != 20 || report.Range != Week {
		t.Errorf("Unexpected report: %+v", report)
	}

	resp = wishtest.Do(t, router, "GET", "/api/claimed/spending?range=decade", &f.bob, nil)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}

	resp = wishtest.Do(t, router, "GET", "/api/claimed?recent=true", &f.bob, nil)
	var claimed []models.ClaimedGift
	wishtest.Decode(t, resp, &claimed)
	if len(claimed) != 1 {
		t.Errorf("Expected one claimed gift, got %d", len(claimed))
	}

	resp = wishtest.Do(t, router, "GET", "/api/claimed/export?format=csv", &f.bob, nil)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Expected a csv download, got %d %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	if !strings.Contains(resp.Body.String(), "Book") {
		t.Errorf("Expected the export to list Book, got %q", resp.Body.String())
	}
}
