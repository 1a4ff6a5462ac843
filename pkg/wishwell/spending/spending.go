package spending

import (
	"context"
	"errors"
	"time"

	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// ErrNoData means nothing was purchased in the requested range
var ErrNoData = errors.New("no data")

// RecentMonths bounds the claimed list when only recent claims are wanted
const RecentMonths = 6

// DataPoint is one purchase
type DataPoint struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Name   string    `json:"name"`
}

// Report is a user's spending over a range
type Report struct {
	Range      Range       `json:"range"`
	UserID     string      `json:"user_id"`
	Total      float64     `json:"total"`
	DataPoints []DataPoint `json:"data_points"`
}

// Aggregate totals the prices of the gifts viewer purchased in r. Purchases
// are ordered by when they were marked purchased.
func Aggregate(ctx context.Context, db *gorm.DB, viewer string, r Range, now time.Time) (*Report, error) {
	start, end := Bounds(r, now)

	var purchases []models.ClaimedGift
	err := db.WithContext(ctx).
		Preload("Gift").
		Where("claimed_by = ? AND status_id = ?", viewer, models.StatusPurchased).
		Where("modified_at >= ? AND modified_at < ?", start, end).
		Order("modified_at ASC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	report := &Report{Range: r, UserID: viewer}
	for _, p := range purchases {
		if p.Gift == nil {
			continue
		}
		report.Total += p.Gift.Price
		report.DataPoints = append(report.DataPoints, DataPoint{
			Date:   p.ModifiedAt,
			Amount: p.Gift.Price,
			Name:   p.Gift.Name,
		})
	}
	if len(report.DataPoints) == 0 {
		return nil, ErrNoData
	}
	return report, nil
}

// RecentPurchase returns viewer's latest purchase with the gift and its owner
func RecentPurchase(ctx context.Context, db *gorm.DB, viewer string) (*models.ClaimedGift, error) {
	var purchases []models.ClaimedGift
	err := db.WithContext(ctx).
		Preload("Gift.User").
		Where("claimed_by = ? AND status_id = ?", viewer, models.StatusPurchased).
		Order("modified_at DESC").
		Limit(1).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, ErrNoData
	}
	return &purchases[0], nil
}

// Claimed lists viewer's claims, oldest first. Claims on archived gifts are
// left out. With recentOnly, only claims changed in the last RecentMonths
// are returned.
func Claimed(ctx context.Context, db *gorm.DB, viewer string, recentOnly bool, now time.Time) ([]models.ClaimedGift, error) {
	q := db.WithContext(ctx).
		Preload("Gift.User").
		Where("claimed_by = ?", viewer)
	if recentOnly {
		q = q.Where("modified_at > ?", now.AddDate(0, -RecentMonths, 0))
	}

	var rows []models.ClaimedGift
	if err := q.Order("modified_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]models.ClaimedGift, 0, len(rows))
	for _, r := range rows {
		if r.Gift == nil || r.Gift.IsArchived {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}
