package claims

import (
	"context"
	"errors"
	"time"

	"github.com/mikepea/wishwell/pkg/wishwell/access"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
	"gorm.io/gorm"
)

// Service applies claim transitions atomically
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a claims service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// UpdateGiftStatus moves giftID to target on behalf of actor. The gift must be
// visible to actor (shared group, not private, not archived); otherwise
// ErrNotFound is returned. Releasing one's own claim skips the visibility
// check. The resulting claim row is returned, or nil when the gift ends up
// available.
func (s *Service) UpdateGiftStatus(ctx context.Context, actor string, giftID uint, target State) (*models.ClaimedGift, error) {
	var result *models.ClaimedGift

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gift models.Gift
		if err := tx.First(&gift, giftID).Error; err != nil {
			if access.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if gift.UserID == actor {
			return ErrForbidden
		}

		var claim *models.ClaimedGift
		var rows []models.ClaimedGift
		if err := tx.Where("gift_id = ?", gift.GiftID).Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			claim = &rows[0]
		}

		// The holder may always release a claim, even after leaving the
		// owner's groups or once the gift is hidden.
		held := claim != nil && claim.ClaimedBy == actor
		if !(held && target == StateAvailable) {
			if !gift.VisibleToOthers() {
				return ErrNotFound
			}
			shared, err := access.SharesGroup(tx, actor, gift.UserID)
			if err != nil {
				return err
			}
			if !shared {
				return ErrNotFound
			}
		}

		from := StateOf(claim)
		holder := ""
		if claim != nil {
			holder = claim.ClaimedBy
		}
		if err := Transition(from, target, actor, holder, gift.UserID); err != nil {
			return err
		}

		switch target {
		case StateAvailable:
			return tx.Delete(claim).Error
		case StateClaimed:
			created := models.ClaimedGift{
				GiftID:     gift.GiftID,
				ClaimedBy:  actor,
				StatusID:   models.StatusClaimed,
				ModifiedAt: s.now(),
			}
			if err := tx.Create(&created).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrAlreadyClaimed
				}
				return err
			}
			result = &created
		case StatePurchased:
			claim.StatusID = models.StatusPurchased
			claim.ModifiedAt = s.now()
			if err := tx.Model(claim).Updates(map[string]interface{}{
				"status_id":   claim.StatusID,
				"modified_at": claim.ModifiedAt,
			}).Error; err != nil {
				return err
			}
			result = claim
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnclaimGift releases actor's claim on giftID
func (s *Service) UnclaimGift(ctx context.Context, actor string, giftID uint) error {
	_, err := s.UpdateGiftStatus(ctx, actor, giftID, StateAvailable)
	return err
}
