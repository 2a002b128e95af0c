package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"creatorpay/core/events"
	"creatorpay/integrations/exports"
	"creatorpay/native/common"
	"creatorpay/storage/audit"
)

const cursorName = "audit"

// Source yields committed audit entries in sequence order.
type Source interface {
	List(ctx context.Context, after int64, limit int) ([]audit.Entry, error)
}

// Open connects to the read-model database. postgres:// and postgresql://
// DSNs use the Postgres driver; anything else is treated as a SQLite path.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	default:
		dialector = &sqlite.Dialector{DriverName: audit.DriverName, DSN: dsn}
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("indexer: open %s: %w", dialector.Name(), err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("indexer: migrate: %w", err)
	}
	return db, nil
}

// Indexer projects the audit log into queryable tables.
type Indexer struct {
	db     *gorm.DB
	source Source
	batch  int
	logger *slog.Logger
}

func New(db *gorm.DB, source Source, batch int, logger *slog.Logger) *Indexer {
	if batch <= 0 {
		batch = 500
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{db: db, source: source, batch: batch, logger: logger}
}

// Run syncs every interval until ctx is cancelled.
func (ix *Indexer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for {
			n, err := ix.SyncOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				ix.logger.Error("indexer sync failed", slog.Any("error", err))
				break
			}
			if n < ix.batch {
				break
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SyncOnce folds the next batch of entries and advances the cursor in the
// same transaction. It returns the number of entries applied.
func (ix *Indexer) SyncOnce(ctx context.Context) (int, error) {
	cursor, err := ix.Cursor(ctx)
	if err != nil {
		return 0, err
	}
	entries, err := ix.source.List(ctx, cursor, ix.batch)
	if err != nil {
		return 0, fmt.Errorf("indexer: list audit: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}
	rows, err := exports.Rows(entries)
	if err != nil {
		return 0, err
	}
	err = ix.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := apply(tx, &entries[i], &rows[i]); err != nil {
				return fmt.Errorf("indexer: entry %d: %w", entries[i].Sequence, err)
			}
		}
		last := Cursor{Name: cursorName, Sequence: entries[len(entries)-1].Sequence}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&last).Error
	})
	if err != nil {
		return 0, err
	}
	ix.logger.Debug("indexer synced", slog.Int("count", len(entries)), slog.Int64("cursor", entries[len(entries)-1].Sequence))
	return len(entries), nil
}

// Cursor returns the last applied audit sequence.
func (ix *Indexer) Cursor(ctx context.Context) (int64, error) {
	var c Cursor
	err := ix.db.WithContext(ctx).First(&c, "name = ?", cursorName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return c.Sequence, err
}

func apply(tx *gorm.DB, entry *audit.Entry, row *exports.Row) error {
	switch entry.Type {
	case events.TypeVaultInitialized:
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&CreatorEarnings{Creator: row.Creator, UpdatedAt: row.Timestamp}).Error

	case events.TypeTipSent:
		tip := Tip{
			Sequence:  entry.Sequence,
			Tipper:    row.Payer,
			Creator:   row.Creator,
			Amount:    row.Gross,
			Fee:       row.Fee,
			Net:       row.Net,
			Post:      entry.Attributes["post"],
			Index:     entry.Attributes["index"],
			Timestamp: row.Timestamp,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tip).Error; err != nil {
			return err
		}
		return updateEarnings(tx, row, func(e *CreatorEarnings) error {
			var err error
			if e.TotalEarned, err = common.CheckedAdd(e.TotalEarned, row.Net); err != nil {
				return err
			}
			e.Tips++
			return nil
		})

	case events.TypeSubscriptionCreated:
		sub := Subscription{
			Subscriber:     row.Payer,
			Creator:        row.Creator,
			AmountPerMonth: row.Gross,
			Active:         true,
			StartedAt:      row.Timestamp,
			LastPayment:    row.Timestamp,
			TotalPaid:      row.Gross,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sub).Error; err != nil {
			return err
		}
		return updateEarnings(tx, row, func(e *CreatorEarnings) error {
			var err error
			if e.TotalEarned, err = common.CheckedAdd(e.TotalEarned, row.Net); err != nil {
				return err
			}
			e.Subscribers++
			return nil
		})

	case events.TypeSubscriptionProcessed:
		var sub Subscription
		if err := tx.First(&sub, "subscriber = ? AND creator = ?", row.Payer, row.Creator).Error; err != nil {
			return err
		}
		sub.LastPayment = row.Timestamp
		sub.Renewals++
		var err error
		if sub.TotalPaid, err = common.CheckedAdd(sub.TotalPaid, row.Gross); err != nil {
			return err
		}
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		return updateEarnings(tx, row, func(e *CreatorEarnings) error {
			var err error
			if e.TotalEarned, err = common.CheckedAdd(e.TotalEarned, row.Net); err != nil {
				return err
			}
			e.Renewals++
			return nil
		})

	case events.TypeSubscriptionCancelled:
		res := tx.Model(&Subscription{}).
			Where("subscriber = ? AND creator = ?", row.Payer, row.Creator).
			Update("active", false)
		if res.Error != nil {
			return res.Error
		}
		return updateEarnings(tx, row, func(e *CreatorEarnings) error {
			e.Subscribers = common.SaturatingSub(e.Subscribers, 1)
			return nil
		})

	case events.TypeWithdrawal:
		return updateEarnings(tx, row, func(e *CreatorEarnings) error {
			var err error
			e.Withdrawn, err = common.CheckedAdd(e.Withdrawn, row.Gross)
			return err
		})
	}
	return nil
}

func loadEarnings(tx *gorm.DB, creator string) (*CreatorEarnings, error) {
	earnings := &CreatorEarnings{Creator: creator}
	err := tx.First(earnings, "creator = ?", creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return earnings, nil
	}
	return earnings, err
}

func updateEarnings(tx *gorm.DB, row *exports.Row, mutate func(*CreatorEarnings) error) error {
	earnings, err := loadEarnings(tx, row.Creator)
	if err != nil {
		return err
	}
	if err := mutate(earnings); err != nil {
		return err
	}
	earnings.UpdatedAt = row.Timestamp
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(earnings).Error
}

// Earnings returns the aggregate for creator.
func (ix *Indexer) Earnings(ctx context.Context, creator string) (*CreatorEarnings, error) {
	var out CreatorEarnings
	if err := ix.db.WithContext(ctx).First(&out, "creator = ?", creator).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// TopCreators lists creators by total earnings, highest first.
func (ix *Indexer) TopCreators(ctx context.Context, limit int) ([]CreatorEarnings, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []CreatorEarnings
	err := ix.db.WithContext(ctx).Order("total_earned DESC").Order("creator").Limit(limit).Find(&out).Error
	return out, err
}

// TipsFor lists the tips a creator received, newest first.
func (ix *Indexer) TipsFor(ctx context.Context, creator string, limit int) ([]Tip, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Tip
	err := ix.db.WithContext(ctx).Where("creator = ?", creator).Order("sequence DESC").Limit(limit).Find(&out).Error
	return out, err
}

// ActiveSubscribers lists the active subscriptions of a creator.
func (ix *Indexer) ActiveSubscribers(ctx context.Context, creator string) ([]Subscription, error) {
	var out []Subscription
	err := ix.db.WithContext(ctx).Where("creator = ? AND active = ?", creator, true).Order("subscriber").Find(&out).Error
	return out, err
}
