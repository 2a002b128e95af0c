package indexer

import "gorm.io/gorm"

// Cursor remembers the last audit sequence folded into the read model.
type Cursor struct {
	Name     string `gorm:"primaryKey" json:"name"`
	Sequence int64  `gorm:"not null" json:"sequence"`
}

// Tip is one settled tip. Amount is the gross paid by the tipper.
type Tip struct {
	Sequence  int64  `gorm:"primaryKey;autoIncrement:false" json:"sequence"`
	Tipper    string `gorm:"index;not null" json:"tipper"`
	Creator   string `gorm:"index;not null" json:"creator"`
	Amount    uint64 `gorm:"not null" json:"amount,string"`
	Fee       uint64 `gorm:"not null" json:"fee,string"`
	Net       uint64 `gorm:"not null" json:"net,string"`
	Post      string `json:"post,omitempty"`
	Index     string `gorm:"column:tip_index" json:"index"`
	Timestamp int64  `gorm:"index" json:"timestamp"`
}

// Subscription mirrors the lifecycle of one subscriber/creator pair.
type Subscription struct {
	Subscriber     string `gorm:"primaryKey" json:"subscriber"`
	Creator        string `gorm:"primaryKey;index" json:"creator"`
	AmountPerMonth uint64 `json:"amountPerMonth,string"`
	Active         bool   `gorm:"index" json:"active"`
	StartedAt      int64  `json:"startedAt"`
	LastPayment    int64  `json:"lastPayment"`
	Renewals       uint64 `json:"renewals"`
	TotalPaid      uint64 `json:"totalPaid,string"`
}

// CreatorEarnings aggregates the vault activity of one creator.
type CreatorEarnings struct {
	Creator     string `gorm:"primaryKey" json:"creator"`
	TotalEarned uint64 `json:"totalEarned,string"`
	Withdrawn   uint64 `json:"withdrawn,string"`
	Tips        uint64 `json:"tips"`
	Renewals    uint64 `json:"renewals"`
	Subscribers uint64 `json:"subscribers"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// AutoMigrate creates or updates the read-model tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Cursor{}, &Tip{}, &Subscription{}, &CreatorEarnings{})
}
