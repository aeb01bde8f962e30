package models

const ProfileVersion uint8 = 2

// Profile is the per-participant aggregate ledger.
type Profile struct {
	Address          Address `gorm:"primaryKey;size:44" json:"address"`
	Owner            Address `gorm:"size:44;not null;uniqueIndex" json:"owner"`
	Name             Name    `json:"name"`
	BetsCreated      uint32  `gorm:"not null;default:0" json:"bets_created"`
	BetsCancelled    uint32  `gorm:"not null;default:0" json:"bets_cancelled"`
	BetsAccepted     uint32  `gorm:"not null;default:0" json:"bets_accepted"`
	WinsAsCreator    uint32  `gorm:"not null;default:0" json:"wins_as_creator"`
	LossesAsCreator  uint32  `gorm:"not null;default:0" json:"losses_as_creator"`
	WinsAsAcceptor   uint32  `gorm:"not null;default:0" json:"wins_as_acceptor"`
	LossesAsAcceptor uint32  `gorm:"not null;default:0" json:"losses_as_acceptor"`
	CreatorProfit    int64   `gorm:"not null;default:0" json:"creator_profit"`
	AcceptorProfit   int64   `gorm:"not null;default:0" json:"acceptor_profit"`
	CreatorVolume    uint64  `gorm:"not null;default:0" json:"creator_volume"`
	AcceptorVolume   uint64  `gorm:"not null;default:0" json:"acceptor_volume"`
	CreatedAt        int64   `gorm:"not null" json:"created_at"`
	Version          uint8   `gorm:"not null" json:"version"`
	Bump             uint8   `gorm:"not null" json:"bump"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) Clone() *Profile {
	c := *p
	return &c
}

type CreateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}
