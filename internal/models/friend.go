package models

type FriendStatus uint8

const (
	FriendStatusNone FriendStatus = iota
	FriendStatusRequested
	FriendStatusAccepted
)

// Friend is the symmetric relation between two participants. UserA is the
// lexicographically smaller address.
type Friend struct {
	Address     Address      `gorm:"primaryKey;size:44" json:"address"`
	UserA       Address      `gorm:"size:44;not null;index" json:"user_a"`
	UserAName   Name         `json:"user_a_name"`
	UserAStatus FriendStatus `gorm:"not null;default:0" json:"user_a_status"`
	UserB       Address      `gorm:"size:44;not null;index" json:"user_b"`
	UserBName   Name         `json:"user_b_name"`
	UserBStatus FriendStatus `gorm:"not null;default:0" json:"user_b_status"`
	CreatedAt   int64        `gorm:"not null" json:"created_at"`
	Bump        uint8        `gorm:"not null" json:"bump"`
}

func (Friend) TableName() string {
	return "friends"
}

func (f *Friend) Clone() *Friend {
	c := *f
	return &c
}

func (f *Friend) IsAccepted() bool {
	return f.UserAStatus == FriendStatusAccepted && f.UserBStatus == FriendStatusAccepted
}

// Other returns the counterparty of addr in the relation.
func (f *Friend) Other(addr Address) Address {
	if f.UserA == addr {
		return f.UserB
	}
	return f.UserA
}
