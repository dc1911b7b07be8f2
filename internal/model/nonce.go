package model

// NonceBaseline is the counter value of a freshly created or reset nonce.
const NonceBaseline int64 = 1

// Nonce binds issued tokens to a per-user counter. A token is valid only
// while its embedded nonce equals Counter.
type Nonce struct {
	ID      uint   `gorm:"primaryKey" bson:"-" json:"-"`
	User    string `gorm:"column:user_email;size:128;not null;uniqueIndex" bson:"user" json:"user"`
	Counter int64  `gorm:"column:counter;not null" bson:"nonce" json:"nonce"`
}

func (Nonce) TableName() string {
	return "nonces"
}
