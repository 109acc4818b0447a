package model

type Recipient struct {
	RecipientID uint64 `gorm:"column:recipient_id;primaryKey;autoIncrement"`
	Name        string `gorm:"column:name;type:text;not null"`
	Email       string `gorm:"column:email;type:text;not null;default:''"`
	Phone       string `gorm:"column:phone;type:text;not null;default:''"`
	GroupName   string `gorm:"column:group_name;type:text;not null;default:'';index"`
}

func (Recipient) TableName() string {
	return "recipients"
}
