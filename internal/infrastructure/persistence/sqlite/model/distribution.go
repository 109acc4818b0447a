package model

// Distribution has a unique (talk_id, recipient_id) index; it is the
// storage-level backstop for the redistribution skip check.
type Distribution struct {
	DistributionID uint64 `gorm:"column:distribution_id;primaryKey;autoIncrement"`
	TalkID         uint64 `gorm:"column:talk_id;not null;uniqueIndex:idx_talk_recipient;index"`
	RecipientID    uint64 `gorm:"column:recipient_id;not null;uniqueIndex:idx_talk_recipient"`
	Token          string `gorm:"column:token;type:text;not null;uniqueIndex"`
	SentAt         string `gorm:"column:sent_at;type:text;not null"`
	NotifyAttempts int    `gorm:"column:notify_attempts;not null;default:0"`
	LastSentAt     string `gorm:"column:last_sent_at;type:text;not null;default:''"`
}

func (Distribution) TableName() string {
	return "distributions"
}

// Confirmation is 1:1 with a distribution; the unique index makes a
// second confirmation a constraint violation rather than a silent dup.
type Confirmation struct {
	ConfirmationID uint64 `gorm:"column:confirmation_id;primaryKey;autoIncrement"`
	DistributionID uint64 `gorm:"column:distribution_id;not null;uniqueIndex"`
	SignatureData  string `gorm:"column:signature_data;type:text;not null"`
	SubmitterIP    string `gorm:"column:submitter_ip;type:text;not null;default:''"`
	Understood     bool   `gorm:"column:understood;not null;default:0"`
	QuizScore      *int   `gorm:"column:quiz_score"`
	SubmittedAt    string `gorm:"column:submitted_at;type:text;not null"`
}

func (Confirmation) TableName() string {
	return "confirmations"
}

// TestDistribution rows are ephemeral preview sends; they never count in
// reporting and are purged when the talk is actually distributed.
type TestDistribution struct {
	TestID       uint64 `gorm:"column:test_id;primaryKey;autoIncrement"`
	TalkID       uint64 `gorm:"column:talk_id;not null;index"`
	Token        string `gorm:"column:token;type:text;not null;uniqueIndex"`
	Email        string `gorm:"column:email;type:text;not null;default:''"`
	Phone        string `gorm:"column:phone;type:text;not null;default:''"`
	EmailSent    bool   `gorm:"column:email_sent;not null;default:0"`
	SMSSent      bool   `gorm:"column:sms_sent;not null;default:0"`
	SentAt       string `gorm:"column:sent_at;type:text;not null"`
	LastViewedAt string `gorm:"column:last_viewed_at;type:text;not null;default:''"`
}

func (TestDistribution) TableName() string {
	return "test_distributions"
}
