package model

type Talk struct {
	TalkID             uint64 `gorm:"column:talk_id;primaryKey;autoIncrement"`
	Title              string `gorm:"column:title;type:text;not null"`
	Body               string `gorm:"column:body;type:text;not null"`
	AuthorID           uint64 `gorm:"column:author_id;not null;index"`
	AttachmentKind     string `gorm:"column:attachment_kind;type:text;not null;default:''"`
	AttachmentPath     string `gorm:"column:attachment_path;type:text;not null;default:''"`
	AttachmentExt      string `gorm:"column:attachment_ext;type:text;not null;default:''"`
	AttachmentURL      string `gorm:"column:attachment_url;type:text;not null;default:''"`
	HasQuiz            bool   `gorm:"column:has_quiz;not null;default:0"`
	Status             string `gorm:"column:status;type:text;not null;default:'draft'"`
	Archived           bool   `gorm:"column:archived;not null;default:0"`
	CreatedAt          string `gorm:"column:created_at;type:text;not null"`
	FirstDistributedAt string `gorm:"column:first_distributed_at;type:text;not null;default:''"`
}

func (Talk) TableName() string {
	return "talks"
}

type QuizQuestion struct {
	QuestionID uint64 `gorm:"column:question_id;primaryKey;autoIncrement"`
	TalkID     uint64 `gorm:"column:talk_id;not null;index"`
	Position   int    `gorm:"column:position;not null"`
	Text       string `gorm:"column:text;type:text;not null"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizAnswer struct {
	AnswerID   uint64 `gorm:"column:answer_id;primaryKey;autoIncrement"`
	QuestionID uint64 `gorm:"column:question_id;not null;index"`
	Position   int    `gorm:"column:position;not null"`
	Text       string `gorm:"column:text;type:text;not null"`
	Correct    bool   `gorm:"column:correct;not null;default:0"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
