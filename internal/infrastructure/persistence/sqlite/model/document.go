package model

type Document struct {
	DocumentID uint64 `gorm:"column:document_id;primaryKey;autoIncrement"`
	Title      string `gorm:"column:title;type:text;not null"`
	Pinned     bool   `gorm:"column:pinned;not null;default:0"`
	Archived   bool   `gorm:"column:archived;not null;default:0"`
	Revision   int    `gorm:"column:revision;not null;default:1"`
	FileName   string `gorm:"column:file_name;type:text;not null"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentRevision struct {
	RevisionID uint64 `gorm:"column:revision_id;primaryKey;autoIncrement"`
	DocumentID uint64 `gorm:"column:document_id;not null;index"`
	Revision   int    `gorm:"column:revision;not null"`
	FileName   string `gorm:"column:file_name;type:text;not null"`
	Note       string `gorm:"column:note;type:text;not null;default:''"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null"`
}

func (DocumentRevision) TableName() string {
	return "document_revisions"
}

type DocumentTag struct {
	DocumentID uint64 `gorm:"column:document_id;primaryKey;autoIncrement:false"`
	Tag        string `gorm:"column:tag;type:text;primaryKey"`
}

func (DocumentTag) TableName() string {
	return "document_tags"
}

type DocumentFavorite struct {
	DocumentID uint64 `gorm:"column:document_id;primaryKey;autoIncrement:false"`
	UserID     uint64 `gorm:"column:user_id;primaryKey;autoIncrement:false"`
}

func (DocumentFavorite) TableName() string {
	return "document_favorites"
}
