package talk

// Status is the lifecycle state of a safety talk. Content is mutable only
// while Draft; Distribute flips it exactly once.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusDistributed Status = "distributed"
)

// AttachmentKind is the closed set of attachment shapes a talk can carry.
type AttachmentKind string

const (
	AttachmentNone    AttachmentKind = ""
	AttachmentFile    AttachmentKind = "file"
	AttachmentWebsite AttachmentKind = "website"
)

// Attachment is either a stored upload or an external link.
type Attachment struct {
	Kind AttachmentKind
	Path string // stored filename for AttachmentFile
	Ext  string // normalized lowercase extension for AttachmentFile
	URL  string // absolute URL for AttachmentWebsite
}
