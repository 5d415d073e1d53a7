package entities

// Visibility labels used in detail views.
const (
	StatusPublic  = "public"
	StatusPrivate = "private"
)

// Summary is a user's long-form note about a volume. Exactly one row exists
// per (UID, VolumeID).
type Summary struct {
	UID            string  `gorm:"column:uid;primaryKey;size:128" json:"uid" validate:"required,max=128"`
	VolumeID       string  `gorm:"column:volumeId;primaryKey;size:128" json:"volumeId" validate:"required,max=128"`
	OverallSummary *string `gorm:"column:overallSummary;type:text" json:"overallSummary,omitempty"`
	IsPublic       bool    `gorm:"column:isPublic" json:"isPublic"`
}

func (Summary) TableName() string {
	return "summary"
}

// Status returns StatusPublic or StatusPrivate.
func (s Summary) Status() string {
	if s.IsPublic {
		return StatusPublic
	}
	return StatusPrivate
}

// Text returns the summary text, or "" when none was written.
func (s Summary) Text() string {
	if s.OverallSummary == nil {
		return ""
	}
	return *s.OverallSummary
}

// HighlightMemo is a positional note tied to a volume. IDs are assigned by
// the store and never reused after deletion.
type HighlightMemo struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID      string `gorm:"column:uid;index:idx_memo_owner;size:128" json:"uid" validate:"required,max=128"`
	VolumeID string `gorm:"column:volumeId;index:idx_memo_owner;size:128" json:"volumeId" validate:"required,max=128"`
	Page     int    `gorm:"column:page" json:"page" validate:"gte=0"`
	Line     int    `gorm:"column:line" json:"line" validate:"gte=0"`
	Memo     string `gorm:"column:memo;type:text" json:"memo"`
}

func (HighlightMemo) TableName() string {
	return "highlight_memo"
}

// UserInfo is identity data supplied by the authentication layer. It is
// passed through untouched.
type UserInfo struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}
