package entities

// DefaultAssignee is stored when the extraction could not resolve an owner.
const DefaultAssignee = "unassigned"

// ActionItem is a task extracted from the transcript by the LeMUR
// summarization call. StartTime is a best-effort time index in seconds,
// defaulting to 0 when not resolvable.
type ActionItem struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID uint   `json:"meeting_id" gorm:"not null;index"`
	Text      string `json:"text" gorm:"type:text;not null"`
	Assignee  string `json:"assignee" gorm:"type:varchar(255);default:'unassigned'"`
	StartTime int    `json:"start_time"`
}

// TableName specifies the table name for GORM
func (ActionItem) TableName() string {
	return "action_items"
}
