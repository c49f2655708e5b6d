package dto

// RoomRecordRequest is one exam room scheduled at a concrete time.
type RoomRecordRequest struct {
	RoomName string  `json:"roomName" validate:"required"`
	ExamDate string  `json:"examDate" validate:"required,datetime=2006-01-02"`
	Start    string  `json:"start" validate:"required"`
	End      string  `json:"end" validate:"required"`
	OwnerID  *string `json:"ownerId"`
}

// ReplaceScheduleRequest swaps the full room schedule of a session.
type ReplaceScheduleRequest struct {
	Records []RoomRecordRequest `json:"records" validate:"required,min=1,dive"`
}

// WishRequest is one day/period a staff member asks to avoid.
type WishRequest struct {
	DayIndex int    `json:"dayIndex" validate:"required,min=1"`
	Period   string `json:"period" validate:"required,oneof=S1 S2 S3 S4"`
}

// ReplaceWishesRequest swaps one staff member's wish list for a session.
type ReplaceWishesRequest struct {
	Wishes []WishRequest `json:"wishes" validate:"dive"`
}

// CreateSessionRequest opens a new examination session.
type CreateSessionRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}
