package dto

// TodayQuery is the query string of GET /earnings/today.
type TodayQuery struct {
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
}
