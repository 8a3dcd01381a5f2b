package reminders

import "time"

// MaxPerUser is the reminder limit per user.
const MaxPerUser = 50

type ReminderDTO struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Dosage     string    `json:"dosage"`
	Comment    string    `json:"comment"`
	Time       string    `json:"time"`
	DaysOfWeek []int     `json:"days_of_week"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReminderRequest is the body of both POST and PUT (full replacement).
type ReminderRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Dosage     string `json:"dosage" validate:"max=200"`
	Comment    string `json:"comment" validate:"max=1000"`
	Time       string `json:"time" validate:"required,hhmm"`
	DaysOfWeek []int  `json:"days_of_week" validate:"required,min=1,max=7,dive,gte=1,lte=7"`
	Active     *bool  `json:"active,omitempty"`
}

type ListRemindersResponse struct {
	Items []ReminderDTO `json:"items"`
}

// DaysToMask maps 1=Monday to bit0 through 7=Sunday to bit6. Duplicates collapse.
func DaysToMask(days []int) int {
	mask := 0
	for _, d := range days {
		if d >= 1 && d <= 7 {
			mask |= 1 << (d - 1)
		}
	}
	return mask
}

// MaskToDays returns the days in ascending order.
func MaskToDays(mask int) []int {
	days := []int{}
	for d := 1; d <= 7; d++ {
		if mask&(1<<(d-1)) != 0 {
			days = append(days, d)
		}
	}
	return days
}

// isoWeekday: time.Sunday(0) → 7
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
