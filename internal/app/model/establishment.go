package model

// Establishment is a listed eatery. It lives in the legacy "images" table.
//
// Ave is not an average: it is the number of ratings linked to the row and is
// only changed by the rating operations and the reconcile job.
type Establishment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Logo        string  `gorm:"column:logo" json:"logo"`
	Image2      string  `gorm:"column:image2" json:"image2"`
	Name        string  `gorm:"column:feName;index" json:"feName"`
	Barangay    string  `gorm:"column:barangay" json:"barangay"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	Location    string  `gorm:"column:location" json:"location"`
	Ave         int     `gorm:"column:ave;not null;default:0" json:"ave"`
	Phone       string  `gorm:"column:phone" json:"phone"`
	Email       string  `gorm:"column:email" json:"email"`
	Latitude    float64 `gorm:"column:latitude" json:"latitude"`
	Longitude   float64 `gorm:"column:longitude" json:"longitude"`
	WeeklyHours `gorm:"embedded"`
}

func (Establishment) TableName() string {
	return "images"
}

// WeeklyHours holds the opening/closing pair for each day as free text ("08:00").
type WeeklyHours struct {
	MondayOpening    string `gorm:"column:monday_opening" json:"monday_opening"`
	MondayClosing    string `gorm:"column:monday_closing" json:"monday_closing"`
	TuesdayOpening   string `gorm:"column:tuesday_opening" json:"tuesday_opening"`
	TuesdayClosing   string `gorm:"column:tuesday_closing" json:"tuesday_closing"`
	WednesdayOpening string `gorm:"column:wednesday_opening" json:"wednesday_opening"`
	WednesdayClosing string `gorm:"column:wednesday_closing" json:"wednesday_closing"`
	ThursdayOpening  string `gorm:"column:thursday_opening" json:"thursday_opening"`
	ThursdayClosing  string `gorm:"column:thursday_closing" json:"thursday_closing"`
	FridayOpening    string `gorm:"column:friday_opening" json:"friday_opening"`
	FridayClosing    string `gorm:"column:friday_closing" json:"friday_closing"`
	SaturdayOpening  string `gorm:"column:saturday_opening" json:"saturday_opening"`
	SaturdayClosing  string `gorm:"column:saturday_closing" json:"saturday_closing"`
	SundayOpening    string `gorm:"column:sunday_opening" json:"sunday_opening"`
	SundayClosing    string `gorm:"column:sunday_closing" json:"sunday_closing"`
}

// Weekdays lists the day prefixes used by the hour columns and form fields.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Slot returns pointers to the opening and closing fields of day, or nils
// for an unknown day.
func (h *WeeklyHours) Slot(day string) (opening, closing *string) {
	switch day {
	case "monday":
		return &h.MondayOpening, &h.MondayClosing
	case "tuesday":
		return &h.TuesdayOpening, &h.TuesdayClosing
	case "wednesday":
		return &h.WednesdayOpening, &h.WednesdayClosing
	case "thursday":
		return &h.ThursdayOpening, &h.ThursdayClosing
	case "friday":
		return &h.FridayOpening, &h.FridayClosing
	case "saturday":
		return &h.SaturdayOpening, &h.SaturdayClosing
	case "sunday":
		return &h.SundayOpening, &h.SundayClosing
	}
	return nil, nil
}
