package handlers

import (
	"testing"
	"time"

	"foodonline-api/models"
)

func TestHourChoices(t *testing.T) {
	if len(HourChoices) != 48 {
		t.Fatalf("len(HourChoices) = %d, want 48", len(HourChoices))
	}
	if HourChoices[0] != "12:00 AM" || HourChoices[1] != "12:30 AM" || HourChoices[47] != "11:30 PM" {
		t.Errorf("HourChoices = %v ... %v", HourChoices[:2], HourChoices[47])
	}
	if !isHourChoice("09:30 PM") || isHourChoice("09:15 PM") || isHourChoice("21:30") {
		t.Error("isHourChoice accepted or rejected the wrong values")
	}
}

func TestValidImageName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.gif", false},
		{"photo.png.exe", false},
		{"photo", false},
	}
	for _, tt := range tests {
		if got := validImageName(tt.name); got != tt.want {
			t.Errorf("validImageName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsOpen(t *testing.T) {
	// 2026-10-15 is a Thursday
	hours := []models.OpeningHour{
		{Day: 4, FromHour: "09:00 AM", ToHour: "02:00 PM"},
		{Day: 4, FromHour: "06:00 PM", ToHour: "10:00 PM"},
		{Day: 5, IsClosed: true},
	}
	at := func(day, hour, min int) time.Time {
		return time.Date(2026, 10, day, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		ref  time.Time
		want bool
	}{
		{"morning shift", at(15, 9, 0), true},
		{"lunch close", at(15, 14, 0), false},
		{"between shifts", at(15, 16, 30), false},
		{"evening shift", at(15, 21, 59), true},
		{"before opening", at(15, 8, 59), false},
		{"closed day", at(16, 12, 0), false},
		{"no hours listed", at(18, 12, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOpen(hours, tt.ref); got != tt.want {
				t.Errorf("isOpen(%s) = %v, want %v", tt.ref.Format(time.Kitchen), got, tt.want)
			}
		})
	}
}

func TestIsoWeekday(t *testing.T) {
	if got := isoWeekday(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)); got != 7 {
		t.Errorf("Sunday = %d, want 7", got)
	}
	if got := isoWeekday(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("Monday = %d, want 1", got)
	}
}
