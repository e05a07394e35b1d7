package pricing

import (
	"fmt"
	"sort"
	"strings"

	"tourbook/internal/model"
)

// TotalDays is the number of TourDay rows. When a tour has none attached it falls
// back to the number of days located in the tour's covered cities.
func TotalDays(tourDayCount, coveredCityDayCount int) int {
	if tourDayCount > 0 {
		return tourDayCount
	}
	return coveredCityDayCount
}

// DurationLabel renders "{days} Gün / {nights} Gece", or "" for a tour without days.
func DurationLabel(totalDays int) string {
	if totalDays <= 0 {
		return ""
	}
	nights := totalDays - 1
	return fmt.Sprintf("%d Gün / %d Gece", totalDays, nights)
}

// SortTourDays orders tour days by (Order, ID) in place.
func SortTourDays(days []model.TourDay) {
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].Order != days[j].Order {
			return days[i].Order < days[j].Order
		}
		return days[i].ID < days[j].ID
	})
}

// StartPoint is the city of the first tour day.
func StartPoint(days []model.TourDay) string {
	if len(days) == 0 {
		return ""
	}
	sorted := sortedCopy(days)
	return sorted[0].Day.CityName
}

// EndPoint is the city of the last tour day.
func EndPoint(days []model.TourDay) string {
	if len(days) == 0 {
		return ""
	}
	sorted := sortedCopy(days)
	return sorted[len(sorted)-1].Day.CityName
}

// NextOrder returns the order for a day appended to the tour.
func NextOrder(days []model.TourDay) int {
	last := 0
	for _, td := range days {
		if td.Order > last {
			last = td.Order
		}
	}
	return last + 1
}

// DayTitle builds the "Day N: <base>" title of the tour day at 1-based position n.
// The base is whatever follows the first ":" of the current title; failing that the
// day's title, then its city, then "Program".
func DayTitle(n int, current string, day model.Day) string {
	base := ""
	if _, rest, ok := strings.Cut(current, ":"); ok {
		base = strings.TrimSpace(rest)
	} else {
		base = dayBase(day)
	}
	return fmt.Sprintf("Day %d: %s", n, base)
}

// RenumberTitles recomputes every tour day title from its position and returns the
// rows whose title changed, with the new title set.
func RenumberTitles(days []model.TourDay) []model.TourDay {
	sorted := sortedCopy(days)
	var changed []model.TourDay
	for i, td := range sorted {
		title := DayTitle(i+1, td.Title, td.Day)
		if title == td.Title {
			continue
		}
		td.Title = title
		changed = append(changed, td)
	}
	return changed
}

func dayBase(day model.Day) string {
	if day.Title != "" {
		return day.Title
	}
	if day.CityName != "" {
		return day.CityName
	}
	return "Program"
}

func sortedCopy(days []model.TourDay) []model.TourDay {
	out := make([]model.TourDay, len(days))
	copy(out, days)
	SortTourDays(out)
	return out
}
