package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/loganlanou/campusconnect/internal/api"
)

// FormatInt formats an integer as a string
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// FormatPrice formats a listing price in rupees with Indian digit grouping
// (e.g., 125000 -> "₹1,25,000")
func FormatPrice(a api.Amount) string {
	n := int64(a + 0.5)
	if a < 0 {
		n = int64(a - 0.5)
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return "₹" + sign + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return "₹" + sign + strings.Join(groups, ",") + "," + tail
}

// FormatPercentage formats a growth figure with its sign (e.g., 12.5 -> "+12.5%")
func FormatPercentage(f float64) string {
	if f > 0 {
		return fmt.Sprintf("+%.1f%%", f)
	}
	return fmt.Sprintf("%.1f%%", f)
}

// FormatDate formats a time.Time as "Jan 2, 2006"
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// FormatRating formats an average rating with one decimal place
func FormatRating(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

// Stars renders a 1-5 rating as filled and empty stars
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// CategoryLabel turns an API category slug into a display label
func CategoryLabel(slug string) string {
	switch strings.ToLower(slug) {
	case "pg":
		return "PG"
	case "hostel":
		return "Hostel"
	case "mess":
		return "Mess"
	case "tiffin":
		return "Tiffin Service"
	case "tutor":
		return "Tutor"
	case "":
		return "Other"
	default:
		return strings.ToUpper(slug[:1]) + slug[1:]
	}
}

// Initials returns up to two initials for an avatar placeholder
func Initials(name string) string {
	var out []rune
	for _, field := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(field))[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
