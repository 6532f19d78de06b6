package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// User is the account record returned by GET /auth/user/
type User struct {
	ID                  int       `json:"id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	ProfileImage        string    `json:"profileImage"`
	Role                string    `json:"role"`
	Phone               string    `json:"phone"`
	IsVerified          bool      `json:"is_verified"`
	DOB                 string    `json:"dob"`
	Gender              string    `json:"gender"`
	City                string    `json:"city"`
	District            string    `json:"district"`
	State               string    `json:"state"`
	Pincode             string    `json:"pincode"`
	AffiliationType     string    `json:"affiliation_type"`
	AffiliationName     string    `json:"affiliation_name"`
	PreferredCity       string    `json:"preferred_city"`
	PreferredDistrict   string    `json:"preferred_district"`
	PreferredState      string    `json:"preferred_state"`
	PreferredPincode    string    `json:"preferred_pincode"`
	Budget              *int      `json:"budget"`
	PreferredCategories []string  `json:"preferred_categories"`
	PreferredAmenities  []string  `json:"preferred_amenities"`
	PreferredLocations  []string  `json:"preferred_locations"`
	SharingPreference   string    `json:"sharing_preference"`
	CreatedAt           time.Time `json:"created_at"`
}

// DisplayName returns the best human-readable name for the user
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

// Amount decodes a price that the API sends either as a decimal string
// ("4500.00") or as a JSON number.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

type ListingImage struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

// Listing is a rentable or bookable unit: PG, hostel, mess, tiffin service or tutor
type Listing struct {
	ID            int            `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	ProviderName  string         `json:"provider_name"`
	ProviderPhone string         `json:"provider_phone"`
	ProviderEmail string         `json:"provider_email"`
	Address       string         `json:"address"`
	Price         Amount         `json:"price"`
	LocationCity  string         `json:"location_city"`
	LocationState string         `json:"location_state"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	Amenities     []string       `json:"amenities"`
	Availability  bool           `json:"availability"`
	Rating        float64        `json:"rating"`
	ReviewCount   int            `json:"review_count"`
	IsActive      bool           `json:"is_active"`
	IsBookmarked  bool           `json:"is_bookmarked"`
	Images        []ListingImage `json:"images"`
	CreatedAt     time.Time      `json:"created_at"`
}

// CoverImage returns the first image of the listing, if any
func (l Listing) CoverImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0].Image
}

// ListingFilter holds the browse page query. Empty fields are not sent.
type ListingFilter struct {
	Category string
	City     string
	MinPrice string
	MaxPrice string
	Search   string
	Page     int
	PageSize int
}

type ReviewAuthor struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	ProfileImage string `json:"profileImage"`
}

type Review struct {
	ID         int          `json:"id"`
	User       ReviewAuthor `json:"user"`
	Listing    *Listing     `json:"listing,omitempty"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment"`
	IsApproved bool         `json:"is_approved"`
	TimeAgo    string       `json:"time_ago"`
	CreatedAt  time.Time    `json:"created_at"`

	// set only by the recent pending reviews feed
	ListingTitle string `json:"listing_title"`
	UserFullName string `json:"user_full_name"`
}

// AuthorName returns the reviewer's name from whichever shape the API sent
func (r Review) AuthorName() string {
	if r.User.FullName != "" {
		return r.User.FullName
	}
	if r.UserFullName != "" {
		return r.UserFullName
	}
	return "Anonymous"
}

// ListingName returns the reviewed listing's title
func (r Review) ListingName() string {
	if r.Listing != nil && r.Listing.Title != "" {
		return r.Listing.Title
	}
	return r.ListingTitle
}

type Bookmark struct {
	ID          int       `json:"id"`
	User        string    `json:"user"`
	Listing     int       `json:"listing"`
	ListingInfo *Listing  `json:"listing_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToggleResult is the outcome of POST /bookmarks/toggle/
type ToggleResult struct {
	Toggled bool   `json:"toggled"`
	Message string `json:"message"`
}

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the signup request body
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// AuthResult is returned by login and signup. Token is the value of the
// upstream "token" cookie that must be relayed to the browser.
type AuthResult struct {
	Message string
	User    *User
	Token   string
}

// ProfileUpdate is one step of the profile setup wizard
type ProfileUpdate struct {
	Step          int
	FinalSubmit   bool
	Fields        map[string]string
	Lists         map[string][]string
	ImageName     string
	ImageContents []byte
}

// ProfileResult is the response of PUT /auth/profile/
type ProfileResult struct {
	Message    string
	User       *User
	IsVerified bool
}

type ReviewInput struct {
	UserID    int    `json:"user"`
	ListingID int    `json:"listing"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Sentiment is the classifier verdict on a review comment
type Sentiment struct {
	Comment   string `json:"comment"`
	Sentiment string `json:"sentiment"`
}

// ReviewFilter narrows the admin review list. The API only filters on
// approval; the rest is matched locally.
type ReviewFilter struct {
	PendingOnly bool
	Username    string
	Listing     string
	Rating      int
}

// Match reports whether r passes the locally applied filters
func (f ReviewFilter) Match(r Review) bool {
	if f.Rating > 0 && r.Rating != f.Rating {
		return false
	}
	if f.Username != "" && !containsFold(r.AuthorName(), f.Username) {
		return false
	}
	if f.Listing != "" && !containsFold(r.ListingName(), f.Listing) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

// GrowthStats is the month-over-month summary served by the stats endpoints
type GrowthStats struct {
	Total      int     `json:"total"`
	ThisMonth  int     `json:"thisMonth"`
	LastMonth  int     `json:"lastMonth"`
	Growth     float64 `json:"growth"`
	IsPositive bool    `json:"isPositive"`
}

type ReviewStats struct {
	GrowthStats
	Approved           int     `json:"approved"`
	Pending            int     `json:"pending"`
	Positive           int     `json:"positive"`
	PositivePercentage float64 `json:"positivePercentage"`
	AverageRating      float64 `json:"averageRating"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type StateCount struct {
	State string `json:"location_state"`
	Count int    `json:"count"`
}

type AdminStats struct {
	TotalUsers     int             `json:"total_users"`
	TotalListings  int             `json:"total_listings"`
	ActiveListings int             `json:"active_listings"`
	TotalReviews   int             `json:"total_reviews"`
	TotalBookmarks int             `json:"total_bookmarks"`
	ByCategory     []CategoryCount `json:"category_wise"`
	ByState        []StateCount    `json:"state_wise"`
}
