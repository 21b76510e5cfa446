package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Name     string     `json:"name" db:"name"`
	Slug     string     `json:"slug" db:"slug"`
	ParentID *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	Icon     *string    `json:"icon,omitempty" db:"icon"`
}

type CategoryTree struct {
	Category
	Children []Category `json:"children"`
}

type Item struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	CategoryID     uuid.UUID        `json:"category_id" db:"category_id"`
	OwnerID        *int64           `json:"owner_id,omitempty" db:"owner_id"`
	Name           string           `json:"name" db:"name"`
	Slug           string           `json:"slug" db:"slug"`
	Description    string           `json:"description" db:"description"`
	Price          decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price,omitempty" db:"discount_price"`
	Website        *string          `json:"website,omitempty" db:"website"`
	AffiliateLink  *string          `json:"affiliate_link,omitempty" db:"affiliate_link"`
	Image          *string          `json:"image,omitempty" db:"image"`
	Specifications Specifications   `json:"specifications" db:"specifications"`
	IsFeatured     bool             `json:"is_featured" db:"is_featured"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// Specifications is the free-form attribute map stored as jsonb.
type Specifications map[string]any

func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *Specifications) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Specifications{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("specifications: unsupported type %T", src)
	}
	m := Specifications{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*s = m
	return nil
}

// RatedItem is an item annotated with its average review rating.
type RatedItem struct {
	Item
	AvgRating *float64 `json:"avg_rating" db:"avg_rating"`
}

// Slugify lowercases s, drops anything that is not a letter, digit, space or
// hyphen, and joins the remaining words with single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
