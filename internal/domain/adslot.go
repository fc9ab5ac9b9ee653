package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// AdFormat is the declared type shared by ad slots and creatives.
type AdFormat string

const (
	AdFormatBanner            AdFormat = "banner"
	AdFormatLink              AdFormat = "link"
	AdFormatContext           AdFormat = "context"
	AdFormatCreativeImageText AdFormat = "creative_image_text"
)

// IsValid reports whether f is one of the known formats.
func (f AdFormat) IsValid() bool {
	switch f {
	case AdFormatBanner, AdFormatLink, AdFormatContext, AdFormatCreativeImageText:
		return true
	}
	return false
}

// Dimensions are banner pixel dimensions.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AdSlot is a placement on a publisher site that serves creatives.
type AdSlot struct {
	ID                 int64
	SiteID             int64
	SiteUserID         int64
	SiteActive         bool
	Name               string
	Type               AdFormat
	Dimensions         *Dimensions
	PricePerClick      decimal.Decimal
	PricePerImpression decimal.Decimal
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CanDisplayAds reports whether both the slot and its parent site are active.
func (s *AdSlot) CanDisplayAds() bool {
	return s.IsActive && s.SiteActive
}

// Creative is a renderable ad belonging to a campaign.
type Creative struct {
	ID         int64
	CampaignID int64
	Name       string
	Type       AdFormat
	Content    map[string]any
	URL        string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Dimensions returns the banner dimensions embedded in the creative content, or nil when
// the content carries no complete width/height pair.
func (c *Creative) Dimensions() *Dimensions {
	raw, ok := c.Content["dimensions"].(map[string]any)
	if !ok {
		return nil
	}
	w, okW := toInt(raw["width"])
	h, okH := toInt(raw["height"])
	if !okW || !okH {
		return nil
	}
	return &Dimensions{Width: w, Height: h}
}

// IsCompatibleWith reports whether the creative can be rendered in slot.
//
// Types must match. For banners in a slot that declares dimensions, the creative's
// dimensions must match exactly; missing dimension data on either side is not a mismatch.
func (c *Creative) IsCompatibleWith(slot *AdSlot) bool {
	if c.Type != slot.Type {
		return false
	}
	if c.Type != AdFormatBanner || slot.Dimensions == nil {
		return true
	}
	dims := c.Dimensions()
	if dims == nil {
		return true
	}
	return dims.Width == slot.Dimensions.Width && dims.Height == slot.Dimensions.Height
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
