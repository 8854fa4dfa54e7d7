package domain

import "time"

// SEOEntry is the stored metadata row for one page.
type SEOEntry struct {
	Page        string    `json:"page" db:"page"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Keywords    *string   `json:"keywords" db:"keywords"`
	OGImage     *string   `json:"og_image" db:"og_image"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Data projects the entry into the shape served to page renderers.
func (e *SEOEntry) Data() *SEOData {
	d := &SEOData{Title: e.Title, Description: e.Description}
	if e.Keywords != nil {
		d.Keywords = *e.Keywords
	}
	if e.OGImage != nil {
		d.OGImage = *e.OGImage
	}
	return d
}

// SEOData is page metadata as consumed by the site and as stored in the seed file.
type SEOData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords,omitempty"`
	OGImage     string `json:"ogImage,omitempty"`
}

// Entry converts seed data into a storable row for page.
func (d SEOData) Entry(page string) SEOEntry {
	e := SEOEntry{Page: page, Title: d.Title, Description: d.Description}
	if d.Keywords != "" {
		k := d.Keywords
		e.Keywords = &k
	}
	if d.OGImage != "" {
		o := d.OGImage
		e.OGImage = &o
	}
	return e
}
