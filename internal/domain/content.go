package domain

import "time"

// Project is a portfolio entry shown on the projects page.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Gradient    string `json:"gradient"`
	FullContent string `json:"fullContent,omitempty"`
}

// Feature is a titled bullet on a service page.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProcessStep is one numbered step of a service's delivery process.
type ProcessStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CaseStudy is a short client story with its outcome.
type CaseStudy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Result      string `json:"result"`
}

// FAQ is a question and answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Service is an agency offering with its detail page content.
type Service struct {
	ID          string        `json:"id"`
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Number      string        `json:"number"`
	Slug        string        `json:"slug,omitempty"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Overview    string        `json:"overview,omitempty"`
	Features    []Feature     `json:"features,omitempty"`
	Benefits    []string      `json:"benefits,omitempty"`
	Process     []ProcessStep `json:"process,omitempty"`
	CaseStudies []CaseStudy   `json:"caseStudies,omitempty"`
	FAQ         []FAQ         `json:"faq,omitempty"`
	Image       string        `json:"image,omitempty"`
}

// Blog is a blog post. ID doubles as the URL slug.
type Blog struct {
	ID       string `json:"id"`
	Title    string `json:"title" validate:"required"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Image    string `json:"image"`
	Content  string `json:"content,omitempty"`
}

// ContentDocument is the single stored document holding all editable site content.
type ContentDocument struct {
	Projects []Project `json:"projects"`
	Services []Service `json:"services"`
	Blogs    []Blog    `json:"blogs"`
}

// ContentRevision records one write of a stored document.
type ContentRevision struct {
	Key       string    `json:"key"`
	WrittenAt time.Time `json:"written_at"`
	Size      int64     `json:"size"`
}
