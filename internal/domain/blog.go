package domain

import "time"

type Blog struct {
	ID         string    `json:"_id"`
	Slug       string    `json:"slug"`
	AuthorName string    `json:"authorName"`
	Banner     string    `json:"banner,omitempty"`
	Title      string    `json:"title"`
	SubTitle   string    `json:"subTitle,omitempty"`
	Content    string    `json:"content"`
	ReadTime   string    `json:"readTime,omitempty"`
	Active     bool      `json:"active"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
