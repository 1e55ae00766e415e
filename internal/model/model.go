// Package model defines the domain types used across the application.
package model

import "time"

// NewsItem is a single breaking-news entry from the upstream feed.
// Identity is the external ID; two items with the same ID are the same
// notification regardless of the other fields.
type NewsItem struct {
	ID          string
	Title       string
	Body        string
	URL         string
	PublishedAt time.Time
}

// RecipientClass distinguishes group chats from private ones.
type RecipientClass int

// Recipient classes, derived from the sign of the chat ID.
const (
	ClassPrivate RecipientClass = iota
	ClassGroup
)

// ClassOf classifies a Telegram chat ID. Negative IDs are groups and
// channels; zero and positive IDs are private chats.
func ClassOf(chatID int64) RecipientClass {
	if chatID < 0 {
		return ClassGroup
	}
	return ClassPrivate
}
