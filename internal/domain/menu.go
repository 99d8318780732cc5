package domain

import (
	"strings"
	"time"
)

type MenuState string

const (
	MenuHidden  MenuState = "hidden"
	MenuOpen    MenuState = "open"
	MenuClosing MenuState = "closing"
)

// NavigationCategories are the header navigation entries in display order.
var NavigationCategories = []string{"Collections", "Men", "Women", "About", "Contact"}

// LookupCategory matches name case-insensitively against the navigation
// categories and returns the canonical spelling.
func LookupCategory(name string) (string, bool) {
	for _, c := range NavigationCategories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Menu is the mobile navigation drawer. Closing happens in two phases: the
// drawer stays mounted in the closing state until ClosingUntil so the exit
// transition can finish, then reads as hidden.
type Menu struct {
	Open           bool      `json:"open"`
	ClosingUntil   time.Time `json:"closing_until"`
	ActiveCategory string    `json:"active_category,omitempty"`
}

func (m Menu) State(now time.Time) MenuState {
	if !m.Open {
		return MenuHidden
	}
	if m.ClosingUntil.IsZero() {
		return MenuOpen
	}
	if now.Before(m.ClosingUntil) {
		return MenuClosing
	}
	return MenuHidden
}

// Show opens the drawer, cancelling a close that is still in progress.
func (m *Menu) Show() {
	m.Open = true
	m.ClosingUntil = time.Time{}
}

func (m *Menu) Close(now time.Time, delay time.Duration) {
	switch m.State(now) {
	case MenuOpen:
		m.ClosingUntil = now.Add(delay)
	case MenuHidden:
		m.Open = false
		m.ClosingUntil = time.Time{}
	}
}
