// Package tui is a terminal rendition of the storefront page driving the same
// session engine as the HTTP handlers.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

// Storefront is the subset of the session engine the terminal client uses.
type Storefront interface {
	Session(ctx context.Context, id string) (domain.View, error)
	NextImage(ctx context.Context, id string) (domain.View, error)
	PrevImage(ctx context.Context, id string) (domain.View, error)
	SelectThumbnail(ctx context.Context, id string, index int) (domain.View, error)
	IncrementQuantity(ctx context.Context, id string) (domain.View, error)
	DecrementQuantity(ctx context.Context, id string) (domain.View, error)
	AddToCart(ctx context.Context, id string) (domain.View, error)
	RemoveCartItem(ctx context.Context, id string) (domain.View, error)
	ToggleCart(ctx context.Context, id string) (domain.View, error)
	DismissCart(ctx context.Context, id string) (domain.View, error)
	Checkout(ctx context.Context, id string) (domain.View, error)
	OpenMenu(ctx context.Context, id string) (domain.View, error)
	CloseMenu(ctx context.Context, id string) (domain.View, error)
	SelectCategory(ctx context.Context, id, category string) (domain.View, error)
}

const defaultRefreshInterval = 100 * time.Millisecond

type viewMsg struct{ view domain.View }

type errMsg struct{ err error }

type refreshMsg struct{}

// Model is the bubbletea model for one storefront session.
type Model struct {
	storefront Storefront
	sessionID  string
	refresh    time.Duration
	styles     Styles

	view    domain.View
	loaded  bool
	err     error
	polling bool
	width   int
}

func NewModel(storefront Storefront, sessionID string) Model {
	return Model{
		storefront: storefront,
		sessionID:  sessionID,
		refresh:    defaultRefreshInterval,
		styles:     DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	return m.apply(m.storefront.Session)
}

func (m Model) apply(op func(context.Context, string) (domain.View, error)) tea.Cmd {
	id := m.sessionID
	return func() tea.Msg {
		view, err := op(context.Background(), id)
		if err != nil {
			return errMsg{err: err}
		}
		return viewMsg{view: view}
	}
}

// transient reports whether the view shows something that expires on its own.
func transient(v domain.View) bool {
	return v.ItemAdded || v.ThankYou || v.Menu == domain.MenuClosing
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case viewMsg:
		m.view = msg.view
		m.loaded = true
		m.err = nil
		if transient(m.view) && !m.polling {
			m.polling = true
			return m, m.tick()
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case refreshMsg:
		m.polling = false
		return m, m.load()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.storefront
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		return m, m.apply(s.PrevImage)
	case "right", "l":
		return m, m.apply(s.NextImage)
	case "tab":
		next := 0
		if n := len(m.view.Product.Thumbnails); n > 0 {
			next = (m.view.SelectedThumbnail + 1) % n
		}
		return m, m.apply(func(ctx context.Context, id string) (domain.View, error) {
			return s.SelectThumbnail(ctx, id, next)
		})
	case "+", "=":
		return m, m.apply(s.IncrementQuantity)
	case "-":
		return m, m.apply(s.DecrementQuantity)
	case "a":
		return m, m.apply(s.AddToCart)
	case "x":
		return m, m.apply(s.RemoveCartItem)
	case "c":
		return m, m.apply(s.ToggleCart)
	case "esc":
		return m, m.apply(s.DismissCart)
	case "enter":
		return m, m.apply(s.Checkout)
	case "m":
		if m.view.Menu == domain.MenuOpen {
			return m, m.apply(s.CloseMenu)
		}
		return m, m.apply(s.OpenMenu)
	case "1", "2", "3", "4", "5":
		i := int(key[0] - '1')
		if i >= len(m.view.Categories) {
			return m, nil
		}
		category := m.view.Categories[i]
		return m, m.apply(func(ctx context.Context, id string) (domain.View, error) {
			return s.SelectCategory(ctx, id, category)
		})
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return m.styles.Error.Render("error: "+m.err.Error()) + "\n"
		}
		return "Loading storefront...\n"
	}

	v := m.view
	p := v.Product
	var sb strings.Builder

	sb.WriteString(m.header())
	sb.WriteString("\n\n")

	if v.Menu != domain.MenuHidden {
		sb.WriteString(m.menu())
		sb.WriteString("\n\n")
	}
	if v.CartOpen {
		sb.WriteString(m.cart())
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.gallery())
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Company.Render(p.CompanyName))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Title.Render(p.Title))
	sb.WriteString("\n")
	description := m.styles.Muted
	if m.width > 0 {
		description = description.Width(m.width)
	}
	sb.WriteString(description.Render(p.Description))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s  %s  %s\n\n",
		m.styles.Price.Render(domain.FormatPrice(p.Price)),
		m.styles.Discount.Render(fmt.Sprintf("%d%%", p.Discount)),
		m.styles.Muted.Strikethrough(true).Render(domain.FormatPrice(p.OldPrice))))

	sb.WriteString(fmt.Sprintf("[-] %d [+]   %s\n", v.Quantity, m.styles.Button.Render("Add to cart")))

	if v.ItemAdded {
		sb.WriteString("\n" + m.styles.Banner.Render("Item added") + "\n")
	}
	if v.ThankYou {
		sb.WriteString("\n" + m.styles.Banner.Render("Thank you for your purchase") + "\n")
	}
	if m.err != nil {
		sb.WriteString("\n" + m.styles.Error.Render(m.err.Error()) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("←/→ image  tab thumbnail  +/- quantity  a add  c cart  x remove  enter checkout  m menu  1-5 category  q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) header() string {
	cart := "cart"
	if m.view.ShowBadge {
		cart += " " + m.styles.Badge.Render(fmt.Sprintf("%d", m.view.Badge))
	}
	return m.styles.Header.Render("sneakers") + "   " + cart
}

func (m Model) menu() string {
	var lines []string
	for i, c := range m.view.Categories {
		line := fmt.Sprintf("%d %s", i+1, c)
		if c == m.view.ActiveCategory {
			line = m.styles.Company.Render(line)
		}
		lines = append(lines, line)
	}
	style := m.styles.Panel
	if m.view.Menu == domain.MenuClosing {
		style = style.Faint(true)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) cart() string {
	var body string
	if c := m.view.Cart; c != nil {
		body = fmt.Sprintf("%s %s x %d %s\n\n%s",
			c.Title,
			domain.FormatPrice(c.UnitPrice),
			c.Quantity,
			m.styles.Title.Render(domain.FormatPrice(c.LineTotal)),
			m.styles.Button.Render("Checkout"))
	} else {
		body = "Your cart is empty."
	}
	return m.styles.Panel.Render(m.styles.Title.Render("Cart") + "\n\n" + body)
}

func (m Model) gallery() string {
	v := m.view
	var dots []string
	for i := range v.Product.Images {
		dot := "○"
		if i == v.SliderIndex {
			dot = "●"
		}
		dots = append(dots, dot)
	}
	var thumbs []string
	for i := range v.Product.Thumbnails {
		label := fmt.Sprintf("[%d]", i+1)
		if i == v.SelectedThumbnail {
			label = m.styles.Company.Render(label)
		}
		thumbs = append(thumbs, label)
	}
	return fmt.Sprintf("< %s >  %s\nthumbnails %s  %s",
		strings.Join(dots, " "), v.SliderImage,
		strings.Join(thumbs, " "), v.LargeImage)
}
