package http

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

const mainPagePath = "/MainPage"

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.gohtml").Funcs(template.FuncMap{
	"money": domain.FormatPrice,
	"inc":   func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/page.gohtml"))

type pageData struct {
	View domain.View
	// Refresh asks the browser to reload so timed banners and the menu
	// transition disappear once they expire.
	Refresh bool
}

// PageHandler renders the storefront page and applies the page's form
// actions, redirecting back to the page after each one.
type PageHandler struct {
	storefront Storefront
	timeout    time.Duration
	logger     *zap.Logger
}

func NewPageHandler(storefront Storefront, timeout time.Duration, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		storefront: storefront,
		timeout:    timeout,
		logger:     logger,
	}
}

func (h *PageHandler) Routes(r chi.Router) {
	r.Get("/", h.Navigate)
	r.Get(mainPagePath, h.MainPage)
	r.Post(mainPagePath+"/actions/{action}", h.Action)
	// letters only, so asset requests such as /favicon.ico do not remount
	r.Get("/{category:[A-Za-z]+}", h.Navigate)
}

// Navigate records the category named in the path, if any, and sends the
// browser to the main page.
func (h *PageHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if _, err := h.storefront.Navigate(ctx, getSessionID(r.Context()), chi.URLParam(r, "category")); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, mainPagePath, http.StatusFound)
}

func (h *PageHandler) MainPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.storefront.Session(ctx, getSessionID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := pageData{
		View:    view,
		Refresh: view.ItemAdded || view.ThankYou || view.Menu == domain.MenuClosing,
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) Action(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := getSessionID(r.Context())
	var err error
	switch chi.URLParam(r, "action") {
	case "next":
		_, err = h.storefront.NextImage(ctx, id)
	case "prev":
		_, err = h.storefront.PrevImage(ctx, id)
	case "thumbnail":
		index, convErr := strconv.Atoi(r.FormValue("index"))
		if convErr != nil {
			http.Error(w, "index must be an integer", http.StatusBadRequest)
			return
		}
		_, err = h.storefront.SelectThumbnail(ctx, id, index)
	case "increment":
		_, err = h.storefront.IncrementQuantity(ctx, id)
	case "decrement":
		_, err = h.storefront.DecrementQuantity(ctx, id)
	case "add":
		_, err = h.storefront.AddToCart(ctx, id)
	case "remove":
		_, err = h.storefront.RemoveCartItem(ctx, id)
	case "toggle-cart":
		_, err = h.storefront.ToggleCart(ctx, id)
	case "dismiss-cart":
		_, err = h.storefront.DismissCart(ctx, id)
	case "checkout":
		_, err = h.storefront.Checkout(ctx, id)
	case "open-menu":
		_, err = h.storefront.OpenMenu(ctx, id)
	case "close-menu":
		_, err = h.storefront.CloseMenu(ctx, id)
	case "category":
		_, err = h.storefront.SelectCategory(ctx, id, r.FormValue("name"))
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, mainPagePath, http.StatusSeeOther)
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("code", code),
		zap.String("request_id", getRequestID(r.Context())),
		zap.Error(err),
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("page request failed", fields...)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.logger.Debug("page request rejected", fields...)
	http.Error(w, err.Error(), status)
}
