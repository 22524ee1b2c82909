package folio

import (
	"context"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/theme"
)

const sessionName = "folio_session"

// ambientHeader is the client hint carrying the browser colour scheme.
const ambientHeader = "Sec-CH-Prefers-Color-Scheme"

// sessionPreferences stores the visitor's theme in the cookie session.
type sessionPreferences struct {
	c echo.Context
}

func (s sessionPreferences) Get(ctx context.Context, key string) (string, error) {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return "", err
	}
	v, _ := sess.Values[key].(string)
	return v, nil
}

func (s sessionPreferences) Set(ctx context.Context, key, value string) error {
	sess, err := session.Get(sessionName, s.c)
	if err != nil {
		return err
	}
	sess.Values[key] = value
	return sess.Save(s.c.Request(), s.c.Response())
}

// preferenceStores returns the lookup order for the request's theme: the
// visitor's session, then the site default.
func (a *App) preferenceStores(c echo.Context) []theme.PreferenceStore {
	stores := []theme.PreferenceStore{sessionPreferences{c: c}}
	if a.Store != nil {
		stores = append(stores, a.Store)
	}
	return stores
}

// themeFor resolves the active theme for the request.
func (a *App) themeFor(c echo.Context) theme.Theme {
	// the hint is a structured header string: "dark"
	ambient := strings.Trim(c.Request().Header.Get(ambientHeader), `" `)
	return theme.Resolve(c.Request().Context(), a.preferenceStores(c), ambient)
}

// acceptColorScheme asks supporting browsers to send the colour scheme hint.
func acceptColorScheme(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Accept-CH", ambientHeader)
		h.Add("Vary", ambientHeader)
		return next(c)
	}
}

var (
	_ theme.PreferenceStore = sessionPreferences{}
	_ theme.PreferenceStore = (*Store)(nil)
)
