package session

import (
	"fmt"
	"net/http"

	"autolot/models"

	"github.com/gorilla/sessions"
)

const (
	sessionName   = "autolot_session"
	sessionMaxAge = 24 * 60 * 60
)

// Manager stores caller identity in a signed session cookie
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// SignIn writes the identity into a fresh session cookie
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, ident models.Identity) error {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		// A corrupt cookie still yields a usable blank session
		sess, _ = m.store.New(r, sessionName)
	}

	sess.Values["user_id"] = ident.UserID
	sess.Values["username"] = ident.Username
	sess.Values["is_admin"] = ident.IsAdmin

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %v", err)
	}
	return nil
}

// SignOut expires the session cookie
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		sess, _ = m.store.New(r, sessionName)
	}

	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %v", err)
	}
	return nil
}

// Identity resolves the caller identity from the request cookie, or nil
// when there is no valid session
func (m *Manager) Identity(r *http.Request) *models.Identity {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		return nil
	}

	userID, ok := sess.Values["user_id"].(string)
	if !ok || userID == "" {
		return nil
	}

	username, _ := sess.Values["username"].(string)
	isAdmin, _ := sess.Values["is_admin"].(bool)

	return &models.Identity{
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
	}
}
