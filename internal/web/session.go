package web

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/pbkdf2"

	"github.com/yukikurage/team-task-board/internal/constants"
	"github.com/yukikurage/team-task-board/internal/dto"
)

const (
	sessionKeyAuthenticated = "authenticated"
	sessionKeyUserData      = "user_data"

	keyIterations = 100_000
)

// DeriveCookieKeys stretches the cookie password into an HMAC key and an
// AES-256 key. The same password always yields the same keys, so cookies
// survive restarts.
func DeriveCookieKeys(password string) (hashKey, blockKey []byte) {
	hashKey = pbkdf2.Key([]byte(password), []byte("team-task-board/cookie-hash"), keyIterations, 32, sha256.New)
	blockKey = pbkdf2.Key([]byte(password), []byte("team-task-board/cookie-block"), keyIterations, 32, sha256.New)
	return hashKey, blockKey
}

// NewCookieStore builds the encrypted cookie store of the browser UI.
func NewCookieStore(password string, secure bool) sessions.Store {
	store := cookie.NewStore(DeriveCookieKeys(password))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// webSession is the browser session of one request. It is built from the
// request cookie and handed to the page handler; nothing is kept between
// requests on the server.
type webSession struct {
	store sessions.Session
	User  *dto.UserDTO
}

func loadWebSession(c *gin.Context) *webSession {
	ws := &webSession{store: sessions.Default(c)}
	if ws.store.Get(sessionKeyAuthenticated) != "True" {
		return ws
	}
	raw, ok := ws.store.Get(sessionKeyUserData).(string)
	if !ok || raw == "" {
		return ws
	}
	var user dto.UserDTO
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.UserID == 0 {
		return ws
	}
	ws.User = &user
	return ws
}

func (ws *webSession) Authenticated() bool {
	return ws.User != nil
}

func (ws *webSession) login(user *dto.UserDTO) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	ws.store.Set(sessionKeyAuthenticated, "True")
	ws.store.Set(sessionKeyUserData, string(data))
	ws.User = user
	return ws.store.Save()
}

func (ws *webSession) logout() error {
	ws.store.Clear()
	ws.User = nil
	return ws.store.Save()
}

// flash queues a one-shot message for the next page.
func (ws *webSession) flash(msg string) error {
	ws.store.AddFlash(msg)
	return ws.store.Save()
}

// takeFlashes drains the queued messages. The messages are returned even when
// the drained session cannot be saved.
func (ws *webSession) takeFlashes() ([]string, error) {
	raw := ws.store.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	err := ws.store.Save()

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs, err
}
