package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/picklemart/internal/config"
	"github.com/picklemart/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultCookieName = "pm_session"
	defaultMaxAge     = 7 * 24 * time.Hour
	issuer            = "picklemart"
)

// Flash 一次性提示消息
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data 会话 Cookie 中保存的状态
type Data struct {
	SID          string  `json:"sid"`
	User         string  `json:"user,omitempty"`
	Email        string  `json:"email,omitempty"`
	LastCategory string  `json:"last_category,omitempty"`
	Flashes      []Flash `json:"flashes,omitempty"`
}

type claims struct {
	Data
	jwt.RegisteredClaims
}

// Session 单次请求内的会话
type Session struct {
	data  Data
	dirty bool
}

// SID 会话 ID
func (s *Session) SID() string { return s.data.SID }

// User 当前登录用户名，未登录为空
func (s *Session) User() string { return s.data.User }

// Email 当前登录邮箱
func (s *Session) Email() string { return s.data.Email }

// LastCategory 最近浏览的分类
func (s *Session) LastCategory() string { return s.data.LastCategory }

// IsAuthenticated 是否已登录
func (s *Session) IsAuthenticated() bool {
	return strings.TrimSpace(s.data.User) != ""
}

// Login 记录登录用户
func (s *Session) Login(user, email string) {
	s.data.User = user
	s.data.Email = email
	s.dirty = true
}

// SetLastCategory 记录最近浏览分类
func (s *Session) SetLastCategory(slug string) {
	if s.data.LastCategory == slug {
		return
	}
	s.data.LastCategory = slug
	s.dirty = true
}

// AddFlash 追加提示消息
func (s *Session) AddFlash(kind, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// PopFlashes 取出并清空提示消息
func (s *Session) PopFlashes() []Flash {
	flashes := s.data.Flashes
	if len(flashes) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return flashes
}

// Reset 丢弃全部状态并换发新的会话 ID
func (s *Session) Reset() {
	s.data = Data{SID: uuid.NewString()}
	s.dirty = true
}

// CartKey 购物车归属 key；user 范围下已登录用户按邮箱归属，否则按会话
func (s *Session) CartKey(scope string) string {
	if scope == constants.CartScopeUser && s.IsAuthenticated() && s.data.Email != "" {
		return "user:" + s.data.Email
	}
	return "session:" + s.data.SID
}

// Dirty 是否需要回写 Cookie
func (s *Session) Dirty() bool { return s.dirty }

// Manager 签名 Cookie 会话管理
type Manager struct {
	secret     []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager 创建会话管理器
func NewManager(cfg config.SessionConfig) *Manager {
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = defaultCookieName
	}
	maxAge := time.Duration(cfg.MaxAgeSeconds) * time.Second
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		maxAge:     maxAge,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// CookieName Cookie 名称
func (m *Manager) CookieName() string { return m.cookieName }

// Load 从请求恢复会话；缺失、篡改或过期时返回新会话
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return m.fresh()
	}
	data, err := m.decode(cookie.Value)
	if err != nil {
		return m.fresh()
	}
	return &Session{data: data}
}

// Save 签名并写入 Cookie
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	value, err := m.encode(s.data)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.dirty = false
	return nil
}

func (m *Manager) fresh() *Session {
	return &Session{data: Data{SID: uuid.NewString()}, dirty: true}
}

func (m *Manager) encode(data Data) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *Manager) decode(raw string) (Data, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	parsed := &claims{}
	token, err := parser.ParseWithClaims(raw, parsed, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return Data{}, err
	}
	if !token.Valid || parsed.SID == "" {
		return Data{}, errors.New("invalid session token")
	}
	return parsed.Data, nil
}
