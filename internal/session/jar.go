// ABOUTME: Cookie jar that remembers Set-Cookie calls so they can be persisted
// ABOUTME: Wraps net/http/cookiejar; the refresh cookie lives only here

package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// StoredCookie is one cookie together with the URL that set it.
type StoredCookie struct {
	URL      string    `json:"url"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"httpOnly,omitempty"`
}

// Jar is an http.CookieJar whose contents can be exported and replayed.
type Jar struct {
	jar *cookiejar.Jar

	mu      sync.Mutex
	entries map[string]StoredCookie
}

// NewJar creates an empty jar.
func NewJar() *Jar {
	// cookiejar.New only fails on a bad PublicSuffixList option
	j, _ := cookiejar.New(nil)
	return &Jar{jar: j, entries: make(map[string]StoredCookie)}
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)

	now := time.Now()
	for _, c := range cookies {
		key := c.Name + "|" + c.Domain + "|" + c.Path + "|" + u.Host
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.entries, key)
			continue
		}
		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.entries[key] = StoredCookie{
			URL:      u.String(),
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Value returns the value of the named cookie that would be sent to u.
func (j *Jar) Value(u *url.URL, name string) string {
	for _, c := range j.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Export returns the non-expired cookies seen so far.
func (j *Jar) Export() []StoredCookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	out := make([]StoredCookie, 0, len(j.entries))
	for _, c := range j.entries {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Import replays stored cookies into the jar. Entries with an unparsable
// URL or an expiry in the past are skipped.
func (j *Jar) Import(cookies []StoredCookie) {
	now := time.Now()
	for _, sc := range cookies {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		u, err := url.Parse(sc.URL)
		if err != nil || u.Host == "" {
			continue
		}
		j.SetCookies(u, []*http.Cookie{{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Domain:   sc.Domain,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
		}})
	}
}

// Reset forgets every cookie.
func (j *Jar) Reset() {
	fresh, _ := cookiejar.New(nil)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = fresh
	j.entries = make(map[string]StoredCookie)
}
