package extractor

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/sift/models"
)

// Pre-compiled selectors for the login checks; these run on every page.
var (
	passwordInputMatcher = cascadia.MustCompile(`input[type="password"]`)
	usernameInputMatcher = cascadia.MustCompile(`input[type="text"], input[type="email"], input:not([type])`)
	formMatcher          = cascadia.MustCompile("form")
)

// LoginGuard refuses pages that present a credential prompt. It errs on
// the side of refusing: scraping a login wall yields nothing useful and
// looks like a credential-stuffing probe to the site.
type LoginGuard struct {
	keywords []string
}

// NewLoginGuard creates a guard matching the given keywords against form
// wording. Keywords are matched case-insensitively as substrings.
func NewLoginGuard(keywords []string) *LoginGuard {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return &LoginGuard{keywords: lowered}
}

// Check returns an error when p looks like a login page. It runs on the
// parsed tree before extraction, so a refused page never leaks content.
func (g *LoginGuard) Check(p *Page) error {
	if HasPasswordInput(p.doc) {
		return models.NewScrapeError(models.ErrCodeLoginPageBlocked, models.MsgLoginPageBlocked,
			errors.New("password input present"))
	}
	if g.hasLoginForm(p.doc) {
		return models.NewScrapeError(models.ErrCodeLoginPageBlocked, models.MsgLoginPageBlocked,
			errors.New("login form detected"))
	}
	return nil
}

// HasPasswordInput reports whether a password field exists anywhere in the
// document. One is enough to refuse the page, form or no form.
func HasPasswordInput(doc *goquery.Document) bool {
	return doc.FindMatcher(passwordInputMatcher).Length() > 0
}

// hasLoginForm reports whether any form combines login wording with a
// credential-style field. Requiring both signals keeps search boxes and
// pages that merely mention logging in from tripping the guard.
func (g *LoginGuard) hasLoginForm(doc *goquery.Document) bool {
	found := false
	doc.FindMatcher(formMatcher).EachWithBreak(func(_ int, f *goquery.Selection) bool {
		if g.mentionsLogin(f) && hasCredentialField(f) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (g *LoginGuard) mentionsLogin(f *goquery.Selection) bool {
	haystack := strings.ToLower(strings.Join([]string{
		f.AttrOr("action", ""),
		f.AttrOr("id", ""),
		f.AttrOr("name", ""),
		collapse(f.Text()),
	}, " "))
	for _, kw := range g.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// hasCredentialField reports whether f contains an input that looks like a
// username or email prompt.
func hasCredentialField(f *goquery.Selection) bool {
	found := false
	f.FindMatcher(usernameInputMatcher).EachWithBreak(func(_ int, in *goquery.Selection) bool {
		hints := strings.ToLower(strings.Join([]string{
			in.AttrOr("name", ""),
			in.AttrOr("id", ""),
			in.AttrOr("autocomplete", ""),
			in.AttrOr("placeholder", ""),
		}, " "))
		for _, marker := range []string{"user", "email", "login", "account"} {
			if strings.Contains(hints, marker) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
