// Package whois provides a route-group plugin exposing lightweight domain
// breakdown endpoints. Register it with a blank import:
//
//	_ "github.com/docsift/docsift/internal/plugins/whois"
package whois

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/docsift/docsift/plugin"
	"github.com/go-chi/chi/v5"
)

func init() {
	plugin.RegisterFactory(func() plugin.Plugin {
		return &Whois{}
	})
}

// Whois serves domain breakdown lookups. It declares no preferences.
type Whois struct{}

// Name returns the plugin identifier.
func (w *Whois) Name() string { return "whois" }

// Preferences returns nil: the plugin has no operator-tunable options.
func (w *Whois) Preferences() map[string]string { return nil }

// Routes returns the plugin's route group.
func (w *Whois) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/domain/{name}", w.domain)
	return r
}

type domainInfo struct {
	Domain    string    `json:"domain"`
	TLD       string    `json:"tld"`
	Subdomain string    `json:"subdomain,omitempty"`
	QueriedAt time.Time `json:"queried_at"`
}

func (w *Whois) domain(rw http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSuffix(chi.URLParam(r, "name"), "."))
	labels := strings.Split(name, ".")
	if name == "" || len(labels) < 2 {
		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(rw).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "A valid domain name is required"},
		})
		return
	}

	info := domainInfo{
		Domain:    strings.Join(labels[len(labels)-2:], "."),
		TLD:       labels[len(labels)-1],
		QueriedAt: time.Now().UTC(),
	}
	if len(labels) > 2 {
		info.Subdomain = strings.Join(labels[:len(labels)-2], ".")
	}

	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(info)
}
