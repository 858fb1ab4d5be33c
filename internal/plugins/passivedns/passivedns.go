// Package passivedns provides a route-group plugin for forward and reverse
// DNS lookups. Register it with a blank import:
//
//	_ "github.com/docsift/docsift/internal/plugins/passivedns"
package passivedns

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/docsift/docsift/plugin"
	"github.com/go-chi/chi/v5"
)

func init() {
	plugin.RegisterFactory(func() plugin.Plugin {
		return &PassiveDNS{forwardLimit: defaultForwardLimit}
	})
}

const defaultForwardLimit = 25

// PassiveDNS resolves domains and addresses over the system resolver. The
// forward_limit preference caps how many records a forward lookup returns;
// apikey is forwarded to upstream data providers when set.
type PassiveDNS struct {
	apikey       string
	forwardLimit int
}

// Name returns the plugin identifier.
func (p *PassiveDNS) Name() string { return "passivedns" }

// Preferences declares the plugin's operator-tunable options.
func (p *PassiveDNS) Preferences() map[string]string {
	return map[string]string{
		"apikey":        "string",
		"forward_limit": "int",
	}
}

// Configure applies operator-supplied preference values. Called by the host
// after discovery, before the route group is mounted.
func (p *PassiveDNS) Configure(prefs map[string]string) error {
	if v, ok := prefs["apikey"]; ok {
		p.apikey = v
	}
	if v, ok := prefs["forward_limit"]; ok {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return &plugin.ValidationError{Name: p.Name(), Reason: "forward_limit must be a positive integer"}
		}
		p.forwardLimit = limit
	}
	return nil
}

// Routes returns the plugin's route group.
func (p *PassiveDNS) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/forward/{domain}", p.forward)
	r.Get("/reverse/{ip}", p.reverse)
	return r
}

type lookupResult struct {
	Query     string    `json:"query"`
	Records   []string  `json:"records"`
	Total     int       `json:"total"`
	QueriedAt time.Time `json:"queried_at"`
}

func (p *PassiveDNS) forward(rw http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	addrs, err := net.DefaultResolver.LookupHost(r.Context(), domain)
	if err != nil {
		writeLookupError(rw, http.StatusBadGateway, "forward lookup failed: "+err.Error())
		return
	}
	total := len(addrs)
	if len(addrs) > p.forwardLimit {
		addrs = addrs[:p.forwardLimit]
	}
	writeLookup(rw, lookupResult{Query: domain, Records: addrs, Total: total, QueriedAt: time.Now().UTC()})
}

func (p *PassiveDNS) reverse(rw http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if net.ParseIP(ip) == nil {
		writeLookupError(rw, http.StatusBadRequest, "a valid IP address is required")
		return
	}
	names, err := net.DefaultResolver.LookupAddr(r.Context(), ip)
	if err != nil {
		writeLookupError(rw, http.StatusBadGateway, "reverse lookup failed: "+err.Error())
		return
	}
	writeLookup(rw, lookupResult{Query: ip, Records: names, Total: len(names), QueriedAt: time.Now().UTC()})
}

func writeLookup(rw http.ResponseWriter, res lookupResult) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(res)
}

func writeLookupError(rw http.ResponseWriter, status int, message string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]interface{}{
		"error": map[string]interface{}{"message": message},
	})
}
