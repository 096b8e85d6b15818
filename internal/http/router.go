package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Config   *ConfigHandler
	Profiles *ProfileHandler
	Slots    *SlotHandler
	Requests *RequestHandler
	Health   *HealthHandler
	// RequireAdmin guards the /admin routes except login and logout. Without
	// it those routes run with an anonymous principal and the services refuse
	// every mutation.
	RequireAdmin func(http.Handler) http.Handler
	// SubmitLimiter guards public join request submission.
	SubmitLimiter func(http.Handler) http.Handler
	Middleware    []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	admin := guard(cfg.RequireAdmin)
	limited := guard(cfg.SubmitLimiter)

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Live(w, r)
		})
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Ready(w, r)
		})
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/admin/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		current := admin(http.HandlerFunc(cfg.Auth.CurrentSession))
		mux.HandleFunc("/admin/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				current.ServeHTTP(w, r)
			case http.MethodDelete:
				cfg.Auth.DeleteCurrentSession(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.Handle("/admin/password", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.ChangePassword(w, r)
		})))
	}

	if cfg.Config != nil {
		mux.HandleFunc("/config", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Config.Get(w, r)
		})
		mux.Handle("/admin/config", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Config.Save(w, r)
		})))
	}

	if cfg.Profiles != nil {
		mux.HandleFunc("/profiles", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Profiles.List(w, r)
		})
		mux.HandleFunc("/profiles/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/profiles/")
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/slots"); ok && cfg.Slots != nil {
				if id == "" || strings.Contains(id, "/") {
					http.NotFound(w, r)
					return
				}
				cfg.Slots.List(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
				return
			}
			if rest == "" || strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			cfg.Profiles.GetBySlug(w, r.WithContext(ContextWithResourceID(r.Context(), rest)))
		})
		mux.Handle("/admin/profiles", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Profiles.List(w, r)
			case http.MethodPost:
				cfg.Profiles.Save(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})))
		mux.Handle("/admin/profiles/", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/admin/profiles/")
			if id, ok := strings.CutSuffix(rest, "/slots"); ok && cfg.Slots != nil {
				if id == "" || strings.Contains(id, "/") {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Slots.List(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
				return
			}
			if rest == "" || strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Profiles.Delete(w, r.WithContext(ContextWithResourceID(r.Context(), rest)))
		})))
	}

	if cfg.Slots != nil {
		mux.Handle("/admin/slots", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Slots.Save(w, r)
		})))
		mux.Handle("/admin/slots/", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/slots/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Slots.Delete(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
		})))
	}

	if cfg.Requests != nil {
		submit := limited(http.HandlerFunc(cfg.Requests.Submit))
		mux.HandleFunc("/slot-requests", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			submit.ServeHTTP(w, r)
		})
		mux.Handle("/admin/slot-requests", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Requests.List(w, r)
		})))
		mux.Handle("/admin/slot-requests/", admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/admin/slot-requests/")
			if id, ok := strings.CutSuffix(rest, "/review"); ok {
				if id == "" || strings.Contains(id, "/") {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Requests.Review(w, r.WithContext(ContextWithResourceID(r.Context(), id)))
				return
			}
			if rest == "" || strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), rest))
			switch r.Method {
			case http.MethodPut:
				cfg.Requests.Update(w, r)
			case http.MethodDelete:
				cfg.Requests.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func guard(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
