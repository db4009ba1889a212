package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/graphql-go/handler"

	"postpulse/auth"
	"postpulse/crud"
	"postpulse/domain"
	"postpulse/email"
	"postpulse/errs"
)

// Server provides the http surface of the app: a single GraphQL endpoint, a
// health probe, and the middleware that turns a bearer credential into a
// caller identity before any resolver runs.
type Server struct {
	router   *mux.Router
	us       domain.UserService
	ps       domain.PostService
	cs       domain.CommentService
	pays     domain.PaymentService
	issuer   *auth.TokenIssuer
	verifier auth.IdentityVerifier
	mailer   email.Sender
}

// NewServer returns a new instance of the server with the GraphQL schema
// built against the app services passed in.
func NewServer(
	isProd bool,
	services *crud.Services,
	issuer *auth.TokenIssuer,
	verifier auth.IdentityVerifier,
	mailer email.Sender,
) (*Server, error) {

	s := &Server{
		router:   mux.NewRouter(),
		us:       services.User,
		ps:       services.Post,
		cs:       services.Comment,
		pays:     services.Payment,
		issuer:   issuer,
		verifier: verifier,
		mailer:   mailer,
	}

	schema, err := s.buildSchema()
	if err != nil {
		return nil, err
	}
	gql := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   !isProd,
		GraphiQL: !isProd,
	})
	s.router.Handle("/graphql", gql).Methods("POST", "GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Credential validation runs on every request, before the executor.
	s.router.Use(s.withCaller)
	return s, nil
}

// Handler exposes the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	log.Printf("listening on :%d", port)
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}

// handleHealth is an unauthenticated liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// withCaller extracts the bearer credential from the Authorization header.
// No header at all means the request proceeds anonymous. A present header is
// validated fail-closed: first as a self-issued session token, then with the
// external identity verifier; if both reject it, the whole request fails
// with an authentication error before reaching any resolver.
func (s *Server) withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		credential := header
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			credential = parts[1]
		}

		if caller, err := s.issuer.Verify(credential); err == nil {
			r = r.WithContext(auth.SetCaller(r.Context(), caller))
			next.ServeHTTP(w, r)
			return
		}

		if s.verifier != nil {
			identity, err := s.verifier.Verify(r.Context(), credential)
			if err == nil {
				// An externally verified identity is resolved to a stored
				// account by email. A verified identity without an account
				// yet proceeds anonymous; the account is only created
				// through the googleLogin mutation.
				if user, err := s.us.ByEmail(identity.Email); err == nil {
					caller := &auth.Caller{
						ID:       user.ID,
						Username: user.Username,
						Email:    user.Email,
					}
					r = r.WithContext(auth.SetCaller(r.Context(), caller))
				}
				next.ServeHTTP(w, r)
				return
			}
		}

		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid Token"))
	})
}

// sendWelcomeEmail dispatches the post-registration mail. Best-effort: a
// failure is logged and never fails the registration.
func (s *Server) sendWelcomeEmail(user *domain.User) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Send(
		user.Email,
		"Welcome to PostPulse",
		"Hi "+user.Username+", your account is ready.",
		"<p>Hi "+user.Username+", your account is ready.</p>",
	)
	if err != nil {
		log.Printf("err sending welcome email to %s: %v", user.Email, err)
	}
}
