// Package server serves rendered notes and runnable snippets to a browser,
// reloading pages when notes change.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/electr1fy0/bluenotes/logger"
	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/render"
)

// Source is the read side of the note store.
type Source interface {
	Notes() []notes.Note
	Note(id string) (notes.Note, bool)
	Subscribe(fn func(notes.Event)) (cancel func())
}

// Server is the preview HTTP server.
type Server struct {
	addr   string
	src    Source
	hub    *Hub
	log    *logger.Logger
	router chi.Router
}

var upgrader = websocket.Upgrader{}

// New builds a server for src listening on addr.
func New(addr string, src Source, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Child("preview")
	s := &Server{
		addr: addr,
		src:  src,
		hub:  newHub(log),
		log:  log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/", s.handleIndex)
	r.Get("/notes/{id}", s.handleNote)
	r.Get("/notes/{id}/snippets/{n}", s.handleSnippet)
	r.Get("/ws", s.handleWS)
	s.router = r

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the hub and forwards store events to it until ctx ends.
func (s *Server) Start(ctx context.Context) {
	cancel := s.src.Subscribe(s.hub.publish)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	go s.hub.run(ctx)
}

// Run starts the hub and serves HTTP until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type indexItem struct {
	ID       string
	Title    string
	Favorite bool
	Category string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	visible := notes.Visible(s.src.Notes(), notes.All, r.URL.Query().Get("q"))
	items := make([]indexItem, 0, len(visible))
	for _, n := range visible {
		items = append(items, indexItem{ID: n.ID, Title: n.Title(), Favorite: n.IsFavorite, Category: n.Category})
	}
	s.execute(w, indexTmpl, items)
}

type block struct {
	Prose   template.HTML
	Snippet bool
	Index   int
}

type notePage struct {
	ID     string
	Title  string
	Blocks []block
}

func (s *Server) handleNote(w http.ResponseWriter, r *http.Request) {
	n, ok := s.src.Note(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	page := notePage{ID: n.ID, Title: n.Title()}
	snippet := 0
	for _, seg := range notes.Segments(n.Content) {
		if seg.Kind == notes.Snippet {
			page.Blocks = append(page.Blocks, block{Snippet: true, Index: snippet})
			snippet++
			continue
		}
		if seg.Text == "" {
			continue
		}
		html, err := render.ProseHTML(seg.Text)
		if err != nil {
			s.log.Err(err).Str("id", n.ID).Msg("render prose")
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		page.Blocks = append(page.Blocks, block{Prose: template.HTML(html)})
	}
	s.execute(w, noteTmpl, page)
}

func (s *Server) handleSnippet(w http.ResponseWriter, r *http.Request) {
	n, ok := s.src.Note(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || idx < 0 {
		http.Error(w, "bad snippet index", http.StatusBadRequest)
		return
	}

	i := 0
	for _, seg := range notes.Segments(n.Content) {
		if seg.Kind != notes.Snippet {
			continue
		}
		if i == idx {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
			_, _ = w.Write([]byte(render.SnippetDocument(seg.HTML, seg.CSS, seg.JS)))
			return
		}
		i++
	}
	http.NotFound(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Err(err).Msg("upgrade failed")
		return
	}
	if !s.hub.add(conn) {
		conn.Close()
		return
	}
	defer s.hub.remove(conn)

	// pages never send anything; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) execute(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.log.Err(err).Str("template", t.Name()).Msg("execute template")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
