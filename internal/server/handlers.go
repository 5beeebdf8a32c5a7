package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/render"
	"github.com/cableblog/sitesearch/internal/search"
)

// page is the search page. Every keyup fetches the fragment for the current
// input text and replaces the results container with it.
var page = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <input type="text" id="search" class="search-input" placeholder="Enter your search term..." autofocus>
  <div id="results" class="results">{{.Results}}</div>
  <script>
    (function () {
      var input = document.getElementById("search");
      var results = document.getElementById("results");
      var seq = 0;
      input.addEventListener("keyup", function () {
        var mine = ++seq;
        fetch("search?q=" + encodeURIComponent(input.value))
          .then(function (r) { return r.text(); })
          .then(function (html) { if (mine === seq) { results.innerHTML = html; } });
      });
    })();
  </script>
</body>
</html>
`))

type pageView struct {
	Title   string
	Results template.HTML
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var frag bytes.Buffer
	if err := s.html.Render(&frag, &search.Results{}); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	// the fragment comes from the escaping results template
	view := pageView{Title: "Search", Results: template.HTML(frag.String())}
	if err := page.Execute(&buf, view); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.handler.Keystroke(r.Context(), r.URL.Query().Get("q"), s.html, &buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	results, err := s.handler.Query(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, render.NewDocument(results))
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Source    string `json:"source,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	c := s.handler.Current()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Documents: c.Index().DocCount(),
		Source:    c.Info().Source,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("write_response_failed", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request_failed", serrors.LogAttrs(err)...)
	body, jerr := serrors.FormatJSON(err)
	if jerr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
