package server

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/httputil"
	"github.com/vibetube/vibetube/internal/validate"
	"github.com/vibetube/vibetube/internal/view"
)

const (
	multipartMemory = 32 << 20
	maxFieldBytes   = 64 << 10
)

func render(w http.ResponseWriter, tpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render page", "page", tpl.Name(), "error", err)
	}
}

func (s *Server) cards(ctx context.Context, videos []backend.Video) []videoCard {
	cards := make([]videoCard, 0, len(videos))
	for _, v := range videos {
		id := v.ID.String()
		cards = append(cards, videoCard{
			ID:          id,
			Title:       v.Title,
			Description: v.Description,
			StreamURL:   s.streamURL(ctx, v.Filename),
			WatchURL:    "/watch/" + url.PathEscape(id),
		})
	}
	return cards
}

func feedURL(query string) string {
	if query == "" {
		return "/"
	}
	return "/?" + url.Values{"q": {query}}.Encode()
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	feed := view.NewFeed(s.backend)
	_ = feed.Refresh(r.Context(), query)
	state := feed.State()

	render(w, feedPageTemplate, http.StatusOK, feedPageData{
		page: page{
			PageTitle: "Home",
			Nonce:     httputil.NonceFromContext(r.Context()),
			Query:     query,
		},
		Form:            uploadFormData{Query: query},
		Limits:          validate.FieldLimits(),
		ShowFeed:        true,
		FeedUnavailable: state.Stale,
		Cards:           s.cards(r.Context(), state.Videos),
	})
}

// handleUpload runs one submit of the browser's upload form. Only a
// successful upload fetches the list again; every other outcome re-renders
// the form as submitted with its message.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	data := feedPageData{
		page: page{
			PageTitle: "Home",
			Nonce:     httputil.NonceFromContext(r.Context()),
		},
		Limits: validate.FieldLimits(),
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status, reason := http.StatusBadRequest, "Upload failed: invalid form"
		if isTooLarge(err) {
			status, reason = http.StatusRequestEntityTooLarge, "Upload failed: file too large"
		}
		slog.Warn("rejected upload form", "error", err)
		data.Form = uploadFormData{Message: "❌ " + reason, Failed: true}
		data.FeedURL = feedURL("")
		render(w, feedPageTemplate, status, data)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	query := r.FormValue("q")
	form := view.Form{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		if header.Filename != "" || header.Size > 0 {
			form.File = &view.File{
				Name:        header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	case !errors.Is(err, http.ErrMissingFile):
		slog.Warn("failed to read uploaded file", "error", err)
	}

	feed := view.NewFeed(s.backend)
	result := view.NewUploader(s.backend, feed).Submit(r.Context(), form)

	data.Form = uploadFormData{
		Title:       result.Title,
		Description: result.Description,
		Tags:        result.Tags,
		Message:     result.Message,
		Failed:      result.Phase != view.Succeeded,
		Query:       query,
	}
	data.Query = query

	status := http.StatusOK
	switch result.Phase {
	case view.Succeeded:
		state := feed.State()
		data.Form.Query = ""
		data.Query = ""
		data.ShowFeed = true
		data.FeedUnavailable = state.Stale
		data.Cards = s.cards(r.Context(), state.Videos)
	case view.Failed:
		status = http.StatusBadGateway
		data.FeedURL = feedURL(query)
	default:
		status = http.StatusUnprocessableEntity
		data.FeedURL = feedURL(query)
	}

	render(w, feedPageTemplate, status, data)
}

// limitUploads applies the upload limiter. Rejected submits get the feed
// page back with the form as sent and a plain failure message.
func (s *Server) limitUploads(next http.Handler) http.Handler {
	return s.uploadLimiter.Handler(next, http.HandlerFunc(s.handleUploadLimited))
}

func (s *Server) handleUploadLimited(w http.ResponseWriter, r *http.Request) {
	fields := s.formFields(w, r)
	query := fields["q"]
	reason := backend.UploadFailureReason(&backend.StatusError{StatusCode: http.StatusTooManyRequests})

	render(w, feedPageTemplate, http.StatusTooManyRequests, feedPageData{
		page: page{
			PageTitle: "Home",
			Nonce:     httputil.NonceFromContext(r.Context()),
			Query:     query,
		},
		Form: uploadFormData{
			Title:       fields["title"],
			Description: fields["description"],
			Tags:        fields["tags"],
			Message:     "❌ " + reason,
			Failed:      true,
			Query:       query,
		},
		Limits:  validate.FieldLimits(),
		FeedURL: feedURL(query),
	})
}

// formFields reads the text fields of a multipart submit, skipping file
// parts, so a rejected form can be shown again. Anything unreadable is left
// out.
func (s *Server) formFields(w http.ResponseWriter, r *http.Request) map[string]string {
	fields := map[string]string{}
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return fields
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return fields
		}
		name := part.FormName()
		if part.FileName() == "" && isFormField(name) {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err == nil {
				fields[name] = string(value)
			}
		}
		_ = part.Close()
	}
}

func isFormField(name string) bool {
	switch name {
	case "title", "description", "tags", "q":
		return true
	}
	return false
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// watchID returns the id path segment decoded exactly once. chi matches on
// RawPath when the request carries one, in which case the parameter is
// still escaped.
func watchID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := watchID(r)

	state := view.NewWatch(s.backend).Load(r.Context(), id)

	data := watchPageData{
		page: page{
			PageTitle: "Not found",
			Nonce:     httputil.NonceFromContext(r.Context()),
		},
	}

	if state.NotFound() {
		data.NotFound = true
		data.Unavailable = state.Unavailable
		status := http.StatusNotFound
		if state.Unavailable {
			status = http.StatusBadGateway
		}
		render(w, watchPageTemplate, status, data)
		return
	}

	v := state.Video
	data.PageTitle = v.Title
	if data.PageTitle == "" {
		data.PageTitle = "Watch"
	}
	data.Title = v.Title
	data.Description = v.Description
	data.StreamURL = s.streamURL(r.Context(), v.Filename)
	data.Views = view.ViewsLabel(v.Views)
	data.Tags = view.TagsLabel(v.Tags)

	render(w, watchPageTemplate, http.StatusOK, data)
}
