package view

import (
	"context"
	"io"
	"log/slog"

	"github.com/vibetube/vibetube/internal/backend"
	"github.com/vibetube/vibetube/internal/validate"
)

const (
	NoFileMessage  = "Please choose a video file to upload"
	SuccessMessage = "✅ Upload successful"
	failurePrefix  = "❌ "
)

// Phase is the upload form's position in the submit cycle. Succeeded and
// Failed behave like Idle for the next submit.
type Phase int

const (
	Idle Phase = iota
	Uploading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Uploading:
		return "uploading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// File is the file picked in the upload form.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// Form is the upload form state. It is a value: every transition returns a
// new Form and leaves its input untouched.
type Form struct {
	File        *File
	Title       string
	Description string
	Tags        string
	Phase       Phase
	Message     string
}

// Busy reports whether a submit is in flight.
func (f Form) Busy() bool { return f.Phase == Uploading }

func (f Form) upload() backend.Upload {
	u := backend.Upload{
		Title:       f.Title,
		Description: f.Description,
		Tags:        f.Tags,
	}
	if f.File != nil {
		u.File = f.File.Body
		u.FileName = f.File.Name
		u.ContentType = f.File.ContentType
	}
	return u
}

// Field names a text input of the upload form.
type Field int

const (
	TitleField Field = iota
	DescriptionField
	TagsField
)

// Event is an input to Reduce.
type Event interface{ event() }

type FileChosen struct{ File *File }

type FieldChanged struct {
	Field Field
	Value string
}

type Submitted struct{}

type UploadSucceeded struct{ Video *backend.Video }

type UploadFailed struct{ Err error }

func (FileChosen) event()      {}
func (FieldChanged) event()    {}
func (Submitted) event()       {}
func (UploadSucceeded) event() {}
func (UploadFailed) event()    {}

// Effect is the side effect a transition asks its caller to perform.
type Effect int

const (
	NoEffect Effect = iota
	StartUpload
	RefreshFeed
)

// Reduce applies ev to form.
func Reduce(form Form, ev Event) (Form, Effect) {
	switch ev := ev.(type) {
	case FileChosen:
		form.File = ev.File
		return form, NoEffect

	case FieldChanged:
		switch ev.Field {
		case TitleField:
			form.Title = ev.Value
		case DescriptionField:
			form.Description = ev.Value
		case TagsField:
			form.Tags = ev.Value
		}
		return form, NoEffect

	case Submitted:
		if form.Busy() {
			return form, NoEffect
		}
		if form.File == nil {
			form.Phase = Idle
			form.Message = NoFileMessage
			return form, NoEffect
		}
		for _, msg := range []string{
			validate.Title(form.Title),
			validate.Description(form.Description),
			validate.Tags(form.Tags),
		} {
			if msg != "" {
				form.Phase = Idle
				form.Message = msg
				return form, NoEffect
			}
		}
		form.Phase = Uploading
		form.Message = ""
		return form, StartUpload

	case UploadSucceeded:
		if !form.Busy() {
			return form, NoEffect
		}
		return Form{Phase: Succeeded, Message: SuccessMessage}, RefreshFeed

	case UploadFailed:
		if !form.Busy() {
			return form, NoEffect
		}
		form.Phase = Failed
		form.Message = failurePrefix + backend.UploadFailureReason(ev.Err)
		return form, NoEffect
	}
	return form, NoEffect
}

// Creator sends a multipart create request to the backend.
type Creator interface {
	CreateVideo(ctx context.Context, u backend.Upload) (*backend.Video, error)
}

// Uploader runs the submit cycle: validate, upload, and on success refresh
// the feed with no query.
type Uploader struct {
	creator Creator
	feed    *Feed
}

// NewUploader returns an Uploader. feed may be nil when no list is shown.
func NewUploader(creator Creator, feed *Feed) *Uploader {
	return &Uploader{creator: creator, feed: feed}
}

// Submit runs one submit of form and returns the form it ends in. The
// returned form is never busy.
func (u *Uploader) Submit(ctx context.Context, form Form) Form {
	next, effect := Reduce(form, Submitted{})
	if effect != StartUpload {
		return next
	}

	created, err := u.creator.CreateVideo(ctx, next.upload())
	if err != nil {
		slog.Warn("upload failed", "file", next.File.Name, "error", err)
		next, _ = Reduce(next, UploadFailed{Err: err})
		return next
	}

	if created != nil {
		slog.Info("upload complete", "file", next.File.Name, "video_id", created.ID)
	}
	next, effect = Reduce(next, UploadSucceeded{Video: created})
	if effect == RefreshFeed && u.feed != nil {
		_ = u.feed.Refresh(ctx, "")
	}
	return next
}
