package web

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bdcmjobs/jobdesk/internal/api"
	"github.com/bdcmjobs/jobdesk/internal/domain"
	"github.com/bdcmjobs/jobdesk/internal/eligibility"
)

// maxCVSize matches the upload limit shown next to the file input.
const maxCVSize = 5 << 20

// cvContentTypes are the accepted CV formats, keyed by MIME type.
var cvContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type applyView struct {
	pageData
	Job       domain.JobPosting
	CanApply  bool
	Notice    string
	FormError string
}

// checkGate runs the eligibility sequence and performs its redirect if one is
// decided. Returns the decision and whether the caller should stop.
func (s *Server) checkGate(w http.ResponseWriter, r *http.Request, jobID int64) (eligibility.Decision, bool) {
	sess, active := s.sessions.Current()
	d := s.gate.Check(r.Context(), sess.User, active, jobID)
	if d.Redirect == "" {
		return d, false
	}

	q := url.Values{}
	if d.Message != "" {
		q.Set("msg", d.Message)
	}
	if d.ReturnPath != "" {
		switch d.Redirect {
		case "/login":
			q.Set("returnTo", d.ReturnPath)
		default:
			q.Set("returnPath", d.ReturnPath)
		}
	}
	dest := d.Redirect
	if len(q) > 0 {
		dest += "?" + q.Encode()
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
	return d, true
}

func (s *Server) ApplyFormHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	d, done := s.checkGate(w, r, id)
	if done {
		return
	}

	job, err := s.gateway.GetJobPost(r.Context(), id)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	v := applyView{
		pageData: s.page(r, "Apply"),
		Job:      job,
		CanApply: d.CanApply,
		Notice:   d.Message,
	}
	s.render(w, r, "apply", v)
}

func (s *Server) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	d, done := s.checkGate(w, r, id)
	if done {
		return
	}
	if !d.CanApply {
		redirectMsg(w, r, "/jobs/"+strconv.FormatInt(id, 10), d.Message)
		return
	}

	job, err := s.gateway.GetJobPost(r.Context(), id)
	if err != nil {
		s.NotFoundHandler(w, r)
		return
	}

	v := applyView{
		pageData: s.page(r, "Apply"),
		Job:      job,
		CanApply: true,
		Notice:   d.Message,
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCVSize+1<<20)
	file, header, err := parseCV(r)
	if err != nil {
		v.FormError = err.Error()
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "apply", v)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxCVSize+1))
	if err != nil {
		v.FormError = "Could not read the uploaded file"
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "apply", v)
		return
	}
	if len(data) > maxCVSize {
		v.FormError = "File size must be less than 5MB"
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "apply", v)
		return
	}

	sess, _ := s.sessions.Current()
	_, err = s.gateway.CreateApplication(r.Context(), api.ApplicationInput{
		UserID:        sess.User.ID,
		JobPostID:     id,
		CVData:        base64.StdEncoding.EncodeToString(data),
		CVFilename:    header.filename,
		CVContentType: header.contentType,
	})
	if err != nil {
		v.FormError, v.Banner = errBanner(err)
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "apply", v)
		return
	}

	redirectMsg(w, r, "/my-applications", "Application submitted successfully")
}

type cvHeader struct {
	filename    string
	contentType string
}

// parseCV extracts and validates the uploaded CV file.
func parseCV(r *http.Request) (io.ReadCloser, cvHeader, error) {
	file, fh, err := r.FormFile("cv_file")
	if err != nil {
		return nil, cvHeader{}, errString("Please attach your CV")
	}

	ct := fh.Header.Get("Content-Type")
	if !cvContentTypes[ct] {
		// Some browsers send a generic type; fall back to the extension.
		switch strings.ToLower(filepath.Ext(fh.Filename)) {
		case ".pdf":
			ct = "application/pdf"
		case ".doc":
			ct = "application/msword"
		case ".docx":
			ct = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		default:
			file.Close()
			return nil, cvHeader{}, errString("Please upload a PDF, DOC, or DOCX file")
		}
	}
	if fh.Size > maxCVSize {
		file.Close()
		return nil, cvHeader{}, errString("File size must be less than 5MB")
	}

	return file, cvHeader{filename: fh.Filename, contentType: ct}, nil
}

type errString string

func (e errString) Error() string { return string(e) }
