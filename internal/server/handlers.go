package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/extract"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Job description sources recorded in run metadata.
const (
	sourceText = "text"
	sourceURL  = "url"
)

// SessionRequest is the JSON body for POST /sessions
type SessionRequest struct {
	Resume         string `json:"resume"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	JobURL         string `json:"job_url,omitempty"`
}

// uploadForm holds the non-file fields of a multipart POST /sessions
type uploadForm struct {
	JobDescription string `validate:"required_without=JobURL"`
	JobURL         string `validate:"omitempty,url"`
}

// GenerateResult is the payload of the final "complete" event
type GenerateResult struct {
	RunID        string  `json:"run_id"`
	GenerationID int64   `json:"generation_id"`
	Iterations   int     `json:"iterations"`
	FinalScore   float64 `json:"final_score"`
	MarkdownPath string  `json:"markdown_path"`
	PDFPath      string  `json:"pdf_path,omitempty"`
	Degraded     string  `json:"degraded,omitempty"`
}

// GenerationList is the response for GET /generations
type GenerationList struct {
	Generations []recorder.GenerationRecord `json:"generations"`
	Count       int                         `json:"count"`
}

// handleCreateSession extracts the inputs, evaluates them and holds the paused run
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var (
		req SessionRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = s.readUpload(r)
	} else {
		req, err = s.readSessionJSON(r)
	}
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	jobDescription, source := strings.TrimSpace(req.JobDescription), sourceText
	if jobDescription == "" {
		jobDescription, err = extract.FromURL(r.Context(), req.JobURL, s.deps.FetchOptions)
		if err != nil {
			s.errorFrom(w, r, err)
			return
		}
		source = sourceURL
	}

	state := types.NewRunState(uuid.NewString(), req.Resume, jobDescription)
	state.SetMeta(types.MetaResumeFilename, req.ResumeFilename)
	state.SetMeta(types.MetaJobSource, source)

	paused, err := s.deps.Controller.Evaluate(r.Context(), state)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	owner := middleware.GetClient(r)
	s.sessions.put(owner, paused)
	logger.WithRun(s.logger, paused.ID).Info("session created",
		zap.String("client", owner),
		zap.String("jd_source", source),
		zap.Int("suggestions", len(paused.Suggestions)),
	)

	s.jsonResponse(w, http.StatusCreated, paused)
}

// readUpload reads a multipart form carrying a "resume" file and extracts its text
func (s *Server) readUpload(r *http.Request) (SessionRequest, error) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return SessionRequest{}, &ErrValidation{Field: "form", Message: "invalid multipart form: " + err.Error()}
	}

	form := uploadForm{
		JobDescription: strings.TrimSpace(r.FormValue("job_description")),
		JobURL:         strings.TrimSpace(r.FormValue("job_url")),
	}
	if err := s.validate.Struct(form); err != nil {
		return SessionRequest{}, validationError(err)
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return SessionRequest{}, &ErrValidation{Field: "resume", Message: "a resume file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return SessionRequest{}, &ErrValidation{Field: "resume", Message: "failed to read upload"}
	}

	resume, err := extract.FromBytes(header.Filename, data)
	if err != nil {
		return SessionRequest{}, err
	}

	return SessionRequest{
		Resume:         resume,
		ResumeFilename: header.Filename,
		JobDescription: form.JobDescription,
		JobURL:         form.JobURL,
	}, nil
}

// readSessionJSON reads a JSON body and checks it against the session request schema.
// The resume is always plain text here, whatever resume_filename says.
func (s *Server) readSessionJSON(r *http.Request) (SessionRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxUploadBytes))
	if err != nil {
		return SessionRequest{}, &ErrValidation{Field: "body", Message: "failed to read request body"}
	}
	if !json.Valid(body) {
		return SessionRequest{}, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := schemas.Validate(schemas.SessionRequest, body); err != nil {
		return SessionRequest{}, err
	}

	var req SessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return SessionRequest{}, &ErrValidation{Field: "body", Message: err.Error()}
	}
	if req.ResumeFilename == "" {
		req.ResumeFilename = "resume.txt"
	}

	resume, err := extract.FromBytes("resume.txt", []byte(req.Resume))
	if err != nil {
		return SessionRequest{}, err
	}
	req.Resume = resume
	return req, nil
}

// validationError converts the first validator failure into an ErrValidation
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := map[string]string{"JobDescription": "job_description", "JobURL": "job_url"}[fe.Field()]
		switch fe.Tag() {
		case "required_without":
			return &ErrValidation{Field: field, Message: "job_description or job_url is required"}
		case "url":
			return &ErrValidation{Field: field, Message: "must be a valid URL"}
		}
		return &ErrValidation{Field: field, Message: "failed " + fe.Tag()}
	}
	return &ErrValidation{Field: "form", Message: err.Error()}
}

// handleGetSession returns the held state of a session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.get(r.PathValue("id"), middleware.GetClient(r))
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, state)
}

// handleDeleteSession discards a session that is not generating
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.delete(r.PathValue("id"), middleware.GetClient(r)); err != nil {
		s.errorFrom(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerate approves a paused session, streams progress via SSE and records the result.
// A finished run whose publish failed is published again without rerunning the stages.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := s.sessions.acquire(id, middleware.GetClient(r))
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	pending := s.sessions.publishPending(id) && state.Status == types.StatusDone
	if state.Status != types.StatusAwaitingApproval && !pending {
		s.sessions.release(id, nil)
		s.errorFrom(w, r, &workflow.StateError{Message: "only a run awaiting approval can be generated", Status: state.Status})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.sessions.release(id, nil)
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log := logger.WithRun(s.logger, id)
	ctx := r.Context()

	done := state
	if !pending {
		controller := s.deps.Controller.WithProgress(func(event workflow.ProgressEvent) {
			if err := sse.WriteEvent(EventProgress, event); err != nil {
				log.Debug("failed to write progress event", zap.Error(err))
			}
		})
		done, err = controller.Resume(ctx, state)
		if err != nil {
			s.sessions.release(id, nil)
			log.Error("generation failed", zap.Error(err))
			sse.WriteError(err.Error())
			return
		}
	}

	rec, err := s.deps.Exporter.Publish(ctx, done, s.deps.Store)
	if err != nil {
		// Keep the finished run so a retry only repeats the publish step
		s.sessions.releasePending(id, done)
		log.Error("failed to publish generation", zap.Error(err))
		sse.WriteError(err.Error())
		return
	}
	s.sessions.release(id, done)

	sse.WriteComplete(GenerateResult{
		RunID:        done.ID,
		GenerationID: rec.ID,
		Iterations:   rec.Iterations,
		FinalScore:   rec.FinalScore,
		MarkdownPath: rec.MarkdownPath,
		PDFPath:      rec.PDFPath,
		Degraded:     done.Error.String(),
	})
}

// handleListGenerations lists recorded generations, newest first
func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Store.ListAll(r.Context())
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if records == nil {
		records = []recorder.GenerationRecord{}
	}
	s.jsonResponse(w, http.StatusOK, GenerationList{Generations: records, Count: len(records)})
}

// handleGetGeneration returns one generation record
func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := generationID(r)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	rec, err := s.deps.Store.Get(r.Context(), id)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	if rec == nil {
		s.errorFrom(w, r, &ErrGenerationNotFound{ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleDeleteGeneration deletes one generation record
func (s *Server) handleDeleteGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := generationID(r)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	if err := s.deps.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, recorder.ErrNotFound) {
			err = &ErrGenerationNotFound{ID: id}
		}
		s.errorFrom(w, r, err)
		return
	}
	s.logger.Info("generation deleted", zap.Int64("generation_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// handleExportGenerations streams the history as an XLSX workbook
func (s *Server) handleExportGenerations(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Store.ListAll(r.Context())
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}

	f, err := export.HistoryWorkbook(records)
	if err != nil {
		s.errorFrom(w, r, err)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="generations.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Warn("failed to write workbook", zap.Error(err))
	}
}

func generationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}
