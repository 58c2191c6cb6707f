package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/archtower/pkg/analysis"
	"github.com/matzehuels/archtower/pkg/arch"
	"github.com/matzehuels/archtower/pkg/buildinfo"
	"github.com/matzehuels/archtower/pkg/errors"
	"github.com/matzehuels/archtower/pkg/graph"
	"github.com/matzehuels/archtower/pkg/pipeline"
	"github.com/matzehuels/archtower/pkg/source"
	"github.com/matzehuels/archtower/pkg/tree"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

// CacheHeader reports whether a response came from the cache ("hit") or
// was computed ("miss").
const CacheHeader = "X-Cache"

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	opts, files, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, hit, err := s.runner.AnalyzeWithCacheInfo(r.Context(), files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := graph.MarshalAnalysis(a)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentTypes[pipeline.FormatJSON], hit, data)
}

// nodesResponse is the query-layer view of an analysis.
type nodesResponse struct {
	Nodes     []*arch.Node          `json:"nodes"`
	Total     int                   `json:"total"`
	Languages map[arch.Language]int `json:"languages"`
	Folders   []string              `json:"folders"`
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := analysis.Filter{
		Folder:   q.Get("folder"),
		Language: arch.Language(q.Get("language")),
		Type:     arch.NodeType(q.Get("type")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown node type %q", filter.Type))
		return
	}
	if filter.Folder != "" {
		if err := errors.ValidatePath(filter.Folder); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	opts, files, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, _, err := s.runner.AnalyzeWithCacheInfo(r.Context(), files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nodesResponse{
		Nodes:     analysis.FilterNodes(a, filter),
		Total:     len(a.Nodes),
		Languages: analysis.LanguageBreakdown(a),
		Folders:   analysis.Folders(a),
	})
}

func (s *Server) handleFlowchart(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pipeline.FormatJSON)
}

func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, format)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, format string) {
	opts, files, err := s.decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hit := result.CacheInfo.AnalyzeHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	writeBytes(w, contentTypes[format], hit, result.Artifacts[format])
}

// decodeRequest reads the pipeline options from the query and the tree
// from the body.
func (s *Server) decodeRequest(r *http.Request) (pipeline.Options, []source.File, error) {
	opts, err := s.options(r.URL.Query())
	if err != nil {
		return opts, nil, err
	}
	root, err := tree.Decode(r.Body, s.logger)
	if err != nil {
		return opts, nil, err
	}
	return opts, tree.Files(root), nil
}

// options overlays query parameters on the server defaults.
func (s *Server) options(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = s.logger

	if v := q.Get("max_file_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "max_file_size must be a positive integer, got %q", v)
		}
		opts.MaxFileSize = n
	}
	if ex := q["exclude"]; len(ex) > 0 {
		opts.Exclude = append(append([]string{}, opts.Exclude...), ex...)
	}
	if v := q.Get("canvas_width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "canvas_width must be a positive number, got %q", v)
		}
		opts.CanvasWidth = f
	}
	if v := q.Get("overlap_iterations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "overlap_iterations must be a positive integer, got %q", v)
		}
		opts.OverlapIterations = n
	}
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "refresh": &opts.Refresh} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
			}
			*dst = b
		}
	}
	if err := opts.ValidateForAnalyze(); err != nil {
		return opts, err
	}
	return opts, nil
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code      errors.Code `json:"code"`
		Message   string      `json:"message"`
		RequestID string      `json:"request_id,omitempty"`
	} `json:"error"`
}

// writeError answers with the status of the error's code. Internal errors
// are logged and their details withheld.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var body errorBody
	body.Error.RequestID = RequestIDFromContext(r.Context())

	code := errors.GetCode(err)
	status := code.HTTPStatus()
	message := errors.UserMessage(err)
	if e := (*errors.Error)(nil); stderrors.As(err, &e) && e.Cause != nil {
		message += ": " + e.Cause.Error()
	}

	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		code, status = errors.ErrCodeInvalidInput, http.StatusRequestEntityTooLarge
		message = "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"
	case r.Context().Err() != nil:
		code, status, message = errors.ErrCodeTimeout, http.StatusServiceUnavailable, "request cancelled"
	case code == "":
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", body.Error.RequestID)
		if code == errors.ErrCodeInternal {
			message = "internal error"
		}
	}

	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, cacheHit bool, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if cacheHit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
