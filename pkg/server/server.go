// Package server 通过 HTTP 提供 analyze/validate 接口
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sentiment-lens/config"
	"sentiment-lens/pkg/dataset"
	"sentiment-lens/pkg/metrics"
	"sentiment-lens/pkg/model"
	"sentiment-lens/pkg/service"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg      *config.ServerConfig
	loader   *dataset.Loader
	pipeline *service.PipelineService
	metrics  *metrics.Metrics
}

func New(cfg *config.ServerConfig, loader *dataset.Loader, pipeline *service.PipelineService, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		loader:   loader,
		pipeline: pipeline,
		metrics:  m,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.HandleFunc("POST /api/analyze", s.analyzeHandler)
	mux.HandleFunc("POST /api/validate", s.validateHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

// Run 阻塞直到 ctx 取消，然后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("HTTP 服务启动, 监听 %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "HTTP 服务异常退出")
	case <-ctx.Done():
	}

	zap.S().Info("正在关闭 HTTP 服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "关闭 HTTP 服务失败")
	}
	return nil
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type analyzeResponse struct {
	Success bool `json:"success"`
	*model.AnalysisReport
}

type validateResponse struct {
	Success        bool `json:"success"`
	RemovedEmpty   int  `json:"removedEmpty"`
	RemovedNoTruth int  `json:"removedNoTruth"`
	*model.ValidationReport
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "服务运行中"})
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	translate := strings.EqualFold(r.FormValue("translate"), "true")
	validate, _ := strconv.ParseBool(r.FormValue("validate"))

	report, _, err := s.pipeline.Analyze(r.Context(), ds, service.RunOptions{Translate: translate, Validate: validate})
	if err != nil {
		s.writeError(w, err, "分析失败")
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, AnalysisReport: report})
}

func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	translate := strings.EqualFold(r.FormValue("translate"), "true")

	report, _, err := s.pipeline.Validate(r.Context(), ds, translate)
	if err != nil {
		s.writeError(w, err, "验证失败")
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Success:          true,
		RemovedEmpty:     report.RemovedEmpty,
		RemovedNoTruth:   report.RemovedNoTruth,
		ValidationReport: report.Validation,
	})
}

// readUpload 读取 multipart 表单中的 file 字段，失败时已写好响应
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*model.Dataset, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "文件超过大小限制"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "未提供文件"})
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "未提供文件"})
		return nil, false
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "未选择文件"})
		return nil, false
	}
	if !s.allowed(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "不支持的文件类型, 允许: " + strings.Join(s.cfg.AllowedExtensions, ", "),
		})
		return nil, false
	}

	ds, err := s.loader.LoadReader(r.Context(), filepath.Base(header.Filename), file)
	if err != nil {
		s.writeError(w, err, "读取文件失败")
		return nil, false
	}
	return ds, true
}

func (s *Server) allowed(filename string) bool {
	if len(s.cfg.AllowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.cfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// writeError 输入问题返回 400，其余返回 500
func (s *Server) writeError(w http.ResponseWriter, err error, prefix string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrMalformedInput),
		errors.Is(err, model.ErrNoTextColumn),
		errors.Is(err, model.ErrNoGroundTruth):
		status = http.StatusBadRequest
	default:
		zap.S().Errorf("%s: %+v", prefix, err)
	}
	writeJSON(w, status, errorResponse{Error: prefix + ": " + err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnf("写入响应失败: %v", err)
	}
}
