package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/de-tools/fin-health/pkg/adapters"
	"github.com/de-tools/fin-health/pkg/models/api"
	"github.com/de-tools/fin-health/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second
	filesField     = "files"
	requestIDKey   = "X-Request-ID"
	// maxErrorBody bounds how much of a failed response is kept for messages.
	maxErrorBody = 512
)

// ReportStore is the boundary to the remote analysis and report-storage service.
type ReportStore interface {
	SubmitForAnalysis(ctx context.Context, files []domain.FileHandle) (*domain.Report, error)
	ListReports(ctx context.Context) ([]domain.ReportSummary, error)
	GetReport(ctx context.Context, id int64) (*domain.Report, error)
}

type Options struct {
	BaseURL      string
	Timeout      time.Duration
	HistoryLimit int
	HTTPClient   *http.Client
}

// HTTPClient talks to the service over HTTP. Every call is a single attempt.
type HTTPClient struct {
	baseURL      *url.URL
	http         *http.Client
	historyLimit int
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:      base,
		http:         httpClient,
		historyLimit: opts.HistoryLimit,
	}, nil
}

func (c *HTTPClient) SubmitForAnalysis(ctx context.Context, files []domain.FileHandle) (*domain.Report, error) {
	body, contentType, err := encodeFiles(files)
	if err != nil {
		return nil, &AnalysisFailure{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("analyze"), body)
	if err != nil {
		return nil, &AnalysisFailure{Cause: err}
	}
	req.Header.Set("Content-Type", contentType)

	data, err := c.do(req)
	if err != nil {
		return nil, &AnalysisFailure{Cause: err}
	}

	var resp api.AnalyzeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &AnalysisFailure{Cause: fmt.Errorf("failed to decode analysis response: %w", err)}
	}
	if resp.Error != nil {
		return nil, &AnalysisFailure{Cause: &ServiceError{Message: *resp.Error}}
	}

	return adapters.MapAnalyzeResponseToDomainReport(resp), nil
}

func (c *HTTPClient) ListReports(ctx context.Context) ([]domain.ReportSummary, error) {
	endpoint := c.endpoint("reports")
	if c.historyLimit > 0 {
		endpoint += "?limit=" + strconv.Itoa(c.historyLimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &HistoryFetchFailure{Cause: err}
	}

	data, err := c.do(req)
	if err != nil {
		return nil, &HistoryFetchFailure{Cause: err}
	}

	var summaries []api.ReportSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, &HistoryFetchFailure{Cause: fmt.Errorf("failed to decode report list: %w", err)}
	}

	return adapters.MapReportSummariesToDomain(summaries), nil
}

func (c *HTTPClient) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("reports", strconv.FormatInt(id, 10)), nil)
	if err != nil {
		return nil, &ReportFetchFailure{ID: id, Cause: err}
	}

	data, err := c.do(req)
	if err != nil {
		return nil, &ReportFetchFailure{ID: id, Cause: err}
	}

	var record api.ReportRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &ReportFetchFailure{ID: id, Cause: fmt.Errorf("failed to decode report: %w", err)}
	}

	return adapters.MapReportRecordToDomainReport(record), nil
}

func (c *HTTPClient) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	req.Header.Set(requestIDKey, requestID)
	req.Header.Set("Accept", "application/json")

	logger := zerolog.Ctx(req.Context()).With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Str("request_id", requestID).
		Logger()

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("request failed")
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read response body")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncateBody(string(data))}
	}

	return data, nil
}

// truncateBody keeps at most maxErrorBody bytes without splitting a rune.
func truncateBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) <= maxErrorBody {
		return body
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}

func encodeFiles(files []domain.FileHandle) (io.Reader, string, error) {
	if len(files) == 0 {
		return nil, "", fmt.Errorf("no files to submit")
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, f := range files {
		if err := writeFilePart(writer, f); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, f domain.FileHandle) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	part, err := writer.CreateFormFile(filesField, f.Name)
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %w", f.Name, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to copy %s: %w", f.Name, err)
	}
	return nil
}
