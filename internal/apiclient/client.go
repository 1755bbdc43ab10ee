package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jobper/jobper-dashboard/internal/config"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jobper_api_requests_total",
	Help: "Requests issued to the Jobper backend by method and outcome.",
}, []string{"method", "outcome"})

// TokenReader доступ клиента к сохранённому access-токену.
type TokenReader interface {
	AccessToken() string
}

// Client клиент REST API Jobper. Каждый запрос получает заголовок
// Authorization: Bearer <token>, если токен сохранён.
//
// Ответ 401 не повторяется с обновлённым токеном автоматически: обновление
// сессии запускает только менеджер сессии, иначе тихий повтор менял бы
// семантику гонок login/logout.
type Client struct {
	baseURL    string
	tokens     TokenReader
	httpClient *http.Client
	log        *slog.Logger
}

// New создаёт клиент бэкенда. Таймаут запроса берётся из конфига,
// при нуле используется 15 секунд.
func New(cfg config.Backend, tokens TokenReader, log *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Get выполняет GET и декодирует тело ответа в out (если out != nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post выполняет POST с JSON-телом body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put выполняет PUT с JSON-телом body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete выполняет DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "apiclient.do"

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return &TransientError{Message: "failed to encode request body", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return &TransientError{Message: "failed to build request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		c.log.Warn("request failed", slog.String("op", op), slog.String("path", path), sl.Err(err))
		return &TransientError{Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(method, path, resp, out)
}

// Upload отправляет multipart/form-data с файлом в поле field и
// дополнительными текстовыми полями fields.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string, out any) error {
	const op = "apiclient.Upload"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return &TransientError{Message: "failed to build multipart body", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &TransientError{Message: "failed to read upload file", Err: err}
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return &TransientError{Message: "failed to write form field", Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return &TransientError{Message: "failed to finalize multipart body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &TransientError{Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(http.MethodPost, "network_error").Inc()
		c.log.Warn("upload failed", slog.String("op", op), slog.String("path", path), sl.Err(err))
		return &TransientError{Message: "upload failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(http.MethodPost, path, resp, out)
}

// FetchBinary скачивает бинарный ресурс (comprobante) с авторизацией.
// Возвращает содержимое и content type. Буфер отдаётся вызывающему,
// который обязан освободить его через review.Release после показа.
func (c *Client) FetchBinary(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", &TransientError{Message: "failed to build request", Err: err}
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(http.MethodGet, "network_error").Inc()
		return nil, "", &TransientError{Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", c.normalize(resp, nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransientError{Message: "failed to read response body", Err: err}
	}
	requestsTotal.WithLabelValues(http.MethodGet, "ok").Inc()
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *Client) authorize(req *http.Request) {
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) decode(method, path string, resp *http.Response, out any) error {
	const op = "apiclient.decode"

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestsTotal.WithLabelValues(method, "api_error").Inc()
		err := c.normalize(resp, nil)
		c.log.Debug("backend returned error", slog.String("op", op),
			slog.String("path", path), slog.Int("status", resp.StatusCode), sl.Err(err))
		return err
	}

	requestsTotal.WithLabelValues(method, "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Message: "failed to decode response body", Err: err}
	}
	return nil
}

// errorBody форма тела ошибки бэкенда.
type errorBody struct {
	Error        string            `json:"error"`
	Debug        string            `json:"debug,omitempty"`
	Upgrade      bool              `json:"upgrade,omitempty"`
	RequiredPlan string            `json:"required_plan,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// normalize приводит не-2xx ответ к типизированной ошибке.
// Классификация: 401 — AuthError; флаг upgrade в теле или 402 — BusinessRuleError;
// остальные 4xx — ValidationError; 5xx и нечитаемые ответы — TransientError.
func (c *Client) normalize(resp *http.Response, raw []byte) error {
	var body errorBody
	if raw == nil {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	}
	_ = json.Unmarshal(raw, &body)
	if body.Error == "" {
		body.Error = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{HadToken: c.tokens.AccessToken() != "", Message: body.Error}
	case body.Upgrade || resp.StatusCode == http.StatusPaymentRequired:
		return &BusinessRuleError{Message: body.Error, Upgrade: true, RequiredPlan: body.RequiredPlan}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ValidationError{Message: body.Error, Fields: body.Fields}
	default:
		return &TransientError{Message: body.Error}
	}
}
