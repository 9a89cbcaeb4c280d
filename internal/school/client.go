package school

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Code, strings.TrimSpace(e.Body))
}

// LoginFlag persists the local "logged in" marker.
type LoginFlag interface {
	SetLoggedIn(bool) error
	LoggedIn() (bool, error)
}

// Client issues one HTTP request per operation. Errors are returned to the
// caller unchanged: no retries, no translation.
type Client struct {
	baseURL  string
	http     *http.Client
	flag     LoginFlag
	logger   *zap.Logger
	validate *validator.Validate
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// WithLoginFlag sets where Login records a successful login.
func WithLoginFlag(f LoginFlag) Option {
	return func(c *Client) { c.flag = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   zap.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login posts the credentials. A truthy response body counts as success
// and sets the login flag.
func (c *Client) Login(ctx context.Context, email, password string) (bool, error) {
	var result any
	if err := c.do(ctx, http.MethodPost, "/login", credentials{Email: email, Password: password}, &result); err != nil {
		return false, err
	}
	ok := truthy(result)
	if ok && c.flag != nil {
		if err := c.flag.SetLoggedIn(true); err != nil {
			return true, fmt.Errorf("persist login flag: %w", err)
		}
	}
	return ok, nil
}

// Logout clears the login flag. No request is made.
func (c *Client) Logout() error {
	if c.flag == nil {
		return nil
	}
	return c.flag.SetLoggedIn(false)
}

// IsLoggedIn reads the login flag.
func (c *Client) IsLoggedIn() (bool, error) {
	if c.flag == nil {
		return false, nil
	}
	return c.flag.LoggedIn()
}

func (c *Client) Classes(ctx context.Context) ([]Class, error) {
	var classes []Class
	if err := c.do(ctx, http.MethodGet, "/class/all", nil, &classes); err != nil {
		return nil, err
	}
	for i := range classes {
		if err := c.validate.Struct(&classes[i]); err != nil {
			return nil, fmt.Errorf("class %d: %w", classes[i].ID, err)
		}
	}
	return classes, nil
}

// Class returns one class, or nil when the backend answers null.
func (c *Client) Class(ctx context.Context, id int64) (*Class, error) {
	var class *Class
	if err := c.do(ctx, http.MethodGet, "/class/"+itoa(id), nil, &class); err != nil {
		return nil, err
	}
	if class != nil {
		if err := c.validate.Struct(class); err != nil {
			return nil, fmt.Errorf("class %d: %w", id, err)
		}
	}
	return class, nil
}

func (c *Client) AddClass(ctx context.Context, name string, studentCount int) error {
	return c.do(ctx, http.MethodPost, "/class/add", Class{Name: name, StudentCount: studentCount}, ignoreJSON)
}

func (c *Client) UpdateClass(ctx context.Context, id int64, name string, studentCount int) error {
	return c.do(ctx, http.MethodPut, "/class/update", Class{ID: id, Name: name, StudentCount: studentCount}, ignoreJSON)
}

func (c *Client) DeleteClass(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/class/delete/"+itoa(id), nil, ignoreJSON)
}

func (c *Client) StudentsByClass(ctx context.Context, classID int64) ([]Student, error) {
	var students []Student
	if err := c.do(ctx, http.MethodGet, "/etudiant/byClass/"+itoa(classID), nil, &students); err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].ClassID == 0 {
			students[i].ClassID = classID
		}
		if err := c.validate.Struct(&students[i]); err != nil {
			return nil, fmt.Errorf("student %d: %w", students[i].ID, err)
		}
	}
	return students, nil
}

func (c *Client) AddStudent(ctx context.Context, classID int64, lastName, firstName, birthDate string) error {
	s := Student{ClassID: classID, LastName: lastName, FirstName: firstName, BirthDate: birthDate}
	return c.do(ctx, http.MethodPost, "/etudiant/add", s, ignoreJSON)
}

func (c *Client) UpdateStudent(ctx context.Context, id, classID int64, lastName, firstName, birthDate string) error {
	s := Student{ID: id, ClassID: classID, LastName: lastName, FirstName: firstName, BirthDate: birthDate}
	return c.do(ctx, http.MethodPut, "/etudiant/update", s, ignoreJSON)
}

func (c *Client) DeleteStudent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/etudiant/delete/"+itoa(id), nil, ignoreJSON)
}

func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	var subjects []Subject
	if err := c.do(ctx, http.MethodGet, "/matiere/all", nil, &subjects); err != nil {
		return nil, err
	}
	for i := range subjects {
		if err := c.validate.Struct(&subjects[i]); err != nil {
			return nil, fmt.Errorf("subject %d: %w", subjects[i].ID, err)
		}
	}
	return subjects, nil
}

func (c *Client) AddSubject(ctx context.Context, title, description string) error {
	return c.do(ctx, http.MethodPost, "/matiere/add", Subject{Title: title, Description: description}, ignoreJSON)
}

func (c *Client) UpdateSubject(ctx context.Context, id int64, title, description string) error {
	return c.do(ctx, http.MethodPut, "/matiere/update", Subject{ID: id, Title: title, Description: description}, ignoreJSON)
}

// DeleteSubject does not read the response body.
func (c *Client) DeleteSubject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/matiere/delete/"+itoa(id), nil, nil)
}

func (c *Client) AddSubjectToClass(ctx context.Context, classID, subjectID int64) error {
	body := classSubjectLink{Class: classRef{ID: classID}, Subject: subjectRef{ID: subjectID}}
	return c.do(ctx, http.MethodPost, "/matiere/addToClasse", body, ignoreJSON)
}

// RemoveSubjectFromClass does not read the response body.
func (c *Client) RemoveSubjectFromClass(ctx context.Context, classID, subjectID int64) error {
	return c.do(ctx, http.MethodDelete, "/matiere/deleteFromClasse/"+itoa(classID)+"/"+itoa(subjectID), nil, nil)
}

// ignoreJSON requires a JSON response body but discards it.
var ignoreJSON = new(json.RawMessage)

// do sends one request. body, if non-nil, is sent as JSON. out, if non-nil,
// receives the decoded response; a nil out skips reading the body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(msg)}
	}
	if out == nil {
		return nil
	}
	if out == ignoreJSON {
		var discard json.RawMessage
		out = &discard
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// truthy applies JSON truthiness: false, 0, "" and null are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
