// Package client is a typed client for the task board REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/team-task-board/internal/dto"
	"github.com/yukikurage/team-task-board/internal/models"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// IsNotFound reports a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// Client calls the REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- users and sessions ---

// Login resolves a uid to its user.
func (c *Client) Login(ctx context.Context, uid string) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, http.MethodPost, "/auth", nil, dto.AuthRequest{UID: uid}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a user; the response carries the derived uid.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, http.MethodPost, "/user", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, uid string) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, http.MethodGet, "/user/"+url.PathEscape(uid), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	return c.do(ctx, http.MethodDelete, "/user/"+url.PathEscape(uid), nil, nil, nil)
}

// --- tasks ---

// ListTasks lists every task, optionally only those with status.
func (c *Client) ListTasks(ctx context.Context, status *models.TaskStatus) ([]dto.TaskDTO, error) {
	query := url.Values{}
	if status != nil {
		query.Set("status", string(*status))
	}
	var tasks []dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, "/tasks", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, taskID uint64) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, taskPath(taskID), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListUserTasks returns the personal tasks of the user with uid; with
// includeTeam also the team tasks they created or are assigned to.
func (c *Client) ListUserTasks(ctx context.Context, uid string, includeTeam bool) ([]dto.TaskDTO, error) {
	query := url.Values{}
	if includeTeam {
		query.Set("scope", "all")
	}
	var tasks []dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(uid)+"/tasks", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) ListTeamTasks(ctx context.Context, teamID uint64) ([]dto.TaskDTO, error) {
	var tasks []dto.TaskDTO
	if err := c.do(ctx, http.MethodGet, "/team-tasks/"+strconv.FormatUint(teamID, 10), nil, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask sends a partial update; unset fields are not sent.
func (c *Client) UpdateTask(ctx context.Context, taskID uint64, req dto.UpdateTaskRequest) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if err := c.do(ctx, http.MethodPut, taskPath(taskID), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, taskID uint64) error {
	return c.do(ctx, http.MethodDelete, taskPath(taskID), nil, nil, nil)
}

// GenerateTasks asks the API for AI drafts. Nothing is stored.
func (c *Client) GenerateTasks(ctx context.Context, req dto.GenerateTasksRequest) ([]dto.DraftDTO, error) {
	var resp dto.GenerateTasksResponse
	if err := c.do(ctx, http.MethodPost, "/tasks/generate", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// --- teams ---

func (c *Client) CreateTeam(ctx context.Context, req dto.CreateTeamRequest) (*dto.TeamDetailDTO, error) {
	var team dto.TeamDetailDTO
	if err := c.do(ctx, http.MethodPost, "/teams", nil, req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListUserTeams lists the teams of the user with uid.
func (c *Client) ListUserTeams(ctx context.Context, uid string) ([]dto.TeamDTO, error) {
	var teams []dto.TeamDTO
	if err := c.do(ctx, http.MethodGet, "/teams/"+url.PathEscape(uid), nil, nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) DeleteTeam(ctx context.Context, teamID uint64) error {
	return c.do(ctx, http.MethodDelete, teamPath(teamID), nil, nil, nil)
}

func (c *Client) ListTeamMembers(ctx context.Context, teamID uint64) ([]dto.UserDTO, error) {
	var members []dto.UserDTO
	if err := c.do(ctx, http.MethodGet, teamPath(teamID)+"/members", nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) AddTeamMember(ctx context.Context, teamID uint64, req dto.AddMemberRequest) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if err := c.do(ctx, http.MethodPost, teamPath(teamID)+"/members", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RemoveTeamMember(ctx context.Context, teamID, userID uint64) error {
	path := teamPath(teamID) + "/members/" + strconv.FormatUint(userID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// --- tags ---

// ListTags lists tags, narrowed by whichever scope ids are non-nil.
func (c *Client) ListTags(ctx context.Context, userID, teamID *uint64) ([]dto.TagDTO, error) {
	query := url.Values{}
	if userID != nil {
		query.Set("user_id", strconv.FormatUint(*userID, 10))
	}
	if teamID != nil {
		query.Set("team_id", strconv.FormatUint(*teamID, 10))
	}
	var tags []dto.TagDTO
	if err := c.do(ctx, http.MethodGet, "/tags", query, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*dto.TagDTO, error) {
	var tag dto.TagDTO
	if err := c.do(ctx, http.MethodPost, "/tags", nil, req, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, tagID uint64) error {
	return c.do(ctx, http.MethodDelete, "/tags/"+strconv.FormatUint(tagID, 10), nil, nil, nil)
}

// Health checks the API liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func taskPath(taskID uint64) string {
	return "/tasks/" + strconv.FormatUint(taskID, 10)
}

func teamPath(teamID uint64) string {
	return "/teams/" + strconv.FormatUint(teamID, 10)
}

// do sends one request. body is JSON-encoded when non-nil; out, when non-nil,
// receives the decoded 2xx response. Each call is a single attempt and
// transport errors are returned as-is.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Message
			return apiErr
		}
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}
