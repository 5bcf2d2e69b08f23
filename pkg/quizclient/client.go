// Package quizclient is the Go client for the quizforge API. It covers the
// REST surface and, through Session, the timed quiz-taking flow with bounded
// status polling.
package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned for unknown quiz or attempt identifiers.
	ErrNotFound = errors.New("quizclient: not found")
	// ErrGenerationFailed is returned when the server reports a failed quiz.
	ErrGenerationFailed = errors.New("quizclient: quiz generation failed")
	// ErrWaitTimeout is returned when polling exceeds the configured max wait.
	ErrWaitTimeout = errors.New("quizclient: timed out waiting for quiz")
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxWait      = 2 * time.Minute
)

// Client talks to one quizforge server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options configures the client. Zero values get sensible defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("quizclient: base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// Question is one question as exposed to quiz takers: no correct option, no
// explanation.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// Quiz is the payload of a ready quiz.
type Quiz struct {
	ID        string
	Status    string
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
}

// Answer is one selected option for submission.
type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

// SubmitResult is the server's scoring response.
type SubmitResult struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	AttemptID string `json:"attempt_id"`
}

// CreateQuiz requests generation and returns the new quiz id immediately;
// generation continues server-side.
func (c *Client) CreateQuiz(ctx context.Context, topic, username string) (string, error) {
	var out struct {
		QuizID string `json:"quiz_id"`
	}
	err := c.do(ctx, http.MethodPost, "/quiz", map[string]string{
		"topic":    topic,
		"username": username,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.QuizID, nil
}

// QuizStatus performs a single status poll. A generating quiz comes back with
// Status "generating" and no questions; ErrGenerationFailed and ErrNotFound
// report the terminal error outcomes.
func (c *Client) QuizStatus(ctx context.Context, quizID string) (*Quiz, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/quiz/"+quizID+"/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return &Quiz{ID: quizID, Status: "generating"}, nil
	case http.StatusOK:
		quiz := &Quiz{ID: quizID, Status: "ready"}
		if err := json.NewDecoder(resp.Body).Decode(quiz); err != nil {
			return nil, fmt.Errorf("quizclient: decode status: %w", err)
		}
		return quiz, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		// any other response is terminal; the server reports failed quizzes
		// with an error status
		return nil, ErrGenerationFailed
	}
}

// WaitForQuiz polls until the quiz is ready or a terminal error occurs. The
// loop re-arms only on a pending outcome and is bounded by maxWait (0 applies
// the default) and by ctx, so an abandoned session cannot poll forever.
func (c *Client) WaitForQuiz(ctx context.Context, quizID string, interval, maxWait time.Duration) (*Quiz, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	deadline := time.Now().Add(maxWait)

	for {
		quiz, err := c.QuizStatus(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if quiz.Status == "ready" {
			return quiz, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Submit sends the answers for scoring. startedAt is the client-observed
// session start; the server pairs it with its own completion time.
func (c *Client) Submit(ctx context.Context, quizID, username string, answers []Answer, startedAt time.Time) (*SubmitResult, error) {
	if answers == nil {
		answers = []Answer{}
	}
	var out SubmitResult
	err := c.do(ctx, http.MethodPost, "/quiz/"+quizID+"/submit", map[string]any{
		"username":   username,
		"answers":    answers,
		"started_at": startedAt.UTC().Format(time.RFC3339),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewDetail is one reviewed answer with the solution revealed.
type ReviewDetail struct {
	QuestionID     string   `json:"question_id"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	SelectedOption string   `json:"selected_option"`
	CorrectOption  string   `json:"correct_option"`
	IsCorrect      bool     `json:"is_correct"`
	Explanation    string   `json:"explanation"`
}

// AttemptResults is the full review payload for one attempt.
type AttemptResults struct {
	Username         string         `json:"username"`
	Subject          string         `json:"subject"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"total_questions"`
	AttemptedCount   int            `json:"attempted_count"`
	CorrectCount     int            `json:"correct_count"`
	IncorrectCount   int            `json:"incorrect_count"`
	TimeTakenSeconds int64          `json:"time_taken_seconds"`
	ReviewDetails    []ReviewDetail `json:"review_details"`
}

// Results fetches the review payload for an attempt.
func (c *Client) Results(ctx context.Context, attemptID string) (*AttemptResults, error) {
	var out AttemptResults
	if err := c.get(ctx, "/attempt/"+attemptID+"/results", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoryStats are the aggregate profile numbers.
type HistoryStats struct {
	MemberSince         time.Time `json:"member_since"`
	AvgAccuracy         int       `json:"avg_accuracy"`
	AvgTimeSeconds      int       `json:"avg_time_seconds"`
	HighestScore        int       `json:"highest_score"`
	HighestScoreSubject string    `json:"highest_score_subject"`
	FavoriteSubject     string    `json:"favorite_subject"`
}

// HistoryAttempt is one attempt inside a per-subject history list.
type HistoryAttempt struct {
	ID    string    `json:"id"`
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}

// SubjectHistory groups a subject's attempts.
type SubjectHistory struct {
	Count    int              `json:"count"`
	Attempts []HistoryAttempt `json:"attempts"`
}

// History is the per-user stats payload. Empty is set when the user has no
// attempts at all.
type History struct {
	Empty    bool                      `json:"empty"`
	Stats    HistoryStats              `json:"stats"`
	Subjects map[string]SubjectHistory `json:"subjects"`
}

// History fetches aggregate stats for a username.
func (c *Client) History(ctx context.Context, username string) (*History, error) {
	query := url.Values{"username": []string{username}}
	var out History
	if err := c.get(ctx, "/history?"+query.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckUser reports whether the username has recorded attempts.
func (c *Client) CheckUser(ctx context.Context, username string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := c.do(ctx, http.MethodPost, "/users/check", map[string]string{"username": username}, &out)
	if err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader *bytes.Buffer
	if body != nil {
		reader = &bytes.Buffer{}
		if err := json.NewEncoder(reader).Encode(body); err != nil {
			return nil, fmt.Errorf("quizclient: encode request: %w", err)
		}
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return fmt.Errorf("quizclient: %s (%d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("quizclient: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
