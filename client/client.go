// Package client is the quiz API consumer used by the session engine: a
// plain HTTP client plus the offline fallbacks layered on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"african-culture-quiz/models"
)

var (
	// ErrNoMatch mirrors the server's 404 on a batch with no category match.
	ErrNoMatch = errors.New("no questions match the requested categories")

	// ErrQuestionNotFound mirrors the server's 404 on verify, which means
	// the client and server banks are out of sync.
	ErrQuestionNotFound = errors.New("question not found")
)

// Client talks to the quiz API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchBatch requests a batch of SafeQuestions.
func (c *Client) FetchBatch(ctx context.Context, lang string, count int, categories []string) ([]models.SafeQuestion, error) {
	params := url.Values{}
	params.Set("lang", lang)
	params.Set("count", strconv.Itoa(count))
	if len(categories) > 0 {
		params.Set("categories", strings.Join(categories, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/questions/batch?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNoMatch
	default:
		return nil, fmt.Errorf("batch request failed: %s", resp.Status)
	}

	var batch []models.SafeQuestion
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return batch, nil
}

// Verify submits an answer for server-side checking.
func (c *Client) Verify(ctx context.Context, lang, questionText, answer string) (bool, error) {
	body, err := json.Marshal(models.VerifyRequest{
		QuestionText: questionText,
		Answer:       answer,
		Lang:         lang,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/questions/verify", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, ErrQuestionNotFound
	default:
		return false, fmt.Errorf("verify request failed: %s", resp.Status)
	}

	var result models.VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode verify result: %w", err)
	}
	return result.Correct, nil
}
