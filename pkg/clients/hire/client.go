package hire

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/partyhire/internal/domain/models"
)

// Client exposes the receipt HTTP API operations.
type Client interface {
	List(ctx context.Context) (*models.ReceiptListResponse, error)
	Submit(ctx context.Context, req models.SubmitReceiptRequest) (*models.ReceiptResponse, error)
	Delete(ctx context.Context, receiptNumber int) (*models.ReceiptResponse, error)
	Reset(ctx context.Context) (*models.ReceiptListResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Errors     []string
	Duplicate  *models.Record
}

func (e *APIError) Error() string {
	switch {
	case len(e.Errors) > 0:
		return fmt.Sprintf("hire api error: status=%d, errors=%s", e.StatusCode, strings.Join(e.Errors, "; "))
	default:
		return fmt.Sprintf("hire api error: status=%d, message=%s", e.StatusCode, e.Message)
	}
}

// NewClient builds a client for the service listening at baseURL.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

func (c *APIClient) List(ctx context.Context) (*models.ReceiptListResponse, error) {
	result := new(models.ReceiptListResponse)
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/receipts")
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// Submit posts a hire form. A duplicate comes back as an *APIError with
// status 409 and the existing record in Duplicate.
func (c *APIClient) Submit(ctx context.Context, req models.SubmitReceiptRequest) (*models.ReceiptResponse, error) {
	result := new(models.ReceiptResponse)
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(apiErr).
		Post("/receipts")
	if err != nil {
		return nil, fmt.Errorf("submit receipt: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *APIClient) Delete(ctx context.Context, receiptNumber int) (*models.ReceiptResponse, error) {
	result := new(models.ReceiptResponse)
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("receipt_number", strconv.Itoa(receiptNumber)).
		SetResult(result).
		SetError(apiErr).
		Delete("/receipts")
	if err != nil {
		return nil, fmt.Errorf("delete receipt: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *APIClient) Reset(ctx context.Context) (*models.ReceiptListResponse, error) {
	result := new(models.ReceiptListResponse)
	apiErr := new(models.ErrorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Post("/receipts/reset")
	if err != nil {
		return nil, fmt.Errorf("reset receipts: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

func checkResponse(resp *resty.Response, apiErr *models.ErrorResponse) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}

	out := &APIError{StatusCode: resp.StatusCode()}
	if apiErr != nil {
		out.Message = apiErr.Error
		if out.Message == "" {
			out.Message = apiErr.Message
		}
		out.Errors = apiErr.Errors
		out.Duplicate = apiErr.Duplicate
	}
	return out
}
