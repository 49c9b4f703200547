package activitylog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент внешнего журнала активности
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента журнала активности.
// Пустой baseURL отключает отправку событий.
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Enabled сообщает, настроен ли адрес журнала
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Send отправляет событие в журнал активности
func (c *Client) Send(ctx context.Context, event Event) error {
	url := fmt.Sprintf("%s/internal/rooms/%s/activity", c.baseURL, event.RoomID)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to encode event: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(data))
	}
}

// Record отправляет событие с graceful degradation: ошибки журнала только логируются,
// на результат операции они не влияют
func (c *Client) Record(ctx context.Context, event Event) {
	if !c.Enabled() {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := c.Send(ctx, event); err != nil {
		c.log.Error("Activity log unavailable, dropping event type=%s room=%s: %v", event.Type, event.RoomID, err)
		return
	}

	c.log.Info("Activity event recorded: type=%s, room=%s, entity=%s", event.Type, event.RoomID, event.EntityID)
}
