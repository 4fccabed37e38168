package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"CryptoPilot/internal/model"
)

// Client reads the bot API, e.g. for the status command.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{client: c}
}

type dashboardResponse struct {
	Success bool            `json:"success"`
	Data    model.Dashboard `json:"data"`
	Error   string          `json:"error"`
}

// Dashboard fetches the full dashboard snapshot.
func (c *Client) Dashboard(ctx context.Context) (model.Dashboard, error) {
	var out dashboardResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/api/dashboard")
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("fetch dashboard: %w", err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status()
		}
		return model.Dashboard{}, errors.New(msg)
	}
	return out.Data, nil
}

// Start asks the bot to start. Requires a token when the server has a JWT secret.
func (c *Client) Start(ctx context.Context) (model.BotStatus, error) {
	return c.control(ctx, "/api/bot/start")
}

// Stop asks the bot to stop.
func (c *Client) Stop(ctx context.Context) (model.BotStatus, error) {
	return c.control(ctx, "/api/bot/stop")
}

func (c *Client) control(ctx context.Context, path string) (model.BotStatus, error) {
	var out struct {
		Success bool            `json:"success"`
		Data    model.BotStatus `json:"data"`
		Error   string          `json:"error"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Post(path)
	if err != nil {
		return model.BotStatus{}, fmt.Errorf("post %s: %w", path, err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status()
		}
		return model.BotStatus{}, errors.New(msg)
	}
	return out.Data, nil
}
