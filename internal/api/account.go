package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ariefcatur/pandagamers-storefront/internal/orders"
	"github.com/ariefcatur/pandagamers-storefront/internal/session"
)

func (c *Client) Login(ctx context.Context, username, password string) (session.AuthResult, error) {
	var out session.AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, Credentials{Username: username, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, r Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, r, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/users", nil, nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, u User) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/users", nil, u, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var out []orders.Order
	err := c.do(ctx, http.MethodGet, "/orders", nil, nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateOrder(ctx context.Context, r orders.Request) (orders.Order, error) {
	var out orders.Order
	err := c.do(ctx, http.MethodPost, "/orders", nil, r, &out)
	return out, err
}

func (c *Client) InitiatePayment(ctx context.Context, r orders.Request) (PaymentRedirect, error) {
	var out PaymentRedirect
	err := c.do(ctx, http.MethodPost, "/pago/iniciar", nil, r, &out)
	return out, err
}

func (c *Client) ConfirmPayment(ctx context.Context, token string, status orders.PaymentStatus) (PaymentConfirmation, error) {
	var out PaymentConfirmation
	body := map[string]string{"token": token, "status": string(status)}
	err := c.do(ctx, http.MethodPost, "/pago/confirmar", nil, body, &out)
	return out, err
}
