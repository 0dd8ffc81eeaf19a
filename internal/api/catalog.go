package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := c.do(ctx, http.MethodGet, "/productos", nil, nil, &out)
	return out, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodGet, "/productos/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateProduct(ctx context.Context, p Product) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodPost, "/productos", nil, p, &out)
	return out, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p Product) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodPut, "/productos/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/productos/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) UpdateStock(ctx context.Context, id string, stock int) (Product, error) {
	var out Product
	body := map[string]int{"stock": stock}
	err := c.do(ctx, http.MethodPut, "/productos/"+url.PathEscape(id)+"/stock", nil, body, &out)
	return out, err
}

func (c *Client) ListOffers(ctx context.Context) ([]Offer, error) {
	var out []Offer
	err := c.do(ctx, http.MethodGet, "/ofertas", nil, nil, &out)
	return out, err
}

func (c *Client) CreateOffer(ctx context.Context, o Offer) (Offer, error) {
	var out Offer
	err := c.do(ctx, http.MethodPost, "/ofertas", nil, o, &out)
	return out, err
}

func (c *Client) UpdateOffer(ctx context.Context, id string, o Offer) (Offer, error) {
	var out Offer
	err := c.do(ctx, http.MethodPut, "/ofertas/"+url.PathEscape(id), nil, o, &out)
	return out, err
}

func (c *Client) DeleteOffer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/ofertas/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListReviews(ctx context.Context) ([]Review, error) {
	var out []Review
	err := c.do(ctx, http.MethodGet, "/reviews", nil, nil, &out)
	return out, err
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, nil)
}
