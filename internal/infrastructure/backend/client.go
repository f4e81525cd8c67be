package backend

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

	"github.com/yourusername/storefront-chat/internal/domain/entity"
	"github.com/yourusername/storefront-chat/internal/domain/repository"
)

const defaultTimeout = 20 * time.Second

// StatusError is a non-2xx backend answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status=%d: %s", e.Code, e.Message)
}

func isStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to the storefront REST backend. One Client serves the catalog,
// chat, payment and server-cart endpoints.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient; authToken is sent as a Bearer token unless a request carries its own.
func NewClient(baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		authToken:  strings.TrimSpace(authToken),
		httpClient: httpClient,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.authToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, 25<<20))
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("json decode error: %w", err)
	}
	return nil
}

type itemWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	ImageURL string `json:"imageUrl"`
}

func (w itemWire) toEntity(kind entity.ItemKind) entity.CatalogItem {
	image := w.Image
	if image == "" {
		image = w.ImageURL
	}
	return entity.CatalogItem{ID: w.ID, Kind: kind, Name: w.Name, Price: w.Price, ImageRef: image}
}

type pageWire struct {
	Items       []itemWire `json:"items"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
}

func collection(kind entity.ItemKind) string {
	if kind == entity.KindCombo {
		return "combos"
	}
	return "products"
}

// FetchPage reads GET /api/{products|combos}?page=&limit=.
func (c *Client) FetchPage(ctx context.Context, kind entity.ItemKind, page, limit int) (entity.CatalogPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out pageWire
	if err := c.doJSON(ctx, http.MethodGet, "/api/"+collection(kind)+"?"+q.Encode(), "", nil, &out); err != nil {
		return entity.CatalogPage{}, fmt.Errorf("fetch %s page %d: %w", kind, page, err)
	}
	res := entity.CatalogPage{TotalPages: out.TotalPages, CurrentPage: out.CurrentPage}
	for _, w := range out.Items {
		res.Items = append(res.Items, w.toEntity(kind))
	}
	return res, nil
}

func (c *Client) FetchByID(ctx context.Context, kind entity.ItemKind, id string) (*entity.CatalogItem, error) {
	var out itemWire
	err := c.doJSON(ctx, http.MethodGet, "/api/"+collection(kind)+"/"+url.PathEscape(id), "", nil, &out)
	if isStatus(err, http.StatusNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", kind, id, err)
	}
	item := out.toEntity(kind)
	if item.ID == "" {
		item.ID = id
	}
	return &item, nil
}

// Send implements the chat transport: POST /api/chat.
func (c *Client) Send(ctx context.Context, req entity.ChatRequest) (entity.ChatReply, error) {
	var out entity.ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req.AuthToken, req, &out); err != nil {
		return entity.ChatReply{}, fmt.Errorf("chat request: %w", err)
	}
	return out, nil
}

// CheckStatus maps 404 to repository.ErrOrderNotFound.
func (c *Client) CheckStatus(ctx context.Context, orderID string) (entity.PaymentStatus, error) {
	var out entity.PaymentStatus
	err := c.doJSON(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(orderID)+"/payment-status", "", nil, &out)
	if isStatus(err, http.StatusNotFound) {
		return entity.PaymentStatus{}, repository.ErrOrderNotFound
	}
	if err != nil {
		return entity.PaymentStatus{}, fmt.Errorf("payment status %s: %w", orderID, err)
	}
	return out, nil
}

func (c *Client) Confirm(ctx context.Context, orderID string) (entity.PaymentConfirmation, error) {
	var out entity.PaymentConfirmation
	err := c.doJSON(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(orderID)+"/confirm-payment", "", struct{}{}, &out)
	if isStatus(err, http.StatusNotFound) {
		return entity.PaymentConfirmation{}, repository.ErrOrderNotFound
	}
	if err != nil {
		return entity.PaymentConfirmation{}, fmt.Errorf("confirm payment %s: %w", orderID, err)
	}
	return out, nil
}

// CartStore returns the ServerCart view of the client.
func (c *Client) CartStore() repository.CartStore {
	return serverCart{c}
}

type serverCart struct{ c *Client }

func (s serverCart) Load(ctx context.Context, userID string) (entity.CartState, error) {
	var out entity.CartState
	err := s.c.doJSON(ctx, http.MethodGet, "/api/cart/"+url.PathEscape(userID), "", nil, &out)
	if isStatus(err, http.StatusNotFound) {
		return entity.CartState{}, nil
	}
	if err != nil {
		return entity.CartState{}, fmt.Errorf("load server cart: %w", err)
	}
	return out, nil
}

func (s serverCart) Save(ctx context.Context, userID string, cart entity.CartState) error {
	if cart.Lines == nil {
		cart.Lines = []entity.CartLine{}
	}
	if err := s.c.doJSON(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(userID), "", cart, nil); err != nil {
		return fmt.Errorf("save server cart: %w", err)
	}
	return nil
}

func (s serverCart) Clear(ctx context.Context, userID string) error {
	err := s.c.doJSON(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(userID), "", nil, nil)
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("clear server cart: %w", err)
	}
	return nil
}
