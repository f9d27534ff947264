package client

import (
	"barberbook/pkg/model"
	"context"
	"net/http"
	"net/url"
)

// BookingClient calls the bookings and auth endpoints with a bearer token.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// SetToken authenticates subsequent calls.
func (c *BookingClient) SetToken(token string) {
	c.httpClient.Token = token
}

func (c *BookingClient) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	resp, err := c.httpClient.POST(ctx, "/api/auth/register", req)
	if err != nil {
		return nil, err
	}
	var out model.AuthResponse
	if err := expect(resp, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *BookingClient) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	resp, err := c.httpClient.POST(ctx, "/api/auth/login", &model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var out model.AuthResponse
	if err := expect(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *BookingClient) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	resp, err := c.httpClient.POST(ctx, "/api/bookings", req)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := expect(resp, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	q := url.Values{}
	if filter.Phone != "" {
		q.Set("phone", filter.Phone)
	}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	if filter.UserID != "" {
		q.Set("userId", filter.UserID)
	}

	path := "/api/bookings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var bookings []*model.Booking
	if err := expect(resp, http.StatusOK, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	resp, err := c.httpClient.GET(ctx, "/api/bookings/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := expect(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	path := "/api/bookings/" + url.PathEscape(id) + "/status"
	resp, err := c.httpClient.PATCH(ctx, path, &model.StatusUpdate{Status: status})
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := expect(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) Update(ctx context.Context, id string, req *model.BookingRequest) (*model.Booking, error) {
	resp, err := c.httpClient.PUT(ctx, "/api/bookings/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := expect(resp, http.StatusOK, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// SetRole changes another user's role. Admin only.
func (c *BookingClient) SetRole(ctx context.Context, userID, role string) (*model.User, error) {
	path := "/api/auth/users/" + url.PathEscape(userID) + "/role"
	resp, err := c.httpClient.PUT(ctx, path, &model.RoleUpdate{Role: role})
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := expect(resp, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
