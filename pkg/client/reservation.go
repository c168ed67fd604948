package client

import (
	"fmt"
	"net/url"
	"time"

	"sarpras/internal/reservations/availability"
	"sarpras/pkg/model"
)

type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) CreateWithIdempotencyKey(body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders("/api/v1/reservations", body, map[string]string{"Idempotency-Key": key})
}

func (c *ReservationClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/reservations", rawBody)
}

func (c *ReservationClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/reservations?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/id/" + url.PathEscape(id))
}

func (c *ReservationClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/reservations/id/"+url.PathEscape(id), body)
}

func (c *ReservationClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/reservations/id/" + url.PathEscape(id))
}

// Search passes zero-valued filter fields through as absent.
func (c *ReservationClient) Search(filter model.ReservationFilter, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if filter.AssetCode != "" {
		q.Set("asset_code", filter.AssetCode)
	}
	if filter.DriverRef != "" {
		q.Set("driver_ref", filter.DriverRef)
	}
	if filter.Kind != "" {
		q.Set("kind", string(filter.Kind))
	}
	if filter.StartTime != nil {
		q.Set("start_time", filter.StartTime.Format(time.RFC3339))
	}
	if filter.EndTime != nil {
		q.Set("end_time", filter.EndTime.Format(time.RFC3339))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))

	return c.httpClient.GET("/api/v1/reservations/search?" + q.Encode())
}

func (c *ReservationClient) CheckAvailability(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations/availability", body)
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := decodeData(resp, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ReservationClient) DecodeReservations(resp *Response) ([]*model.Reservation, *Metadata, error) {
	var reservations []*model.Reservation
	meta, err := decodePage(resp, &reservations)
	if err != nil {
		return nil, nil, err
	}
	return reservations, meta, nil
}

type Availability struct {
	Available bool                   `json:"available"`
	Conflict  *availability.Conflict `json:"conflict,omitempty"`
}

func (c *ReservationClient) DecodeAvailability(resp *Response) (*Availability, error) {
	var availability Availability
	if err := decodeData(resp, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
