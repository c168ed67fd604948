package client

import (
	"fmt"
	"net/url"

	"sarpras/pkg/model"
)

type DriverClient struct {
	httpClient *HttpClient
}

func NewDriverClient(baseUrl string) *DriverClient {
	return &DriverClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *DriverClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/drivers", body)
}

func (c *DriverClient) GetAll(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/drivers?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *DriverClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/drivers/id/" + url.PathEscape(id))
}

func (c *DriverClient) GetByCode(code string) (*Response, error) {
	return c.httpClient.GET("/api/v1/drivers/code/" + url.PathEscape(code))
}

func (c *DriverClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/drivers/id/"+url.PathEscape(id), body)
}

func (c *DriverClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/drivers/id/" + url.PathEscape(id))
}

func (c *DriverClient) DecodeDriver(resp *Response) (*model.Driver, error) {
	var driver model.Driver
	if err := decodeData(resp, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}
