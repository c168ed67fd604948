package client

import (
	"fmt"
	"net/url"
	"time"

	"sarpras/internal/reservations/availability"
	"sarpras/pkg/model"
)

type AssetClient struct {
	httpClient *HttpClient
}

func NewAssetClient(baseUrl string) *AssetClient {
	return &AssetClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *AssetClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/assets", body)
}

func (c *AssetClient) GetAll(kind model.AssetKind, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("kind", string(kind))
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/assets?" + q.Encode())
}

func (c *AssetClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/assets/id/" + url.PathEscape(id))
}

func (c *AssetClient) GetByCode(code string) (*Response, error) {
	return c.httpClient.GET("/api/v1/assets/code/" + url.PathEscape(code))
}

func (c *AssetClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/assets/id/"+url.PathEscape(id), body)
}

func (c *AssetClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/assets/id/" + url.PathEscape(id))
}

func (c *AssetClient) StockLevel(code string, start, end time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("start_time", start.Format(time.RFC3339))
	q.Set("end_time", end.Format(time.RFC3339))
	return c.httpClient.GET("/api/v1/assets/code/" + url.PathEscape(code) + "/availability?" + q.Encode())
}

func (c *AssetClient) DecodeAsset(resp *Response) (*model.Asset, error) {
	var asset model.Asset
	if err := decodeData(resp, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *AssetClient) DecodeAssets(resp *Response) ([]*model.Asset, *Metadata, error) {
	var assets []*model.Asset
	meta, err := decodePage(resp, &assets)
	if err != nil {
		return nil, nil, err
	}
	return assets, meta, nil
}

func (c *AssetClient) DecodeStockLevel(resp *Response) (*availability.StockLevel, error) {
	var level availability.StockLevel
	if err := decodeData(resp, &level); err != nil {
		return nil, err
	}
	return &level, nil
}
