package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

// AssetInput 是新增和修改资产时发送的请求体，assignedTo 总会被发送以便清空持有人
type AssetInput struct {
	Name         string             `json:"name"`
	Type         domain.AssetType   `json:"type,omitempty"`
	Status       domain.AssetStatus `json:"status,omitempty"`
	AssignedTo   string             `json:"assignedTo"`
	EmployeeID   string             `json:"employeeId"`
	SerialNumber string             `json:"serialNumber"`
}

func InputFrom(a domain.Asset) AssetInput {
	return AssetInput{
		Name:         a.Name,
		Type:         a.Type,
		Status:       a.Status,
		AssignedTo:   a.AssignedTo,
		EmployeeID:   a.EmployeeID,
		SerialNumber: a.SerialNumber,
	}
}

type assetEnvelope struct {
	Asset *domain.Asset `json:"asset"`
}

func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	// 响应不是数组时 json 解码会直接失败
	var assets []domain.Asset
	if err := c.do(ctx, http.MethodGet, "/assets/", nil, &assets); err != nil {
		return nil, err
	}
	if assets == nil {
		return nil, fmt.Errorf("%w: 资产列表为空值", ErrMalformedResponse)
	}

	for i := range assets {
		if err := checkAsset(&assets[i]); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func (c *Client) CreateAsset(ctx context.Context, input AssetInput) (*domain.Asset, error) {
	var resp assetEnvelope
	if err := c.do(ctx, http.MethodPost, "/assets/add", input, &resp); err != nil {
		return nil, err
	}
	if err := checkAsset(resp.Asset); err != nil {
		return nil, err
	}
	return resp.Asset, nil
}

func (c *Client) UpdateAsset(ctx context.Context, id string, input AssetInput) (*domain.Asset, error) {
	var resp assetEnvelope
	if err := c.do(ctx, http.MethodPut, "/assets/update/"+url.PathEscape(id), input, &resp); err != nil {
		return nil, err
	}
	if err := checkAsset(resp.Asset); err != nil {
		return nil, err
	}
	return resp.Asset, nil
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/assets/delete/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*domain.AssetStats, error) {
	var resp struct {
		Stats *domain.AssetStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/assets/stats", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Stats == nil {
		return nil, fmt.Errorf("%w: 缺少 stats 字段", ErrMalformedResponse)
	}
	return resp.Stats, nil
}

func (c *Client) RecentAssets(ctx context.Context) ([]domain.Asset, error) {
	var resp struct {
		Recent []domain.Asset `json:"recent"`
	}
	if err := c.do(ctx, http.MethodGet, "/assets/recent", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Recent == nil {
		return nil, fmt.Errorf("%w: 缺少 recent 字段", ErrMalformedResponse)
	}

	for i := range resp.Recent {
		if err := checkAsset(&resp.Recent[i]); err != nil {
			return nil, err
		}
	}
	return resp.Recent, nil
}

// DownloadInventoryReport 把 xlsx 报表写入 w
func (c *Client) DownloadInventoryReport(ctx context.Context, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/reports/inventory", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) EmailInventoryReport(ctx context.Context, to string) error {
	body := map[string]string{"to": to}
	return c.do(ctx, http.MethodPost, "/reports/inventory/email", body, nil)
}
