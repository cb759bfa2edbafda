package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// REST endpoint paths, relative to the API host.
const (
	loginPath      = "/account/rest/account/v1/login"
	deviceListPath = "/device/rest/devices/v1/list"
)

// statusOK is the success value of the application-level "status" field.
// It shadows the HTTP status code but is carried in the response body.
const statusOK = 200

// restClient performs the HTTPS exchanges against the vendor platform.
// It owns header construction; callers provide the bearer token per call
// so the client itself stays free of session state.
type restClient struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
}

func newRESTClient(cfg Config, now func() time.Time) *restClient {
	return &restClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		now:  now,
	}
}

// loginRequest is the body of the login exchange.
type loginRequest struct {
	Client      string `json:"client"`
	Email       string `json:"email"`
	Key         string `json:"key"`
	Password    string `json:"password"`
	Transaction int64  `json:"transaction"`
	View        int    `json:"view"`
}

// loginResponse is the body of a login response. CertificateID names the
// key/certificate pair the broker connection must present; the vendor
// transmits it in the oddly named "A" field.
type loginResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Client  loginClient `json:"client"`
}

type loginClient struct {
	Token         string `json:"token"`
	Topic         string `json:"topic"`
	CertificateID string `json:"A"`
	AccountID     int64  `json:"accountId"`
	Client        string `json:"client"`
	ClientType    string `json:"clientType"`
}

// deviceListRequest is the body of the device list exchange.
type deviceListRequest struct {
	Key         string `json:"key"`
	Transaction int64  `json:"transaction"`
	View        int    `json:"view"`
}

// deviceListResponse is the body of a device list response.
type deviceListResponse struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Devices []deviceEntry `json:"devices"`
}

// deviceEntry is one device in a device list response.
type deviceEntry struct {
	Device      string    `json:"device"`
	SKU         string    `json:"sku"`
	DeviceName  string    `json:"deviceName"`
	GoodsType   int       `json:"goodsType"`
	VersionHard string    `json:"versionHard"`
	VersionSoft string    `json:"versionSoft"`
	DeviceExt   deviceExt `json:"deviceExt"`
}

// deviceExt carries the nested JSON-string payloads of a device entry.
// Both fields are JSON documents serialised into strings by the platform
// and need a second unmarshal pass.
type deviceExt struct {
	DeviceSettings string `json:"deviceSettings"`
	LastDeviceData string `json:"lastDeviceData"`
}

// deviceSettings is the decoded deviceSettings document. Topic is the
// per-device broker publish target; everything else is metadata.
type deviceSettings struct {
	Topic       string `json:"topic"`
	BLEName     string `json:"bleName"`
	WiFiName    string `json:"wifiName"`
	Address     string `json:"address"`
	VersionHard string `json:"versionHard"`
	VersionSoft string `json:"versionSoft"`
}

// lastDeviceData is the decoded lastDeviceData document. Online is a
// pointer so a missing flag maps to unknown connectivity.
type lastDeviceData struct {
	Online *bool `json:"online"`
}

// login performs the login exchange. The application status is returned for
// the caller to judge; transport errors propagate unmodified.
func (r *restClient) login(ctx context.Context) (*loginResponse, error) {
	req := loginRequest{
		Client:      r.cfg.ClientID,
		Email:       r.cfg.Email,
		Password:    r.cfg.Password,
		Transaction: r.now().UnixMilli(),
	}

	var res loginResponse
	if err := r.post(ctx, loginPath, req, "", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// deviceList performs the device list exchange using the given bearer token.
func (r *restClient) deviceList(ctx context.Context, token string) (*deviceListResponse, error) {
	req := deviceListRequest{
		Transaction: r.now().UnixMilli(),
	}

	var res deviceListResponse
	if err := r.post(ctx, deviceListPath, req, token, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// post sends a JSON POST to the given path and decodes the JSON response
// into out. An empty token omits the Authorization header, as required for
// the login exchange itself.
func (r *restClient) post(ctx context.Context, path string, body any, token string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+r.cfg.APIHost+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	r.setHeaders(req, token)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrProtocol, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %w", ErrProtocol, path, err)
	}

	return nil
}

// setHeaders attaches the fixed platform headers plus the per-request
// timestamp and optional bearer token.
func (r *restClient) setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.cfg.APIKey)
	req.Header.Set("country", r.cfg.Country)
	req.Header.Set("Accept-Language", r.cfg.Locale)
	req.Header.Set("timezone", r.cfg.Timezone)
	req.Header.Set("appVersion", r.cfg.AppVersion)
	req.Header.Set("clientId", r.cfg.ClientID)
	req.Header.Set("clientType", r.cfg.ClientType)
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("timestamp", strconv.FormatInt(r.now().UnixMilli(), 10))

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
