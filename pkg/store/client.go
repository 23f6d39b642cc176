package store

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/VIISON/scs-commander/internal/utils"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const (
	DEFAULT_ENDPOINT = "https://api.shopware.com"
	USER_AGENT       = "scs-commander (+https://github.com/VIISON/scs-commander)"

	// Addon name the store uses for partial ionCube encryption of uploads.
	PARTIAL_ENCRYPTION_ADDON = "partialIonCubeEncryptionAllowed"
)

var (
	ErrPluginNotFound = errors.New("plugin not found in the store")
	ErrAuthFailed     = errors.New("store login failed")
)

// snapshotExpand is requested on every re-fetch so the returned plugin
// snapshot always carries its binaries and reviews.
var snapshotExpand = []string{"binaries", "reviews"}

// Client talks to the SCS account API. Authenticate with Login before
// calling anything that touches producer data; SoftwareVersions works
// without credentials.
type Client struct {
	endpoint string
	token    string
	userID   int
	producer *Producer
	http     *retryablehttp.Client
}

func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DEFAULT_ENDPOINT
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     retryClient,
	}
}

// SetProxy routes all store traffic through the given HTTP proxy.
func (c *Client) SetProxy(proxy string) error {
	if proxy == "" {
		return nil
	}

	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %v", err)
	}

	c.http.HTTPClient.Transport = &http.Transport{
		Proxy:           http.ProxyURL(proxyURL),
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return nil
}

// Login exchanges the Shopware ID credentials for an access token that is
// sent as X-Shopware-Token on all following requests.
func (c *Client) Login(ctx context.Context, shopwareID, password string) error {
	payload := map[string]string{"shopwareId": shopwareID, "password": password}

	body, status, err := c.do(ctx, "POST", "/accesstokens", payload)
	if err != nil && status == 0 {
		return err
	}
	if status == 401 || status == 403 {
		return fmt.Errorf("%w: the store rejected the credentials for %q", ErrAuthFailed, shopwareID)
	}
	if err != nil {
		return err
	}

	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return fmt.Errorf("no access token in login response")
	}

	c.token = token
	c.userID = int(gjson.GetBytes(body, "userId").Int())
	utils.Log.Debugf("Logged in to %s as user %d", c.endpoint, c.userID)
	return nil
}

// GetProducer returns the producer (vendor account) the logged-in user
// belongs to. The result is cached; all plugins of an account hang off its
// single producer.
func (c *Client) GetProducer(ctx context.Context) (*Producer, error) {
	if c.producer != nil {
		return c.producer, nil
	}

	body, _, err := c.do(ctx, "GET", "/producers?companyId="+strconv.Itoa(c.userID), nil)
	if err != nil {
		return nil, err
	}

	var producers []Producer
	if err := json.Unmarshal(body, &producers); err != nil {
		return nil, fmt.Errorf("parsing producer response: %v", err)
	}
	if len(producers) == 0 {
		return nil, fmt.Errorf("the account does not own a producer, cannot manage plugins")
	}

	c.producer = &producers[0]
	return c.producer, nil
}

// Plugins lists all plugins of the producer. expand names related entities
// ("binaries", "reviews") to include in the response.
func (c *Client) Plugins(ctx context.Context, expand []string) ([]Plugin, error) {
	producer, err := c.GetProducer(ctx)
	if err != nil {
		return nil, err
	}

	path := "/plugins?producerId=" + strconv.Itoa(producer.ID) + "&limit=1000"
	if len(expand) > 0 {
		path += "&expand=" + strings.Join(expand, ",")
	}

	body, _, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var plugins []Plugin
	if err := json.Unmarshal(body, &plugins); err != nil {
		return nil, fmt.Errorf("parsing plugin list: %v", err)
	}
	return plugins, nil
}

// FindPlugin looks up a plugin by its technical name (e.g. "SwagExample").
func (c *Client) FindPlugin(ctx context.Context, name string, expand []string) (*Plugin, error) {
	plugins, err := c.Plugins(ctx, expand)
	if err != nil {
		return nil, err
	}

	for i := range plugins {
		if plugins[i].Name == name {
			return &plugins[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not among the producer's plugins", ErrPluginNotFound, name)
}

// EnablePartialEncryption makes sure the plugin carries the partial ionCube
// encryption addon. A no-op when the addon is already set.
func (c *Client) EnablePartialEncryption(ctx context.Context, p *Plugin) (*Plugin, error) {
	if p.HasAddon(PARTIAL_ENCRYPTION_ADDON) {
		return p, nil
	}

	updated := *p
	updated.Addons = append(append([]Addon{}, p.Addons...), Addon{Name: PARTIAL_ENCRYPTION_ADDON})
	if _, _, err := c.do(ctx, "PUT", "/plugins/"+strconv.Itoa(p.ID), updated); err != nil {
		return nil, fmt.Errorf("enabling partial encryption: %w", err)
	}

	return c.fetchPlugin(ctx, p.ID)
}

// UploadBinary creates a new binary on the plugin from the archive content
// and returns the fresh plugin snapshot, whose LatestBinary is the new one.
func (c *Client) UploadBinary(ctx context.Context, p *Plugin, archivePath string) (*Plugin, error) {
	path := "/plugins/" + strconv.Itoa(p.ID) + "/binaries"
	if err := c.postFile(ctx, path, archivePath); err != nil {
		return nil, fmt.Errorf("uploading binary: %w", err)
	}
	return c.fetchPlugin(ctx, p.ID)
}

// UpdateBinary replaces the payload of an existing binary with the archive
// content, keeping the binary's identity.
func (c *Client) UpdateBinary(ctx context.Context, p *Plugin, b *Binary, archivePath string) (*Plugin, error) {
	path := "/plugins/" + strconv.Itoa(p.ID) + "/binaries/" + strconv.Itoa(b.ID) + "/file"
	if err := c.postFile(ctx, path, archivePath); err != nil {
		return nil, fmt.Errorf("replacing binary %d: %w", b.ID, err)
	}
	return c.fetchPlugin(ctx, p.ID)
}

// SavePluginBinary commits the binary's metadata (version, changelogs,
// compatible versions) to the store.
func (c *Client) SavePluginBinary(ctx context.Context, p *Plugin, b *Binary) (*Plugin, error) {
	path := "/plugins/" + strconv.Itoa(p.ID) + "/binaries/" + strconv.Itoa(b.ID)
	if _, _, err := c.do(ctx, "PUT", path, b); err != nil {
		return nil, fmt.Errorf("saving binary %d: %w", b.ID, err)
	}
	return c.fetchPlugin(ctx, p.ID)
}

// RequestBinaryReview submits the plugin's latest binary for the store's
// code review. The returned snapshot carries the appended review record.
func (c *Client) RequestBinaryReview(ctx context.Context, p *Plugin) (*Plugin, error) {
	path := "/plugins/" + strconv.Itoa(p.ID) + "/reviews"
	if _, _, err := c.do(ctx, "POST", path, nil); err != nil {
		return nil, fmt.Errorf("requesting review: %w", err)
	}
	return c.fetchPlugin(ctx, p.ID)
}

// SoftwareVersions returns the Shopware versions the store knows, in store
// order. Needs no authentication.
func (c *Client) SoftwareVersions(ctx context.Context) ([]SoftwareVersion, error) {
	body, _, err := c.do(ctx, "GET", "/pluginstatics/softwareVersions", nil)
	if err != nil {
		return nil, err
	}

	var versions []SoftwareVersion
	if err := json.Unmarshal(body, &versions); err != nil {
		return nil, fmt.Errorf("parsing software versions: %v", err)
	}
	return versions, nil
}

func (c *Client) fetchPlugin(ctx context.Context, id int) (*Plugin, error) {
	path := "/plugins/" + strconv.Itoa(id) + "?expand=" + strings.Join(snapshotExpand, ",")

	body, status, err := c.do(ctx, "GET", path, nil)
	if status == 404 {
		return nil, fmt.Errorf("%w: plugin %d vanished from the store", ErrPluginNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var plugin Plugin
	if err := json.Unmarshal(body, &plugin); err != nil {
		return nil, fmt.Errorf("parsing plugin %d: %v", id, err)
	}
	return &plugin, nil
}

// do sends a request with the common headers and returns the response body.
// payload, when non-nil, is marshalled to JSON. Non-2xx responses become an
// error carrying the store's message; the status code is returned either way
// so callers can special-case statuses like 401 or 404.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req)
}

// postFile streams the archive as a multipart upload to the given path.
func (c *Client) postFile(ctx context.Context, path, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(archivePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.endpoint+path, buf.Bytes())
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, _, err = c.send(req)
	return err
}

func (c *Client) send(req *retryablehttp.Request) ([]byte, int, error) {
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Shopware-Token", c.token)
	}

	utils.Log.Debugf("%s %s", req.Method, req.URL)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return body, res.StatusCode, apiError(req.Method, req.URL.Path, res.StatusCode, body)
	}
	return body, res.StatusCode, nil
}

// apiError extracts the human-readable part of a store error response. The
// API is inconsistent about the field name, so try the known ones.
func apiError(method, path string, status int, body []byte) error {
	message := gjson.GetBytes(body, "description").String()
	if message == "" {
		message = gjson.GetBytes(body, "message").String()
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		return fmt.Errorf("store request %s %s failed with status %d", method, path, status)
	}
	return fmt.Errorf("store request %s %s failed with status %d: %s", method, path, status, message)
}
