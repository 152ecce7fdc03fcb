package client

import (
	"io"
	"net/http"
	"net/url"

	"github.com/voidshard/era5d/pkg/api/http/common"
	"github.com/voidshard/era5d/pkg/structs"
)

type Client struct {
	url  *url.URL
	http *http.Client
}

func New(address string) (*Client, error) {
	u, err := url.Parse(address)
	return &Client{url: u, http: &http.Client{}}, err
}

func (c *Client) Health() (*common.HealthResponse, error) {
	var out common.HealthResponse
	return &out, c.genericGet(c.addr(common.API_HEALTH), &out)
}

func (c *Client) Variables() (structs.Catalog, error) {
	out := structs.Catalog{}
	return out, c.genericGet(c.addr(common.API_VARIABLES), &out)
}

// CredentialStatus returns the archive credential status; the server answers 400
// when not connected but still describes why, so that's not an error here.
func (c *Client) CredentialStatus() (*structs.CredentialStatus, error) {
	var out structs.CredentialStatus
	err := c.genericGet(c.addr(common.API_CDS_STATUS), &out, http.StatusBadRequest)
	return &out, err
}

func (c *Client) SubmitRequest(req *structs.RetrievalRequest) (*structs.Job, error) {
	var out structs.Job
	return &out, c.genericPost(c.addr(common.API_REQUEST), req, &out)
}

func (c *Client) GenerateCode(req *structs.RetrievalRequest) (string, error) {
	var out common.CodeResponse
	err := c.genericPost(c.addr(common.API_GENERATE_CODE), req, &out)
	return out.Code, err
}

func (c *Client) Jobs(q *structs.Query) ([]*structs.Job, error) {
	addr := c.addr(common.API_JOBS)
	setQueryString(addr, q)
	var out []*structs.Job
	return out, c.genericGet(addr, &out)
}

func (c *Client) Job(id string) (*structs.Job, error) {
	var out structs.Job
	return &out, c.genericGet(c.addr(common.API_JOBS+"/"+url.PathEscape(id)), &out)
}

// Download writes the file of a completed job to w.
func (c *Client) Download(id string, w io.Writer) error {
	return c.genericDownload(c.addr(common.API_DOWNLOAD+"/"+url.PathEscape(id)), w)
}

// ParseGrid uploads a local grid file for inspection.
func (c *Client) ParseGrid(path string) (*structs.GridMetadata, error) {
	var out common.ParseResponse
	err := c.genericUpload(c.addr(common.API_GRID_PARSE), path, nil, &out)
	return out.Metadata, err
}

// ExtractSlice reads a slice from a completed job's file.
func (c *Client) ExtractSlice(req *structs.ExtractRequest) (*structs.SliceResult, error) {
	var out common.ExtractResponse
	err := c.genericPost(c.addr(common.API_GRID_EXTRACT), req, &out)
	return out.SliceResult, err
}

func (c *Client) addr(path string) *url.URL {
	return &url.URL{Scheme: c.url.Scheme, Host: c.url.Host, Path: path}
}
