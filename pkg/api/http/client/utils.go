package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/voidshard/era5d/pkg/api/http/common"
	"github.com/voidshard/era5d/pkg/structs"
)

// genericPost is a helper to POST data to a given URL and unmarshal the response
func (c *Client) genericPost(addr *url.URL, in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}

	resp, err := c.http.Post(addr.String(), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	return readResponse(resp, out)
}

// genericGet is a helper to GET data from a given URL and unmarshal the response.
// Implies the Query string is already set, if needed. Status codes in accept are
// decoded into out rather than returned as errors.
func (c *Client) genericGet(addr *url.URL, out interface{}, accept ...int) error {
	resp, err := c.http.Get(addr.String())
	if err != nil {
		return err
	}
	return readResponse(resp, out, accept...)
}

// genericUpload POSTs a file as multipart form data, with any extra form fields.
func (c *Client) genericUpload(addr *url.URL, path string, fields map[string]string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		err = mw.WriteField(k, v)
		if err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile(common.FormFile, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	if err != nil {
		return err
	}
	err = mw.Close()
	if err != nil {
		return err
	}

	resp, err := c.http.Post(addr.String(), mw.FormDataContentType(), buf)
	if err != nil {
		return err
	}
	return readResponse(resp, out)
}

// genericDownload streams the response body to w.
func (c *Client) genericDownload(addr *url.URL, w io.Writer) error {
	resp, err := c.http.Get(addr.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func readResponse(resp *http.Response, out interface{}, accept ...int) error {
	defer resp.Body.Close()

	ok := resp.StatusCode < 400
	for _, code := range accept {
		ok = ok || resp.StatusCode == code
	}
	if !ok {
		return statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// statusError reads the server's {"error": ..} envelope, if there is one.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	msg := &common.ErrorResponse{}
	if json.Unmarshal(body, msg) == nil && msg.Error != "" {
		return fmt.Errorf("bad status code %d, returned %s", resp.StatusCode, msg.Error)
	}
	return fmt.Errorf("bad status code %d, returned %s", resp.StatusCode, string(body))
}

// setQueryString sets the query string of a URL based on the given query object.
func setQueryString(u *url.URL, q *structs.Query) {
	if q == nil {
		q = &structs.Query{}
	}
	q.Sanitize()
	values := u.Query()

	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Statuses != nil {
		ss := []string{}
		for _, s := range q.Statuses {
			ss = append(ss, string(s))
		}
		values["statuses"] = ss
	}

	u.RawQuery = values.Encode()
}
