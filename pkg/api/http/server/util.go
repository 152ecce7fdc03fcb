package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/voidshard/era5d/pkg/api/http/common"
	ee "github.com/voidshard/era5d/pkg/errors"
	"github.com/voidshard/era5d/pkg/structs"
)

const (
	maxUploadSize   = 512 << 20
	maxUploadMemory = 32 << 20
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			ee.ErrValidation,
			ee.ErrInvalidState,
			ee.ErrNotSupported,
		},
		http.StatusNotFound: []error{
			ee.ErrNotFound,
		},
	}

	// grid file extensions we'll accept uploads of
	gridExtensions = []string{".grib", ".grb", ".grib2", ".grb2", ".nc", ".nc4", ".netcdf"}
)

// mapError returns the http status code for a given error, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// writeJSON encodes obj as the response body with the given status code.
func writeJSON(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		zap.S().Named("server").Debugw("failed to write response", "err", err)
	}
}

// writeError writes {"error": msg} with the status code for err.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapError(err), &common.ErrorResponse{Error: ee.Message(err)})
}

// writeErrorCode writes {"error": msg} with the given status code.
func writeErrorCode(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, &common.ErrorResponse{Error: msg})
}

func unmarshalQuery(w http.ResponseWriter, r *http.Request, out *structs.Query) error {
	q := r.URL.Query()

	if q.Has("limit") {
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, fmt.Sprintf("bad limit: %v", err))
			return fmt.Errorf("bad limit: %v", err)
		}
		out.Limit = limit
	}

	if q.Has("offset") {
		offset, err := strconv.Atoi(q.Get("offset"))
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, fmt.Sprintf("bad offset: %v", err))
			return fmt.Errorf("bad offset: %v", err)
		}
		out.Offset = offset
	}

	if q.Has("statuses") {
		out.Statuses = []structs.Status{}
		for _, s := range q["statuses"] {
			st := structs.ToStatus(s)
			if st == "" {
				writeErrorCode(w, http.StatusBadRequest, "bad status")
				return fmt.Errorf("bad status: %v", s)
			}
			out.Statuses = append(out.Statuses, st)
		}
	}

	out.Sanitize()
	return nil
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// This function write an error to the writer if an error occurs, and returns the error.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	if r.Body == nil {
		writeErrorCode(w, http.StatusBadRequest, "No body")
		return fmt.Errorf("no body")
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if err != nil {
		// bad JSON or unrecognized json field
		writeErrorCode(w, http.StatusBadRequest, err.Error())
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// saveUpload writes the uploaded grid file to a temp file. The returned func removes
// it & must be called. On error a response has already been written.
func saveUpload(w http.ResponseWriter, r *http.Request) (string, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, fmt.Sprintf("bad upload: %v", err))
		return "", nil, err
	}

	src, hdr, err := r.FormFile(common.FormFile)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "No file provided")
		return "", nil, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if hdr.Filename == "" || !validExtension(ext) {
		writeErrorCode(w, http.StatusBadRequest, "Invalid GRIB file")
		return "", nil, fmt.Errorf("invalid file %q", hdr.Filename)
	}

	dst, err := os.CreateTemp("", "era5d-upload-*"+ext)
	if err != nil {
		writeErrorCode(w, http.StatusInternalServerError, err.Error())
		return "", nil, err
	}
	cleanup := func() {
		os.Remove(dst.Name())
	}

	_, err = io.Copy(dst, src)
	cerr := dst.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		writeErrorCode(w, http.StatusInternalServerError, err.Error())
		return "", nil, err
	}
	return dst.Name(), cleanup, nil
}

func validExtension(ext string) bool {
	for _, e := range gridExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// extractForm reads slice parameters from multipart form fields.
func extractForm(r *http.Request) (*structs.ExtractRequest, error) {
	req := &structs.ExtractRequest{Variable: r.FormValue("variable")}
	if v := r.FormValue("timeStep"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timeStep: %v", ee.ErrValidation, err)
		}
		req.TimeStep = i
	}
	if v := r.FormValue("level"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad level: %v", ee.ErrValidation, err)
		}
		req.Level = &f
	}
	if v := r.FormValue("full"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad full: %v", ee.ErrValidation, err)
		}
		req.Full = b
	}
	return req, nil
}
