package core

import (
	"bytes"
	"strconv"
	"text/template"

	"github.com/voidshard/era5d/pkg/structs"
)

var codeTemplate = template.Must(template.New("cdsapi").Funcs(template.FuncMap{
	"deg": formatDegrees,
}).Parse(`import cdsapi

dataset = "{{ .Dataset }}"
request = {
    "product_type": ["{{ .ProductType }}"],
    "variable": [
{{- range .Variables }}
        "{{ . }}",
{{- end }}
    ],
    "date": "{{ .DateStart }}/{{ .DateEnd }}",
    "time": [
{{- range .Times }}
        "{{ . }}",
{{- end }}
    ],
    "area": [
        {{ deg .Area.North }}, {{ deg .Area.West }},
        {{ deg .Area.South }}, {{ deg .Area.East }}
    ],
    "format": "{{ .Format }}",
    "download_format": "unarchived"
}

client = cdsapi.Client()
client.retrieve(dataset, request).download("era5_data.{{ .Format }}")
`))

// formatDegrees writes a float the way python would, ie. 50 -> 50.0
func formatDegrees(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if _, err := strconv.Atoi(s); err == nil {
		s += ".0"
	}
	return s
}

func renderCode(req *structs.RetrievalRequest) (string, error) {
	buf := &bytes.Buffer{}
	err := codeTemplate.Execute(buf, req)
	return buf.String(), err
}
