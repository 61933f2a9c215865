package server

import (
	_ "embed"
	"net/http"
	"strings"
)

// appsJSON is the dashboard layout; its widget ids refer to the endpoint table.
//
//go:embed apps.json
var appsJSON []byte

const widgetSource = "DefiLlama"

type widgetParam struct {
	ParamName   string `json:"paramName"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Value       string `json:"value"`
}

type widget struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Source      string        `json:"source"`
	Endpoint    string        `json:"endpoint"`
	Type        string        `json:"type,omitempty"`
	Params      []widgetParam `json:"params"`
}

// widgets builds the manifest from the endpoint table, keyed by widget id.
// Path parameters appear in ":name" form.
func (s *server) widgets() map[string]widget {
	out := make(map[string]widget, len(s.deps.Table))
	for i := range s.deps.Table {
		e := &s.deps.Table[i]
		path := e.Path
		params := make([]widgetParam, 0, len(e.Params)+1)
		for _, p := range e.Params {
			path = strings.ReplaceAll(path, "{"+p.Name+"}", ":"+p.Name)
			params = append(params, widgetParam{ParamName: p.Name, Description: p.Description, Type: "text", Value: p.Default})
		}
		if len(e.Search) > 0 {
			params = append(params, widgetParam{
				ParamName:   "search",
				Description: "Filter by " + strings.Join(e.Search, ", "),
				Type:        "text",
			})
		}
		w := widget{
			Name:        e.Widget.Name,
			Description: e.Widget.Description,
			Source:      widgetSource,
			Endpoint:    s.deps.Prefix + path,
			Params:      params,
		}
		if e.Widget.Chart {
			w.Type = "chart"
		}
		out[e.Widget.ID] = w
	}
	return out
}

func (s *server) handleWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.widgets())
}

func (s *server) handleApps(w http.ResponseWriter, _ *http.Request) {
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(http.StatusOK)
	w.Write(appsJSON)
}
