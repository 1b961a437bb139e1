package render

import (
	"encoding/json"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewconfig"
	"github.com/matzehuels/kintree/pkg/viewport"
)

type jsonOutput struct {
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Strategy   string             `json:"strategy"`
	NodeWidth  float64            `json:"node_width"`
	NodeHeight float64            `json:"node_height"`
	Bounds     layout.Bounds      `json:"bounds"`
	View       jsonView           `json:"view"`
	Config     viewconfig.Config  `json:"config"`
	Nodes      []jsonNode         `json:"nodes"`
	Connectors []layout.Connector `json:"connectors"`
	Problems   []string           `json:"problems,omitempty"`
}

type jsonView struct {
	Tree    viewport.Transform `json:"tree"`
	Title   viewport.Transform `json:"title"`
	Overlay viewport.Transform `json:"overlay"`
}

type jsonNode struct {
	ID         family.ID     `json:"id"`
	Name       string        `json:"name"`
	Gender     family.Gender `json:"gender"`
	Generation int           `json:"generation"`
	Lifespan   string        `json:"lifespan,omitempty"`
	PhotoURL   string        `json:"photo_url,omitempty"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
}

// LayoutJSON encodes the scene for a browser front end. Nodes are sorted by
// id; connectors keep their builder order.
func LayoutJSON(s Scene) ([]byte, error) {
	out := jsonOutput{
		Width:      s.Width(),
		Height:     s.Height(),
		Strategy:   s.Layout.Strategy,
		NodeWidth:  s.Layout.Options.NodeWidth,
		NodeHeight: s.Layout.Options.NodeHeight,
		Bounds:     s.Layout.Bounds,
		View:       jsonView{Tree: s.View.Tree, Title: s.View.Title, Overlay: s.View.Overlay},
		Config:     s.Config,
		Nodes:      make([]jsonNode, 0, s.Layout.Len()),
		Connectors: s.Connectors,
	}
	if out.Connectors == nil {
		out.Connectors = []layout.Connector{}
	}
	for _, b := range s.Boxes() {
		m := s.Member(b.ID)
		out.Nodes = append(out.Nodes, jsonNode{
			ID:         b.ID,
			Name:       m.Name,
			Gender:     m.Gender,
			Generation: m.Generation,
			Lifespan:   m.Lifespan(),
			PhotoURL:   m.PhotoURL,
			X:          b.Left,
			Y:          b.Top,
			Width:      b.Width(),
			Height:     b.Height(),
		})
	}
	for _, p := range s.Layout.Problems {
		out.Problems = append(out.Problems, p.Error())
	}
	return json.MarshalIndent(out, "", "  ")
}
