// Package config holds the two configuration layers of netview.
//
// [View] is the per-view configuration (render thresholds, layout profile,
// margin). It travels inside snapshots as JSON and is edited through the view
// state. [Settings] is the user's settings file for the command line tool,
// stored as TOML under the XDG config directory; it selects the storage
// backend and provides the View defaults for new sessions.
package config

import (
	"encoding/json"

	"github.com/matzehuels/netview/pkg/layout"
	"github.com/matzehuels/netview/pkg/viewport"
	"github.com/matzehuels/netview/pkg/visibility"
)

// View is the configuration of one view.
type View struct {
	ShowImageThreshold int     `json:"show_image_threshold" bson:"show_image_threshold" toml:"show_image_threshold"`
	ShowEdgeThreshold  int     `json:"show_edge_threshold" bson:"show_edge_threshold" toml:"show_edge_threshold"`
	AlwaysShowImages   bool    `json:"always_show_images" bson:"always_show_images" toml:"always_show_images"`
	AlwaysShowEdges    bool    `json:"always_show_edges" bson:"always_show_edges" toml:"always_show_edges"`
	LayoutProfile      string  `json:"layout_profile" bson:"layout_profile" toml:"layout_profile"`
	Margin             float64 `json:"margin" bson:"margin" toml:"margin"`
	ShowLabels         bool    `json:"show_labels" bson:"show_labels" toml:"show_labels"`
}

// DefaultView returns the built-in view configuration.
func DefaultView() View {
	return View{
		ShowImageThreshold: visibility.DefaultImageThreshold,
		ShowEdgeThreshold:  visibility.DefaultEdgeThreshold,
		LayoutProfile:      layout.DefaultProfile,
		Margin:             viewport.DefaultMargin,
	}
}

// IsZero reports whether v is the zero value, as decoded from a document
// without a config.
func (v View) IsZero() bool { return v == View{} }

// UnmarshalJSON decodes a possibly partial config on top of [DefaultView].
func (v *View) UnmarshalJSON(data []byte) error {
	type plain View
	p := plain(DefaultView())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = View(p)
	return nil
}

// Policy returns the render-suppression policy of the view.
func (v View) Policy() visibility.Policy {
	return visibility.Policy{
		ShowImageThreshold: v.ShowImageThreshold,
		ShowEdgeThreshold:  v.ShowEdgeThreshold,
		AlwaysShowImages:   v.AlwaysShowImages,
		AlwaysShowEdges:    v.AlwaysShowEdges,
	}
}

// Profile returns the layout profile, falling back to the default profile
// for unknown names.
func (v View) Profile() layout.Profile { return layout.LookupOrDefault(v.LayoutProfile) }

// Normalize replaces invalid values with defaults.
func (v View) Normalize() View {
	d := DefaultView()
	if v.ShowImageThreshold < 0 {
		v.ShowImageThreshold = d.ShowImageThreshold
	}
	if v.ShowEdgeThreshold < 0 {
		v.ShowEdgeThreshold = d.ShowEdgeThreshold
	}
	if _, ok := layout.Lookup(v.LayoutProfile); !ok {
		v.LayoutProfile = d.LayoutProfile
	}
	if v.Margin < 0 {
		v.Margin = d.Margin
	}
	return v
}
