package component

// TemplateType is the type reported for every template in resolved output.
const TemplateType = "text/ng-template"

// Template is a selected template variant as delivered to a renderer.
type Template struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// Data is a component resolved for one set of context filters.
type Data struct {
	Name       string     `json:"name"`
	Version    string     `json:"version"`
	Scripts    []string   `json:"scripts"`
	Styles     []string   `json:"styles"`
	Templates  []Template `json:"templates"`
	Components []string   `json:"components"`
}

// Servable is Data without the dependency id list, which renderers do not need.
type Servable struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Scripts   []string   `json:"scripts"`
	Styles    []string   `json:"styles"`
	Templates []Template `json:"templates"`
}

// Servable strips the component list.
func (data *Data) Servable() *Servable {
	return &Servable{
		Name:      data.Name,
		Version:   data.Version,
		Scripts:   data.Scripts,
		Styles:    data.Styles,
		Templates: data.Templates,
	}
}

// Artifact is a concatenated script bundle on disk.
type Artifact struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Path    string   `json:"path"`
	Sources []string `json:"sources"`
}
