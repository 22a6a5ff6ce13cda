// Package votable holds the typed data model of a VOTable document: column
// descriptors and their semantic datatypes, rows of typed cells and the
// resource structure around them.
package votable

// Resource types.
const (
	ResourceResults = "results"
	ResourceMeta    = "meta"
)

// Resource is a RESOURCE element. An empty Type is treated as "results",
// the VOTable default.
type Resource struct {
	ID       string
	Name     string
	Type     string
	Metadata *Metadata
	Tables   []*Table
}

// IsResults reports whether the resource carries result tables.
func (r *Resource) IsResults() bool {
	return r.Type == "" || r.Type == ResourceResults
}

// IsMeta reports whether the resource only carries service metadata.
func (r *Resource) IsMeta() bool {
	return r.Type == ResourceMeta
}

// VOTable is the document root.
type VOTable struct {
	Description string
	Infos       []Info
	Resources   []*Resource
	Metadata    *Metadata
}

// ResultsResources returns the resources carrying result tables, in
// document order.
func (v *VOTable) ResultsResources() []*Resource {
	var out []*Resource
	for _, r := range v.Resources {
		if r.IsResults() {
			out = append(out, r)
		}
	}
	return out
}

// Tables returns every table of every results resource.
func (v *VOTable) Tables() []*Table {
	var out []*Table
	for _, r := range v.ResultsResources() {
		out = append(out, r.Tables...)
	}
	return out
}
