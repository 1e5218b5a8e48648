package source

import (
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DatasetConfig is the declarative description of one feature service layer.
// Everything dataset-specific lives here; the engine code is identical for
// every dataset.
type DatasetConfig struct {
	// Name is the unique dataset identifier (e.g., "flood_zones").
	Name string `yaml:"name"`

	// Label is the human-readable dataset title.
	Label string `yaml:"label"`

	// ServiceURL is the feature layer endpoint, without the /query suffix.
	ServiceURL string `yaml:"service_url"`

	// PageSize is the service-documented page size (typically 1000-2000).
	PageSize int `yaml:"page_size"`

	// MaxRadiusMiles caps the search radius callers may request.
	MaxRadiusMiles float64 `yaml:"max_radius_miles"`

	// MaxOffset is the pagination safety bound for this service.
	MaxOffset int `yaml:"max_offset"`

	// IdentityFields overrides the default identity key priority list.
	IdentityFields []string `yaml:"identity_fields"`

	// FieldAliases maps canonical attribute names to service spellings.
	FieldAliases FieldAliases `yaml:"field_aliases"`

	// AlwaysOn marks datasets queried on every enrichment regardless of the
	// caller's selection.
	AlwaysOn bool `yaml:"always_on"`
}

// WithDefaults fills unset fields with engine-wide defaults.
func (c DatasetConfig) WithDefaults() DatasetConfig {
	if c.PageSize <= 0 {
		c.PageSize = 1000
	}
	if c.MaxRadiusMiles <= 0 {
		c.MaxRadiusMiles = 25
	}
	if c.MaxOffset <= 0 {
		c.MaxOffset = DefaultMaxOffset
	}
	if len(c.IdentityFields) == 0 {
		c.IdentityFields = DefaultIdentityFields
	}
	return c
}

// Registry maps dataset names to their configurations, preserving insertion
// order for deterministic iteration.
type Registry struct {
	datasets map[string]DatasetConfig
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{datasets: make(map[string]DatasetConfig)}
}

// Register adds a dataset, applying defaults. Re-registering a name replaces
// its config without changing its position.
func (r *Registry) Register(cfg DatasetConfig) {
	cfg = cfg.WithDefaults()
	if _, exists := r.datasets[cfg.Name]; !exists {
		r.order = append(r.order, cfg.Name)
	}
	r.datasets[cfg.Name] = cfg
}

// Get returns a dataset config by name.
func (r *Registry) Get(name string) (DatasetConfig, error) {
	cfg, ok := r.datasets[name]
	if !ok {
		return DatasetConfig{}, eris.Errorf("source: unknown dataset %q", name)
	}
	return cfg, nil
}

// All returns every dataset config in registration order.
func (r *Registry) All() []DatasetConfig {
	out := make([]DatasetConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.datasets[name])
	}
	return out
}

// AllNames returns every registered dataset name in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AlwaysOn returns the datasets queried on every enrichment, in registration
// order.
func (r *Registry) AlwaysOn() []DatasetConfig {
	var out []DatasetConfig
	for _, name := range r.order {
		if r.datasets[name].AlwaysOn {
			out = append(out, r.datasets[name])
		}
	}
	return out
}

// LoadDatasets decodes additional dataset configs from YAML and registers
// them, replacing built-ins with the same name.
func (r *Registry) LoadDatasets(reader io.Reader) error {
	var configs []DatasetConfig
	if err := yaml.NewDecoder(reader).Decode(&configs); err != nil {
		return eris.Wrap(err, "source: decode dataset yaml")
	}
	for _, cfg := range configs {
		if cfg.Name == "" || cfg.ServiceURL == "" {
			return eris.Errorf("source: dataset config missing name or service_url")
		}
		r.Register(cfg)
	}
	return nil
}

// Defaults returns the built-in dataset registry: the fixed always-on set
// (weather, terrain, census) plus the selectable overlay layers.
func Defaults() *Registry {
	r := NewRegistry()

	r.Register(DatasetConfig{
		Name:           "weather",
		Label:          "Active Weather Watches and Warnings",
		ServiceURL:     "https://mapservices.weather.noaa.gov/eventdriven/rest/services/WWA/watch_warn_adv/MapServer/1",
		PageSize:       1000,
		MaxRadiusMiles: 50,
		AlwaysOn:       true,
	})
	r.Register(DatasetConfig{
		Name:           "terrain",
		Label:          "Landslide Susceptibility",
		ServiceURL:     "https://earthquake.usgs.gov/arcgis/rest/services/ls/ls_proximity/MapServer/0",
		PageSize:       1000,
		MaxRadiusMiles: 25,
		AlwaysOn:       true,
	})
	r.Register(DatasetConfig{
		Name:           "census",
		Label:          "Census Tracts",
		ServiceURL:     "https://tigerweb.geo.census.gov/arcgis/rest/services/TIGERweb/Tracts_Blocks/MapServer/0",
		PageSize:       1000,
		MaxRadiusMiles: 10,
		IdentityFields: []string{"GEOID", "OBJECTID"},
		AlwaysOn:       true,
	})
	r.Register(DatasetConfig{
		Name:           "flood_zones",
		Label:          "FEMA Flood Hazard Zones",
		ServiceURL:     "https://hazards.fema.gov/arcgis/rest/services/public/NFHL/MapServer/28",
		PageSize:       1000,
		MaxRadiusMiles: 10,
		FieldAliases: FieldAliases{
			"zone": {"FLD_ZONE", "ZONE", "fld_zone"},
		},
	})
	r.Register(DatasetConfig{
		Name:           "wetlands",
		Label:          "National Wetlands Inventory",
		ServiceURL:     "https://fwspublicservices.wim.usgs.gov/wetlandsmapservice/rest/services/Wetlands/MapServer/0",
		PageSize:       1000,
		MaxRadiusMiles: 10,
		FieldAliases: FieldAliases{
			"wetland_type": {"WETLAND_TYPE", "WETLAND_TY", "wetland_type"},
		},
	})
	r.Register(DatasetConfig{
		Name:           "epa_sites",
		Label:          "EPA Regulated Facilities",
		ServiceURL:     "https://services.arcgis.com/cJ9YHowT8TU7DUyn/arcgis/rest/services/FRS_INTERESTS/FeatureServer/0",
		PageSize:       2000,
		MaxRadiusMiles: 25,
		FieldAliases: FieldAliases{
			"facility_name": {"PRIMARY_NAME", "FAC_NAME", "NAME"},
		},
	})
	r.Register(DatasetConfig{
		Name:           "schools",
		Label:          "Public Schools",
		ServiceURL:     "https://services1.arcgis.com/Hp6G80Pky0om7QvQ/arcgis/rest/services/Public_School_Location/FeatureServer/0",
		PageSize:       2000,
		MaxRadiusMiles: 25,
		FieldAliases: FieldAliases{
			"school_name": {"NAME", "SCH_NAME", "SchoolName"},
		},
	})
	r.Register(DatasetConfig{
		Name:           "railroads",
		Label:          "Railroad Lines",
		ServiceURL:     "https://services1.arcgis.com/Hp6G80Pky0om7QvQ/arcgis/rest/services/NTAD_North_American_Rail_Network_Lines/FeatureServer/0",
		PageSize:       2000,
		MaxRadiusMiles: 25,
	})
	r.Register(DatasetConfig{
		Name:           "transmission_lines",
		Label:          "Electric Power Transmission Lines",
		ServiceURL:     "https://services1.arcgis.com/Hp6G80Pky0om7QvQ/arcgis/rest/services/Electric_Power_Transmission_Lines/FeatureServer/0",
		PageSize:       2000,
		MaxRadiusMiles: 25,
	})
	r.Register(DatasetConfig{
		Name:           "cell_towers",
		Label:          "Cellular Towers",
		ServiceURL:     "https://services1.arcgis.com/Hp6G80Pky0om7QvQ/arcgis/rest/services/Cellular_Towers/FeatureServer/0",
		PageSize:       2000,
		MaxRadiusMiles: 25,
		FieldAliases: FieldAliases{
			"licensee": {"LICENSEE", "ENTITY", "Licensee"},
		},
	})

	return r
}
