package models

// ServiceType identifies one entry of the fixed service catalog.
type ServiceType string

const (
	ServiceHedgeTrim    ServiceType = "hedge-trim"
	ServiceTreePrune    ServiceType = "tree-prune"
	ServiceRopePrune    ServiceType = "rope-prune"
	ServiceLawnMow      ServiceType = "lawn-mow"
	ServiceCleanup      ServiceType = "garden-cleanup"
	ServiceLeafCollect  ServiceType = "leaf-collection"
	ServicePestTreat    ServiceType = "pest-treatment"
	ServiceWasteDisposal ServiceType = "green-waste-disposal"
)

// Attribute field names shared across the catalog.
const (
	FieldLengthM   = "length_m"
	FieldAreaM2    = "area_m2"
	FieldCount     = "count"
	FieldHeightM   = "height_m"
	FieldAccess    = "access"
	FieldSize      = "size"
	FieldWaste     = "waste"
	FieldObstacles = "obstacles"
	FieldParking   = "parking"
	FieldSlope     = "slope"
	FieldEdges     = "edges"
	FieldNotes     = "notes"
	FieldPlant     = "plant"
	FieldProblem   = "problem"
	FieldVolume    = "volume"
)

// Job is one requested unit of work. Service is immutable once set;
// attributes hold normalized answer values keyed by field name.
type Job struct {
	Service    ServiceType       `json:"service"`
	Attributes map[string]string `json:"attributes"`
}

// NewJob creates an empty job for the given service.
func NewJob(service ServiceType) Job {
	return Job{Service: service, Attributes: map[string]string{}}
}

// Get returns the normalized value for a field, or "" when unset.
func (j Job) Get(field string) string {
	if j.Attributes == nil {
		return ""
	}
	return j.Attributes[field]
}

// Set stores a normalized value for a field.
func (j *Job) Set(field, value string) {
	if j.Attributes == nil {
		j.Attributes = map[string]string{}
	}
	j.Attributes[field] = value
}
