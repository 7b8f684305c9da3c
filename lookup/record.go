// Package lookup finds a pharmaceutical product in the openFDA drug label
// database and normalizes the first matching label into a fixed-shape record.
//
// The pipeline is: BuildQuery -> Fetcher.Fetch -> ValidateResponse -> Normalize,
// with every failure mapped to one of four error kinds by Classify.
package lookup

// Placeholder is used for every record field the label does not provide.
const Placeholder = "N/A"

// LookupQuery is a free-text product name as typed by the user.
type LookupQuery struct {
	RawName string
}

// ExternalQueryDescriptor is what gets sent to the label API.
type ExternalQueryDescriptor struct {
	SearchExpression string
	ResultLimit      int
}

// RawLabelRecord is one untrusted label entry as decoded from the API.
type RawLabelRecord map[string]any

// RawResponse is a fully read label API response.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// MedicineRecord is the normalized label. Every field is always set,
// either to label text or to Placeholder.
type MedicineRecord struct {
	// Identification
	Brand        string `json:"brand" yaml:"brand"`
	Generic      string `json:"generic" yaml:"generic"`
	Substance    string `json:"substance" yaml:"substance"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	ProductType  string `json:"product_type" yaml:"product_type"`

	// Classification
	Route       string `json:"route" yaml:"route"`
	DosageForm  string `json:"dosage_form" yaml:"dosage_form"`
	PharmClass  string `json:"pharm_class" yaml:"pharm_class"`
	DEASchedule string `json:"schedule" yaml:"schedule"`

	// Usage
	Purpose     string `json:"purpose" yaml:"purpose"`
	Uses        string `json:"uses" yaml:"uses"`
	Dosage      string `json:"dosage" yaml:"dosage"`
	HowSupplied string `json:"how_supplied" yaml:"how_supplied"`

	// Safety
	Warnings          string `json:"warnings" yaml:"warnings"`
	BoxedWarning      string `json:"boxed_warning" yaml:"boxed_warning"`
	Contraindications string `json:"contraindications" yaml:"contraindications"`
	SideEffects       string `json:"side_effects" yaml:"side_effects"`
	DrugInteractions  string `json:"drug_interactions" yaml:"drug_interactions"`
	Overdose          string `json:"overdose" yaml:"overdose"`

	// Special populations
	PregnancyWarning string `json:"pregnancy_warning" yaml:"pregnancy_warning"`
	LactationWarning string `json:"lactation_warning" yaml:"lactation_warning"`
	PediatricUse     string `json:"pediatric_use" yaml:"pediatric_use"`
	GeriatricUse     string `json:"geriatric_use" yaml:"geriatric_use"`

	// Pharmacology
	MechanismOfAction string `json:"mechanism_of_action" yaml:"mechanism_of_action"`
	Pharmacodynamics  string `json:"pharmacodynamics" yaml:"pharmacodynamics"`
	Pharmacokinetics  string `json:"pharmacokinetics" yaml:"pharmacokinetics"`

	Storage string `json:"storage" yaml:"storage"`

	// Regulatory
	SPLID             string `json:"spl_id" yaml:"spl_id"`
	ApplicationNumber string `json:"application_number" yaml:"application_number"`
	LastUpdated       string `json:"last_updated" yaml:"last_updated"`
}

// Field is a labelled value of a record, used for display.
type Field struct {
	Label string
	Value string
}

// Section groups related fields under a heading.
type Section struct {
	Title  string
	Fields []Field
}

// Sections returns the record grouped for display, always in the same order.
func (r MedicineRecord) Sections() []Section {
	return []Section{
		{Title: "Identification", Fields: []Field{
			{"Brand name", r.Brand},
			{"Generic name", r.Generic},
			{"Substance", r.Substance},
			{"Manufacturer", r.Manufacturer},
			{"Product type", r.ProductType},
		}},
		{Title: "Classification", Fields: []Field{
			{"Route", r.Route},
			{"Dosage form", r.DosageForm},
			{"Pharmacologic class", r.PharmClass},
			{"DEA schedule", r.DEASchedule},
		}},
		{Title: "Usage", Fields: []Field{
			{"Purpose", r.Purpose},
			{"Indications and usage", r.Uses},
			{"Dosage and administration", r.Dosage},
			{"How supplied", r.HowSupplied},
		}},
		{Title: "Safety", Fields: []Field{
			{"Warnings", r.Warnings},
			{"Boxed warning", r.BoxedWarning},
			{"Contraindications", r.Contraindications},
			{"Adverse reactions", r.SideEffects},
			{"Drug interactions", r.DrugInteractions},
			{"Overdosage", r.Overdose},
		}},
		{Title: "Special populations", Fields: []Field{
			{"Pregnancy", r.PregnancyWarning},
			{"Lactation", r.LactationWarning},
			{"Pediatric use", r.PediatricUse},
			{"Geriatric use", r.GeriatricUse},
		}},
		{Title: "Pharmacology", Fields: []Field{
			{"Mechanism of action", r.MechanismOfAction},
			{"Pharmacodynamics", r.Pharmacodynamics},
			{"Pharmacokinetics", r.Pharmacokinetics},
		}},
		{Title: "Storage", Fields: []Field{
			{"Storage and handling", r.Storage},
		}},
		{Title: "Regulatory", Fields: []Field{
			{"SPL id", r.SPLID},
			{"Application number", r.ApplicationNumber},
			{"Last updated", r.LastUpdated},
		}},
	}
}

// Outcome is the result of a single lookup. Exactly one of Record and Err is set.
type Outcome struct {
	Record *MedicineRecord
	Err    *Error
}

// Success wraps a normalized record.
func Success(record MedicineRecord) Outcome {
	return Outcome{Record: &record}
}

// Failure wraps a classified error.
func Failure(err *Error) Outcome {
	return Outcome{Err: err}
}

// OK reports whether the lookup produced a record.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Record != nil
}
