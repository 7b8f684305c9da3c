package lookup

import (
	"fmt"
	"strings"
)

const (
	listSeparator = ", "
	textSeparator = " "
)

type fieldSource int

const (
	fromOpenFDA fieldSource = iota
	fromLabel
)

// fieldSpec describes where a record field comes from. Keys are tried in
// order and the first non-empty value wins.
type fieldSpec struct {
	source fieldSource
	keys   []string
	sep    string
	set    func(*MedicineRecord, string)
}

// Identification lists are joined with commas, narrative sections with spaces.
var fieldSpecs = []fieldSpec{
	{fromOpenFDA, []string{"brand_name"}, listSeparator, func(r *MedicineRecord, v string) { r.Brand = v }},
	{fromOpenFDA, []string{"generic_name"}, listSeparator, func(r *MedicineRecord, v string) { r.Generic = v }},
	{fromOpenFDA, []string{"substance_name"}, listSeparator, func(r *MedicineRecord, v string) { r.Substance = v }},
	{fromOpenFDA, []string{"manufacturer_name"}, listSeparator, func(r *MedicineRecord, v string) { r.Manufacturer = v }},
	{fromOpenFDA, []string{"product_type"}, listSeparator, func(r *MedicineRecord, v string) { r.ProductType = v }},
	{fromOpenFDA, []string{"route"}, listSeparator, func(r *MedicineRecord, v string) { r.Route = v }},
	{fromOpenFDA, []string{"dosage_form"}, listSeparator, func(r *MedicineRecord, v string) { r.DosageForm = v }},
	{fromOpenFDA, []string{"pharm_class_epc"}, listSeparator, func(r *MedicineRecord, v string) { r.PharmClass = v }},
	{fromOpenFDA, []string{"dea_schedule"}, listSeparator, func(r *MedicineRecord, v string) { r.DEASchedule = v }},
	{fromOpenFDA, []string{"spl_id"}, listSeparator, func(r *MedicineRecord, v string) { r.SPLID = v }},
	{fromOpenFDA, []string{"application_number"}, listSeparator, func(r *MedicineRecord, v string) { r.ApplicationNumber = v }},

	{fromLabel, []string{"purpose"}, textSeparator, func(r *MedicineRecord, v string) { r.Purpose = v }},
	{fromLabel, []string{"indications_and_usage"}, textSeparator, func(r *MedicineRecord, v string) { r.Uses = v }},
	{fromLabel, []string{"dosage_and_administration"}, textSeparator, func(r *MedicineRecord, v string) { r.Dosage = v }},
	{fromLabel, []string{"how_supplied"}, textSeparator, func(r *MedicineRecord, v string) { r.HowSupplied = v }},
	{fromLabel, []string{"warnings", "warnings_and_cautions"}, textSeparator, func(r *MedicineRecord, v string) { r.Warnings = v }},
	{fromLabel, []string{"boxed_warning"}, textSeparator, func(r *MedicineRecord, v string) { r.BoxedWarning = v }},
	{fromLabel, []string{"contraindications"}, textSeparator, func(r *MedicineRecord, v string) { r.Contraindications = v }},
	{fromLabel, []string{"adverse_reactions"}, textSeparator, func(r *MedicineRecord, v string) { r.SideEffects = v }},
	{fromLabel, []string{"drug_interactions"}, textSeparator, func(r *MedicineRecord, v string) { r.DrugInteractions = v }},
	{fromLabel, []string{"overdosage"}, textSeparator, func(r *MedicineRecord, v string) { r.Overdose = v }},
	{fromLabel, []string{"pregnancy"}, textSeparator, func(r *MedicineRecord, v string) { r.PregnancyWarning = v }},
	{fromLabel, []string{"lactation", "nursing_mothers"}, textSeparator, func(r *MedicineRecord, v string) { r.LactationWarning = v }},
	{fromLabel, []string{"pediatric_use"}, textSeparator, func(r *MedicineRecord, v string) { r.PediatricUse = v }},
	{fromLabel, []string{"geriatric_use"}, textSeparator, func(r *MedicineRecord, v string) { r.GeriatricUse = v }},
	{fromLabel, []string{"mechanism_of_action"}, textSeparator, func(r *MedicineRecord, v string) { r.MechanismOfAction = v }},
	{fromLabel, []string{"pharmacodynamics"}, textSeparator, func(r *MedicineRecord, v string) { r.Pharmacodynamics = v }},
	{fromLabel, []string{"pharmacokinetics"}, textSeparator, func(r *MedicineRecord, v string) { r.Pharmacokinetics = v }},
	{fromLabel, []string{"storage_and_handling"}, textSeparator, func(r *MedicineRecord, v string) { r.Storage = v }},
}

// substanceFallbackKey is read from the label itself when openfda has no substance.
const substanceFallbackKey = "active_ingredient"

// Normalize maps a raw label into a MedicineRecord. It is total: a nil or
// empty record yields a record where every field is Placeholder.
func Normalize(raw RawLabelRecord) MedicineRecord {
	openfda := raw.OpenFDA()
	record := emptyRecord()

	for _, spec := range fieldSpecs {
		src := raw
		if spec.source == fromOpenFDA {
			src = openfda
		}
		spec.set(&record, firstJoined(src, spec.keys, spec.sep))
	}

	if record.Substance == Placeholder {
		record.Substance = SafeJoin(raw[substanceFallbackKey], textSeparator)
	}

	record.LastUpdated = FormatDate(raw["effective_time"])

	return record
}

func emptyRecord() MedicineRecord {
	var record MedicineRecord
	for _, spec := range fieldSpecs {
		spec.set(&record, Placeholder)
	}
	record.LastUpdated = Placeholder
	return record
}

func firstJoined(src RawLabelRecord, keys []string, sep string) string {
	for _, key := range keys {
		if v := SafeJoin(src[key], sep); v != Placeholder {
			return v
		}
	}
	return Placeholder
}

// SafeJoin flattens a label value for display. Lists are joined with sep,
// non-empty scalars are returned as-is and anything absent or empty becomes
// Placeholder.
func SafeJoin(value any, sep string) string {
	var out string

	switch v := value.(type) {
	case nil:
		return Placeholder
	case string:
		out = v
	case []string:
		out = joinNonEmpty(v, sep)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
			case string:
				parts = append(parts, s)
			default:
				parts = append(parts, fmt.Sprint(s))
			}
		}
		out = joinNonEmpty(parts, sep)
	case map[string]any, RawLabelRecord:
		return Placeholder
	default:
		out = fmt.Sprint(v)
	}

	if strings.TrimSpace(out) == "" {
		return Placeholder
	}
	return out
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// FormatDate turns a YYYYMMDD string into DD-MM-YYYY. No calendar check is
// done; any value that is not an 8 character string becomes Placeholder.
func FormatDate(raw any) string {
	s, ok := raw.(string)
	if !ok || len(s) != 8 {
		return Placeholder
	}
	return s[6:8] + "-" + s[4:6] + "-" + s[0:4]
}
