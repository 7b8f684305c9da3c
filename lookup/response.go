package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type labelResponse struct {
	Results []RawLabelRecord `json:"results"`
}

// ValidateResponse checks the status and result set of a label response and
// returns its first record. name is echoed back in NotFound messages.
func ValidateResponse(resp *RawResponse, name string) (RawLabelRecord, error) {
	if resp == nil {
		return nil, errUnexpected(fmt.Errorf("nil label response"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errNoData(name)
	}

	var decoded labelResponse
	if err := json.NewDecoder(bytes.NewReader(resp.Body)).Decode(&decoded); err != nil {
		return nil, errUnexpected(fmt.Errorf("failed to decode label response: %w", err))
	}

	if len(decoded.Results) == 0 {
		return nil, errNoResults(name)
	}

	// Only the best match is used; the query asks for a single result anyway.
	first := decoded.Results[0]
	if first == nil {
		return nil, errNoResults(name)
	}

	return first, nil
}

// OpenFDA returns the identification sub-mapping of a record, or an empty
// mapping when it is absent or not an object.
func (r RawLabelRecord) OpenFDA() RawLabelRecord {
	switch sub := r["openfda"].(type) {
	case map[string]any:
		return sub
	case RawLabelRecord:
		return sub
	default:
		return RawLabelRecord{}
	}
}
